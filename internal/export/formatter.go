package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/shinoburc/drivelog-export/internal/model"
)

const (
	kmPerMile = 1.60934
)

// Formatter renders typed trip values as strings according to the
// configured format and privacy options. Missing values always render as
// an empty string.
type Formatter struct {
	format  model.FormatOptions
	privacy model.PrivacyOptions
}

func NewFormatter(format model.FormatOptions, privacy model.PrivacyOptions) *Formatter {
	return &Formatter{format: format, privacy: privacy}
}

func dateLayout(f model.DateFormat) string {
	switch f {
	case model.DateFormatSlash:
		return "2006/01/02"
	case model.DateFormatDayFirst:
		return "02/01/2006"
	default:
		return "2006-01-02"
	}
}

func timeLayout(f model.TimeFormat) string {
	if f == model.TimeFormatSecond {
		return "15:04:05"
	}
	return "15:04"
}

func (f *Formatter) FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout(f.format.DateFormat))
}

func (f *Formatter) FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(timeLayout(f.format.TimeFormat))
}

// FormatDateTime renders a full timestamp as date + " " + time.
func (f *Formatter) FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return f.FormatDate(t) + " " + t.Format(timeLayout(f.format.TimeFormat))
}

// FormatDistance converts a distance stored in kilometers to the
// configured unit before applying the numeric format.
func (f *Formatter) FormatDistance(km *float64) string {
	if km == nil {
		return ""
	}
	value := *km
	switch f.format.NumberFormat.DistanceUnit {
	case model.DistanceM:
		value *= 1000
	case model.DistanceMile:
		value /= kmPerMile
	}
	return f.FormatNumber(value)
}

// FormatDuration converts a duration stored in minutes to the configured
// unit before applying the numeric format.
func (f *Formatter) FormatDuration(minutes *float64) string {
	if minutes == nil {
		return ""
	}
	value := *minutes
	switch f.format.NumberFormat.DurationUnit {
	case model.DurationHours:
		value /= 60
	case model.DurationSeconds:
		value *= 60
	}
	return f.FormatNumber(value)
}

// FormatNumber rounds to the configured decimal places and optionally
// inserts thousands separators.
func (f *Formatter) FormatNumber(value float64) string {
	s := strconv.FormatFloat(value, 'f', f.format.NumberFormat.DecimalPlaces, 64)
	if f.format.NumberFormat.ThousandsSeparator {
		s = groupThousands(s)
	}
	return s
}

// FormatCoordinate renders a coordinate with the privacy-configured
// precision, independent of the numeric format options.
func (f *Formatter) FormatCoordinate(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', f.privacy.CoordinatePrecision, 64)
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + fracPart
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + fracPart
}
