package export

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinoburc/drivelog-export/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestFormatDateLayouts(t *testing.T) {
	date := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		format model.DateFormat
		want   string
	}{
		{model.DateFormatISO, "2024-03-07"},
		{model.DateFormatSlash, "2024/03/07"},
		{model.DateFormatDayFirst, "07/03/2024"},
	}
	for _, tt := range tests {
		format := testFormat()
		format.DateFormat = tt.format
		f := NewFormatter(format, model.PrivacyOptions{})
		assert.Equal(t, tt.want, f.FormatDate(date))
	}
}

func TestFormatTimeLayouts(t *testing.T) {
	at := time.Date(2024, 3, 7, 9, 5, 42, 0, time.UTC)

	format := testFormat()
	f := NewFormatter(format, model.PrivacyOptions{})
	assert.Equal(t, "09:05", f.FormatTime(&at))

	format.TimeFormat = model.TimeFormatSecond
	f = NewFormatter(format, model.PrivacyOptions{})
	assert.Equal(t, "09:05:42", f.FormatTime(&at))

	assert.Equal(t, "", f.FormatTime(nil))
}

func TestFormatDateTimeJoinsDateAndTime(t *testing.T) {
	at := time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC)
	f := NewFormatter(testFormat(), model.PrivacyOptions{})
	assert.Equal(t, "2024-03-07 09:05", f.FormatDateTime(at))
	assert.Equal(t, "", f.FormatDateTime(time.Time{}))
}

func TestFormatDistanceUnits(t *testing.T) {
	tests := []struct {
		unit model.DistanceUnit
		want string
	}{
		{model.DistanceKm, "1.61"},
		{model.DistanceM, "1609.34"},
		{model.DistanceMile, "1.00"},
	}
	for _, tt := range tests {
		format := testFormat()
		format.NumberFormat.DistanceUnit = tt.unit
		f := NewFormatter(format, model.PrivacyOptions{})
		assert.Equal(t, tt.want, f.FormatDistance(floatPtr(1.60934)), string(tt.unit))
	}
}

func TestFormatDurationUnits(t *testing.T) {
	tests := []struct {
		unit model.DurationUnit
		want string
	}{
		{model.DurationMinutes, "90.00"},
		{model.DurationHours, "1.50"},
		{model.DurationSeconds, "5400.00"},
	}
	for _, tt := range tests {
		format := testFormat()
		format.NumberFormat.DurationUnit = tt.unit
		f := NewFormatter(format, model.PrivacyOptions{})
		assert.Equal(t, tt.want, f.FormatDuration(floatPtr(90)), string(tt.unit))
	}
}

func TestFormatMissingNumbersAreEmpty(t *testing.T) {
	f := NewFormatter(testFormat(), model.PrivacyOptions{})
	assert.Equal(t, "", f.FormatDistance(nil))
	assert.Equal(t, "", f.FormatDuration(nil))
	assert.Equal(t, "", f.FormatCoordinate(nil))
}

func TestFormatNumberThousandsSeparator(t *testing.T) {
	format := testFormat()
	format.NumberFormat.ThousandsSeparator = true
	format.NumberFormat.DecimalPlaces = 1
	f := NewFormatter(format, model.PrivacyOptions{})

	assert.Equal(t, "1,234,567.9", f.FormatNumber(1234567.89))
	assert.Equal(t, "-1,234.6", f.FormatNumber(-1234.56))
	assert.Equal(t, "999.9", f.FormatNumber(999.91))
}

func TestFormatNumberRoundTripPrecision(t *testing.T) {
	for places := 0; places <= 4; places++ {
		format := testFormat()
		format.NumberFormat.DecimalPlaces = places
		f := NewFormatter(format, model.PrivacyOptions{})

		original := 123.456789
		formatted := f.FormatNumber(original)
		parsed, err := strconv.ParseFloat(formatted, 64)
		require.NoError(t, err)

		tolerance := 1.0
		for i := 0; i < places; i++ {
			tolerance /= 10
		}
		assert.InDelta(t, original, parsed, tolerance, "decimal places %d", places)
	}
}

func TestFormatCoordinatePrecisionFromPrivacy(t *testing.T) {
	format := testFormat()
	format.NumberFormat.DecimalPlaces = 5
	f := NewFormatter(format, model.PrivacyOptions{CoordinatePrecision: 2})

	assert.Equal(t, "35.68", f.FormatCoordinate(floatPtr(35.681234)))
}
