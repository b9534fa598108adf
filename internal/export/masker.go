package export

import (
	"regexp"
	"strings"

	"github.com/shinoburc/drivelog-export/internal/model"
)

// MaskKind names a sensitive field category understood by the masker.
type MaskKind string

const (
	MaskDriverName    MaskKind = "driverName"
	MaskVehicleNumber MaskKind = "vehicleNumber"
)

var digitRunPattern = regexp.MustCompile(`[0-9]{3,}`)

// Masker applies deterministic partial redaction to sensitive string
// values according to the privacy options it was built with.
type Masker struct {
	privacy model.PrivacyOptions
}

func NewMasker(privacy model.PrivacyOptions) *Masker {
	return &Masker{privacy: privacy}
}

// Mask returns the masked form of value when the corresponding privacy
// toggle is on, else the value unchanged.
func (m *Masker) Mask(value string, kind MaskKind) string {
	switch kind {
	case MaskDriverName:
		if !m.privacy.AnonymizeDriverName {
			return value
		}
		return maskDriverName(value)
	case MaskVehicleNumber:
		if !m.privacy.AnonymizeVehicleNumber {
			return value
		}
		return maskVehicleNumber(value)
	}
	return value
}

// maskDriverName keeps the first two runes for names longer than two
// runes, one rune otherwise, and replaces the rest with "***".
func maskDriverName(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return "***"
	}
	keep := 1
	if len(runes) > 2 {
		keep = 2
	}
	if keep > len(runes) {
		keep = len(runes)
	}
	return string(runes[:keep]) + "***"
}

// maskVehicleNumber preserves the first and last runs of three or more
// digits and replaces the surrounding segments with "***". Plates without
// two digit runs fall back to "***" plus the last three runes.
func maskVehicleNumber(plate string) string {
	runs := digitRunPattern.FindAllString(plate, -1)
	if len(runs) >= 2 {
		return "***" + runs[0] + "***" + runs[len(runs)-1]
	}
	runes := []rune(plate)
	if len(runes) <= 3 {
		return "***" + string(runes)
	}
	return "***" + string(runes[len(runes)-3:])
}

// MaskLocationName redacts a location name down to its first rune when
// location masking is enabled.
func (m *Masker) MaskLocationName(name string) string {
	if !m.privacy.MaskLocationNames || strings.TrimSpace(name) == "" {
		return name
	}
	runes := []rune(name)
	return string(runes[:1]) + "***"
}
