package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shinoburc/drivelog-export/internal/model"
)

// BuildFilename expands the filename template for one run. Supported
// tokens are {YYYY} {MM} {DD} {HH} {mm} {SS} (zero-padded components of
// now), {YYYY-MM-DD} (rewritten to the date-range bounds when a date
// filter is active) and {STATUS}. A numeric suffix derived from now is
// always appended so repeated exports never collide.
func BuildFilename(template string, filters model.ExportFilters, now time.Time) string {
	name := template
	if name == "" {
		name = "driving-log_{YYYY-MM-DD}.csv"
	}

	datePart := now.Format("2006-01-02")
	if filters.DateRange != nil {
		datePart = filters.DateRange.Start.Format("2006-01-02") + "-" + filters.DateRange.End.Format("2006-01-02")
	}
	name = strings.ReplaceAll(name, "{YYYY-MM-DD}", datePart)

	replacer := strings.NewReplacer(
		"{YYYY}", now.Format("2006"),
		"{MM}", now.Format("01"),
		"{DD}", now.Format("02"),
		"{HH}", now.Format("15"),
		"{mm}", now.Format("04"),
		"{SS}", now.Format("05"),
	)
	name = replacer.Replace(name)

	statusPart := joinStatuses(filters.Statuses)
	if strings.Contains(name, "{STATUS}") {
		name = strings.ReplaceAll(name, "{STATUS}", statusPart)
	} else if statusPart != "" {
		name = insertBeforeExt(name, "-"+statusPart)
	}

	return insertBeforeExt(name, fmt.Sprintf("_%d", now.UnixMilli()))
}

func joinStatuses(statuses []model.TripStatus) string {
	if len(statuses) == 0 {
		return ""
	}
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, "-")
}

func insertBeforeExt(name, segment string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + segment + ext
}
