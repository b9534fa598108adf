package export

import (
	"github.com/shinoburc/drivelog-export/internal/model"
)

// FilterRecords applies the export filters in a fixed order: date range,
// then status set, then distance range, then duration range. Predicates
// whose filter is absent are skipped. The input slice is never mutated.
func FilterRecords(records []model.TripRecord, filters model.ExportFilters) []model.TripRecord {
	out := make([]model.TripRecord, 0, len(records))
	statusSet := make(map[model.TripStatus]struct{}, len(filters.Statuses))
	for _, s := range filters.Statuses {
		statusSet[s] = struct{}{}
	}

	for _, rec := range records {
		if filters.DateRange != nil {
			if rec.Date.Before(filters.DateRange.Start) || rec.Date.After(filters.DateRange.End) {
				continue
			}
		}
		if len(statusSet) > 0 {
			if _, ok := statusSet[rec.Status]; !ok {
				continue
			}
		}
		if filters.DistanceRange != nil && !inRange(rec.TotalDistanceKm, *filters.DistanceRange) {
			continue
		}
		if filters.DurationRange != nil && !inRange(rec.DurationMinutes, *filters.DurationRange) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// inRange checks a possibly missing value against a numeric range. A
// missing value passes a side only when that bound is absent too.
func inRange(value *float64, r model.FloatRange) bool {
	if value == nil {
		return r.Min == nil && r.Max == nil
	}
	if r.Min != nil && *value < *r.Min {
		return false
	}
	if r.Max != nil && *value > *r.Max {
		return false
	}
	return true
}
