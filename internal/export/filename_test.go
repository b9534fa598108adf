package export

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shinoburc/drivelog-export/internal/model"
)

var fixedNow = time.Date(2024, 3, 7, 9, 5, 42, 0, time.UTC)

func TestBuildFilenameTimeTokens(t *testing.T) {
	name := BuildFilename("log_{YYYY}{MM}{DD}_{HH}{mm}{SS}.csv", model.ExportFilters{}, fixedNow)
	assert.True(t, strings.HasPrefix(name, "log_20240307_090542_"), name)
	assert.True(t, strings.HasSuffix(name, ".csv"), name)
}

func TestBuildFilenameDateTokenWithoutFilter(t *testing.T) {
	name := BuildFilename("driving-log_{YYYY-MM-DD}.csv", model.ExportFilters{}, fixedNow)
	assert.True(t, strings.HasPrefix(name, "driving-log_2024-03-07_"), name)
}

func TestBuildFilenameDateTokenRewrittenByDateFilter(t *testing.T) {
	filters := model.ExportFilters{
		DateRange: &model.DateRange{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		},
	}
	name := BuildFilename("driving-log_{YYYY-MM-DD}.csv", filters, fixedNow)
	assert.Contains(t, name, "2024-01-01-2024-01-31")
}

func TestBuildFilenameStatusSegmentInserted(t *testing.T) {
	filters := model.ExportFilters{
		Statuses: []model.TripStatus{model.TripStatusCompleted, model.TripStatusCancelled},
	}
	name := BuildFilename("trips.csv", filters, fixedNow)
	assert.Contains(t, name, "-COMPLETED-CANCELLED")
	assert.True(t, strings.HasSuffix(name, ".csv"), name)
}

func TestBuildFilenameStatusTokenHonored(t *testing.T) {
	filters := model.ExportFilters{
		Statuses: []model.TripStatus{model.TripStatusCompleted},
	}
	name := BuildFilename("trips_{STATUS}.csv", filters, fixedNow)
	assert.Contains(t, name, "trips_COMPLETED")
	assert.Equal(t, 1, strings.Count(name, "COMPLETED"))
}

func TestBuildFilenameAlwaysAppendsSuffix(t *testing.T) {
	name := BuildFilename("trips.csv", model.ExportFilters{}, fixedNow)
	assert.Contains(t, name, fmt.Sprintf("_%d", fixedNow.UnixMilli()))

	later := BuildFilename("trips.csv", model.ExportFilters{}, fixedNow.Add(time.Millisecond))
	assert.NotEqual(t, name, later)
}

func TestBuildFilenameEmptyTemplateUsesDefault(t *testing.T) {
	name := BuildFilename("", model.ExportFilters{}, fixedNow)
	assert.True(t, strings.HasPrefix(name, "driving-log_"), name)
	assert.True(t, strings.HasSuffix(name, ".csv"), name)
}
