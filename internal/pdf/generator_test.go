package pdf

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinoburc/drivelog-export/internal/model"
)

func TestGenerateReport(t *testing.T) {
	g := NewGenerator()

	entries := []model.ExportHistoryEntry{
		{
			ID:              uuid.New(),
			Filename:        "driving-log_2024-03-07_1709765142000.csv",
			Success:         true,
			ByteSize:        2048,
			TotalRecords:    120,
			ExportedRecords: 98,
			Elapsed:         1300 * time.Millisecond,
			ExportedAt:      time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC),
		},
		{
			ID:         uuid.New(),
			Filename:   "driving-log_2024-03-01.csv",
			Success:    false,
			ErrorCode:  "DATA_FETCH_FAILED",
			ExportedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		},
	}

	content, err := g.Generate(entries)
	require.NoError(t, err)
	assert.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestGenerateEmptyHistory(t *testing.T) {
	g := NewGenerator()
	content, err := g.Generate(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, content)
}
