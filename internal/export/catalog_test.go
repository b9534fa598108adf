package export

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinoburc/drivelog-export/internal/model"
)

func sampleTrip() model.TripRecord {
	departure := time.Date(2024, 3, 7, 8, 30, 0, 0, time.UTC)
	arrival := time.Date(2024, 3, 7, 9, 15, 0, 0, time.UTC)
	return model.TripRecord{
		ID:            uuid.MustParse("6b1cbd3e-8f24-4f8f-9a36-0d8f6f6f0a01"),
		Date:          time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		DepartureTime: &departure,
		ArrivalTime:   &arrival,
		StartLocation: model.Location{Name: "東京駅", Latitude: floatPtr(35.681234), Longitude: floatPtr(139.767125)},
		EndLocation:   model.Location{Name: "横浜駅", Latitude: floatPtr(35.465786), Longitude: floatPtr(139.622313)},
		TotalDistanceKm: floatPtr(31.5),
		DurationMinutes: floatPtr(45),
		DriverName:      "田中太郎",
		VehicleNumber:   "品川123あ4567",
		Purpose:         "営業",
		Status:          model.TripStatusCompleted,
		CreatedAt:       time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC),
	}
}

func testSettings() model.ExportSettings {
	settings := model.DefaultExportSettings()
	settings.Format = testFormat()
	return settings
}

func TestActiveFieldsSelectedMinusExcluded(t *testing.T) {
	settings := testSettings()
	settings.SelectedFields = []model.ExportField{model.FieldID, model.FieldDate, model.FieldDriverName}
	settings.ExcludedFields = []model.ExportField{model.FieldDate}

	fields, err := ActiveFields(settings)
	require.NoError(t, err)
	assert.Equal(t, []model.ExportField{model.FieldID, model.FieldDriverName}, fields)
}

func TestActiveFieldsGPSExclusion(t *testing.T) {
	settings := testSettings()
	settings.Privacy.ExcludeGPSCoordinates = true

	fields, err := ActiveFields(settings)
	require.NoError(t, err)
	for _, f := range fields {
		assert.NotContains(t, string(f), "LATITUDE")
		assert.NotContains(t, string(f), "LONGITUDE")
	}
	assert.Len(t, fields, len(model.AllExportFields)-4)
}

func TestActiveFieldsEmptySelectionFails(t *testing.T) {
	settings := testSettings()
	settings.SelectedFields = nil
	_, err := ActiveFields(settings)
	assert.ErrorIs(t, err, ErrNoFieldsSelected)
}

func TestActiveFieldsUnknownFieldFails(t *testing.T) {
	settings := testSettings()
	settings.SelectedFields = []model.ExportField{"SPEED"}
	_, err := ActiveFields(settings)
	assert.Error(t, err)
}

func newTestCatalog(settings model.ExportSettings, overrides map[model.ExportField]FieldOverride) *Catalog {
	formatter := NewFormatter(settings.Format, settings.Privacy)
	masker := NewMasker(settings.Privacy)
	return NewCatalog(formatter, masker, overrides)
}

func TestCatalogDefaultExtraction(t *testing.T) {
	settings := testSettings()
	catalog := newTestCatalog(settings, nil)
	trip := sampleTrip()

	assert.Equal(t, "2024-03-07", catalog.Extract(model.FieldDate, trip))
	assert.Equal(t, "08:30", catalog.Extract(model.FieldDepartureTime, trip))
	assert.Equal(t, "31.50", catalog.Extract(model.FieldTotalDistance, trip))
	assert.Equal(t, "田中太郎", catalog.Extract(model.FieldDriverName, trip))
	assert.Equal(t, "COMPLETED", catalog.Extract(model.FieldStatus, trip))
	assert.Equal(t, "2024-03-07 10:00", catalog.Extract(model.FieldCreatedAt, trip))
}

func TestCatalogMissingValuesRenderEmpty(t *testing.T) {
	settings := testSettings()
	catalog := newTestCatalog(settings, nil)
	trip := model.TripRecord{ID: uuid.New(), Status: model.TripStatusInProgress}

	assert.Equal(t, "", catalog.Extract(model.FieldDepartureTime, trip))
	assert.Equal(t, "", catalog.Extract(model.FieldTotalDistance, trip))
	assert.Equal(t, "", catalog.Extract(model.FieldStartLocationLatitude, trip))
	assert.NotEqual(t, "null", catalog.Extract(model.FieldDuration, trip))
}

func TestCatalogMaskingApplied(t *testing.T) {
	settings := testSettings()
	settings.Privacy.AnonymizeDriverName = true
	settings.Privacy.AnonymizeVehicleNumber = true
	catalog := newTestCatalog(settings, nil)
	trip := sampleTrip()

	assert.Equal(t, "田中***", catalog.Extract(model.FieldDriverName, trip))
	assert.Equal(t, "***123***4567", catalog.Extract(model.FieldVehicleNumber, trip))
}

func TestCatalogCoordinatePrecision(t *testing.T) {
	settings := testSettings()
	settings.Privacy.CoordinatePrecision = 2
	catalog := newTestCatalog(settings, nil)

	assert.Equal(t, "35.68", catalog.Extract(model.FieldStartLocationLatitude, sampleTrip()))
}

func TestCatalogOverrideReplacesDefaults(t *testing.T) {
	settings := testSettings()
	overrides := map[model.ExportField]FieldOverride{
		model.FieldDriverName: {
			Header:  "Driver",
			Extract: func(model.TripRecord) string { return "override" },
		},
	}
	catalog := newTestCatalog(settings, overrides)

	assert.Equal(t, "Driver", catalog.Header(model.FieldDriverName))
	assert.Equal(t, "override", catalog.Extract(model.FieldDriverName, sampleTrip()))
	assert.Equal(t, "運転者名", NewCatalog(NewFormatter(settings.Format, settings.Privacy), NewMasker(settings.Privacy), nil).Header(model.FieldDriverName))
}

func TestCatalogHeaderAndRowAlignment(t *testing.T) {
	settings := testSettings()
	catalog := newTestCatalog(settings, nil)
	fields, err := ActiveFields(settings)
	require.NoError(t, err)

	header := catalog.HeaderRow(fields)
	row := catalog.Row(fields, sampleTrip())
	assert.Equal(t, len(header), len(row))
}
