package export

import (
	"fmt"

	"github.com/shinoburc/drivelog-export/internal/model"
)

// FieldOverride replaces the catalog defaults entirely for one field.
type FieldOverride struct {
	Header  string
	Extract func(model.TripRecord) string
}

var defaultHeaders = map[model.ExportField]string{
	model.FieldID:                     "ID",
	model.FieldDate:                   "日付",
	model.FieldDepartureTime:          "出発時刻",
	model.FieldArrivalTime:            "到着時刻",
	model.FieldStartLocationName:      "出発地",
	model.FieldStartLocationLatitude:  "出発地緯度",
	model.FieldStartLocationLongitude: "出発地経度",
	model.FieldEndLocationName:        "到着地",
	model.FieldEndLocationLatitude:    "到着地緯度",
	model.FieldEndLocationLongitude:   "到着地経度",
	model.FieldTotalDistance:          "走行距離",
	model.FieldDuration:               "所要時間",
	model.FieldDriverName:             "運転者名",
	model.FieldVehicleNumber:          "車両番号",
	model.FieldPurpose:                "目的",
	model.FieldStatus:                 "ステータス",
	model.FieldNotes:                  "メモ",
	model.FieldCreatedAt:              "作成日時",
}

var gpsFields = map[model.ExportField]struct{}{
	model.FieldStartLocationLatitude:  {},
	model.FieldStartLocationLongitude: {},
	model.FieldEndLocationLatitude:    {},
	model.FieldEndLocationLongitude:   {},
}

// Catalog maps export fields to headers and value extractors. Overrides
// supplied by the caller win over the defaults.
type Catalog struct {
	formatter *Formatter
	masker    *Masker
	overrides map[model.ExportField]FieldOverride
}

func NewCatalog(formatter *Formatter, masker *Masker, overrides map[model.ExportField]FieldOverride) *Catalog {
	return &Catalog{
		formatter: formatter,
		masker:    masker,
		overrides: overrides,
	}
}

// ActiveFields resolves the field list for a run: selected minus excluded,
// with coordinate fields dropped entirely when GPS exclusion is on.
func ActiveFields(settings model.ExportSettings) ([]model.ExportField, error) {
	excluded := make(map[model.ExportField]struct{}, len(settings.ExcludedFields))
	for _, f := range settings.ExcludedFields {
		excluded[f] = struct{}{}
	}

	fields := make([]model.ExportField, 0, len(settings.SelectedFields))
	for _, f := range settings.SelectedFields {
		if _, ok := defaultHeaders[f]; !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrNoFieldsSelected, string(f))
		}
		if _, ok := excluded[f]; ok {
			continue
		}
		if settings.Privacy.ExcludeGPSCoordinates {
			if _, ok := gpsFields[f]; ok {
				continue
			}
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return nil, ErrNoFieldsSelected
	}
	return fields, nil
}

func (c *Catalog) Header(field model.ExportField) string {
	if o, ok := c.overrides[field]; ok && o.Header != "" {
		return o.Header
	}
	return defaultHeaders[field]
}

// HeaderRow returns the header cells for the given fields in order.
func (c *Catalog) HeaderRow(fields []model.ExportField) []string {
	row := make([]string, len(fields))
	for i, f := range fields {
		row[i] = c.Header(f)
	}
	return row
}

// Row renders one record into formatted cells for the given fields.
func (c *Catalog) Row(fields []model.ExportField, rec model.TripRecord) []string {
	row := make([]string, len(fields))
	for i, f := range fields {
		row[i] = c.Extract(f, rec)
	}
	return row
}

// Extract produces the formatted string value of one field. An override,
// when present, replaces the default extractor entirely.
func (c *Catalog) Extract(field model.ExportField, rec model.TripRecord) string {
	if o, ok := c.overrides[field]; ok && o.Extract != nil {
		return o.Extract(rec)
	}

	switch field {
	case model.FieldID:
		return rec.ID.String()
	case model.FieldDate:
		return c.formatter.FormatDate(rec.Date)
	case model.FieldDepartureTime:
		return c.formatter.FormatTime(rec.DepartureTime)
	case model.FieldArrivalTime:
		return c.formatter.FormatTime(rec.ArrivalTime)
	case model.FieldStartLocationName:
		return c.masker.MaskLocationName(rec.StartLocation.Name)
	case model.FieldStartLocationLatitude:
		return c.formatter.FormatCoordinate(rec.StartLocation.Latitude)
	case model.FieldStartLocationLongitude:
		return c.formatter.FormatCoordinate(rec.StartLocation.Longitude)
	case model.FieldEndLocationName:
		return c.masker.MaskLocationName(rec.EndLocation.Name)
	case model.FieldEndLocationLatitude:
		return c.formatter.FormatCoordinate(rec.EndLocation.Latitude)
	case model.FieldEndLocationLongitude:
		return c.formatter.FormatCoordinate(rec.EndLocation.Longitude)
	case model.FieldTotalDistance:
		return c.formatter.FormatDistance(rec.TotalDistanceKm)
	case model.FieldDuration:
		return c.formatter.FormatDuration(rec.DurationMinutes)
	case model.FieldDriverName:
		return c.masker.Mask(rec.DriverName, MaskDriverName)
	case model.FieldVehicleNumber:
		return c.masker.Mask(rec.VehicleNumber, MaskVehicleNumber)
	case model.FieldPurpose:
		return rec.Purpose
	case model.FieldStatus:
		return string(rec.Status)
	case model.FieldNotes:
		return rec.Notes
	case model.FieldCreatedAt:
		return c.formatter.FormatDateTime(rec.CreatedAt)
	}
	return ""
}
