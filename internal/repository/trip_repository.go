package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shinoburc/drivelog-export/internal/model"
)

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

type tripRow struct {
	ID                uuid.UUID
	TripDate          time.Time
	DepartureTime     *time.Time
	ArrivalTime       *time.Time
	StartLocationName string
	StartLatitude     *float64
	StartLongitude    *float64
	EndLocationName   string
	EndLatitude       *float64
	EndLongitude      *float64
	TotalDistanceKm   *float64
	DurationMinutes   *float64
	DriverName        string
	VehicleNumber     string
	Purpose           string
	Status            string
	Notes             string
	CreatedAt         time.Time
}

// FetchAll returns a point-in-time snapshot of every trip record,
// ordered oldest first. Each call materializes a fresh slice, so
// concurrent writers never share row memory with an export run.
func (r *TripRepository) FetchAll(ctx context.Context) ([]model.TripRecord, error) {
	var rows []tripRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, trip_date, departure_time, arrival_time,
			start_location_name, start_latitude, start_longitude,
			end_location_name, end_latitude, end_longitude,
			total_distance_km, duration_minutes,
			driver_name, vehicle_number, purpose, status, notes, created_at
		FROM trips
		ORDER BY trip_date ASC, created_at ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]model.TripRecord, len(rows))
	for i, row := range rows {
		records[i] = model.TripRecord{
			ID:            row.ID,
			Date:          row.TripDate,
			DepartureTime: row.DepartureTime,
			ArrivalTime:   row.ArrivalTime,
			StartLocation: model.Location{
				Name:      row.StartLocationName,
				Latitude:  row.StartLatitude,
				Longitude: row.StartLongitude,
			},
			EndLocation: model.Location{
				Name:      row.EndLocationName,
				Latitude:  row.EndLatitude,
				Longitude: row.EndLongitude,
			},
			TotalDistanceKm: row.TotalDistanceKm,
			DurationMinutes: row.DurationMinutes,
			DriverName:      row.DriverName,
			VehicleNumber:   row.VehicleNumber,
			Purpose:         row.Purpose,
			Status:          model.TripStatus(row.Status),
			Notes:           row.Notes,
			CreatedAt:       row.CreatedAt,
		}
	}
	return records, nil
}
