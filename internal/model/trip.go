package model

import (
	"time"

	"github.com/google/uuid"
)

type TripStatus string

const (
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

// Location is a named point captured at departure or arrival. Coordinates
// are optional because older records predate GPS capture.
type Location struct {
	Name      string
	Latitude  *float64
	Longitude *float64
}

// TripRecord is one driving-log entry. Distances are stored in kilometers
// and durations in minutes; unit conversion happens at export time.
type TripRecord struct {
	ID              uuid.UUID
	Date            time.Time
	DepartureTime   *time.Time
	ArrivalTime     *time.Time
	StartLocation   Location
	EndLocation     Location
	TotalDistanceKm *float64
	DurationMinutes *float64
	DriverName      string
	VehicleNumber   string
	Purpose         string
	Status          TripStatus
	Notes           string
	CreatedAt       time.Time
}
