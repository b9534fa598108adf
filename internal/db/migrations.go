package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'trip_status') THEN
			CREATE TYPE trip_status AS ENUM ('IN_PROGRESS', 'COMPLETED', 'CANCELLED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS trips (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		trip_date DATE NOT NULL,
		departure_time TIMESTAMPTZ,
		arrival_time TIMESTAMPTZ,
		start_location_name TEXT NOT NULL DEFAULT '',
		start_latitude DOUBLE PRECISION,
		start_longitude DOUBLE PRECISION,
		end_location_name TEXT NOT NULL DEFAULT '',
		end_latitude DOUBLE PRECISION,
		end_longitude DOUBLE PRECISION,
		total_distance_km NUMERIC(10,3),
		duration_minutes NUMERIC(10,2),
		driver_name TEXT NOT NULL DEFAULT '',
		vehicle_number TEXT NOT NULL DEFAULT '',
		purpose TEXT NOT NULL DEFAULT '',
		status trip_status NOT NULL DEFAULT 'COMPLETED',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_trip_date ON trips (trip_date);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_status ON trips (status);`,
	`CREATE TABLE IF NOT EXISTS export_settings (
		key VARCHAR(64) PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS export_presets (
		id UUID PRIMARY KEY,
		name VARCHAR(128) NOT NULL,
		settings JSONB NOT NULL,
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		use_count BIGINT NOT NULL DEFAULT 0,
		last_used_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_export_presets_default ON export_presets (is_default) WHERE is_default;`,
	`CREATE TABLE IF NOT EXISTS export_history (
		id UUID PRIMARY KEY,
		filename TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		byte_size BIGINT NOT NULL DEFAULT 0,
		total_records INTEGER NOT NULL DEFAULT 0,
		exported_records INTEGER NOT NULL DEFAULT 0,
		elapsed_ms BIGINT NOT NULL DEFAULT 0,
		error_code VARCHAR(64) NOT NULL DEFAULT '',
		exported_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_export_history_exported_at ON export_history (exported_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
