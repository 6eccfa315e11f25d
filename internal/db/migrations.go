package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'duty_status') THEN
			CREATE TYPE duty_status AS ENUM ('off_duty', 'sleeper_berth', 'driving', 'on_duty_not_driving');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'trip_status') THEN
			CREATE TYPE trip_status AS ENUM ('planning', 'active', 'completed', 'cancelled');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'cycle_type') THEN
			CREATE TYPE cycle_type AS ENUM ('70_8', '60_7');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS driver_profiles (
		driver_id UUID PRIMARY KEY,
		license_number VARCHAR(50) NOT NULL DEFAULT '',
		company VARCHAR(255) NOT NULL DEFAULT '',
		timezone VARCHAR(50) NOT NULL DEFAULT 'America/New_York',
		default_cycle cycle_type NOT NULL DEFAULT '70_8',
		auto_close_trip_at_midnight BOOLEAN NOT NULL DEFAULT TRUE,
		auto_close_trip_time VARCHAR(5) NOT NULL DEFAULT '00:00'
	);`,
	`CREATE TABLE IF NOT EXISTS duty_intervals (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		driver_id UUID NOT NULL,
		date DATE NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ,
		duty_status duty_status NOT NULL,
		location VARCHAR(255) NOT NULL DEFAULT '',
		latitude NUMERIC(10,8),
		longitude NUMERIC(11,8),
		notes TEXT NOT NULL DEFAULT '',
		vehicle_info VARCHAR(255) NOT NULL DEFAULT '',
		trailer_info VARCHAR(255) NOT NULL DEFAULT '',
		odometer_start NUMERIC(8,1),
		odometer_end NUMERIC(8,1),
		total_hours NUMERIC(5,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_duty_interval_start ON duty_intervals (driver_id, date, start_time);`,
	`CREATE INDEX IF NOT EXISTS idx_duty_interval_open ON duty_intervals (driver_id) WHERE end_time IS NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_duty_interval_status ON duty_intervals (duty_status);`,
	`CREATE TABLE IF NOT EXISTS daily_summaries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		driver_id UUID NOT NULL,
		date DATE NOT NULL,
		total_driving_hours NUMERIC(5,2) NOT NULL DEFAULT 0,
		total_on_duty_hours NUMERIC(5,2) NOT NULL DEFAULT 0,
		total_off_duty_hours NUMERIC(5,2) NOT NULL DEFAULT 0,
		total_sleeper_hours NUMERIC(5,2) NOT NULL DEFAULT 0,
		cycle_start_date DATE,
		available_hours_next_day NUMERIC(5,2) NOT NULL DEFAULT 70,
		is_certified BOOLEAN NOT NULL DEFAULT FALSE,
		certified_at TIMESTAMPTZ,
		certified_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_daily_summary_date ON daily_summaries (driver_id, date);`,
	`CREATE TABLE IF NOT EXISTS violations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		driver_id UUID NOT NULL,
		interval_id UUID REFERENCES duty_intervals(id) ON DELETE CASCADE,
		summary_id UUID REFERENCES daily_summaries(id) ON DELETE CASCADE,
		violation_type VARCHAR(50) NOT NULL,
		description TEXT NOT NULL,
		severity VARCHAR(20) NOT NULL DEFAULT 'minor',
		detected_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_resolved BOOLEAN NOT NULL DEFAULT FALSE,
		resolved_at TIMESTAMPTZ,
		resolution_notes TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_violation_driver ON violations (driver_id, detected_at DESC);`,
	`CREATE TABLE IF NOT EXISTS trips (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		driver_id UUID NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		current_cycle cycle_type NOT NULL DEFAULT '70_8',
		status trip_status NOT NULL DEFAULT 'planning',
		start_time TIMESTAMPTZ,
		end_time TIMESTAMPTZ,
		total_distance NUMERIC(8,2),
		available_hours NUMERIC(5,2) NOT NULL DEFAULT 70,
		used_hours NUMERIC(5,2) NOT NULL DEFAULT 0,
		last_reset_date DATE NOT NULL DEFAULT CURRENT_DATE,
		is_automatic BOOLEAN NOT NULL DEFAULT FALSE,
		trip_date DATE NOT NULL DEFAULT CURRENT_DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_trip_driver_status ON trips (driver_id, status);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_trip_active_automatic ON trips (driver_id, trip_date) WHERE status = 'active' AND is_automatic;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
