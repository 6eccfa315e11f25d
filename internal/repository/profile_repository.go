package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotter-eld/hos-service/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get returns the driver's profile. Drivers without a stored row get the
// defaults (70/8 cycle, auto-close at midnight, Eastern time), matching how
// profiles are provisioned by the identity service.
func (r *ProfileRepository) Get(ctx context.Context, driverID uuid.UUID) (*model.DriverProfile, error) {
	var row struct {
		DriverID                uuid.UUID
		LicenseNumber           string
		Company                 string
		Timezone                string
		DefaultCycle            string
		AutoCloseTripAtMidnight bool
		AutoCloseTripTime       string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			driver_id,
			license_number,
			company,
			timezone,
			default_cycle,
			auto_close_trip_at_midnight,
			auto_close_trip_time
		FROM driver_profiles
		WHERE driver_id = ?
		LIMIT 1
	`, driverID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.DriverID == uuid.Nil {
		return defaultProfile(driverID), nil
	}

	cycle, ok := model.ParseCycleType(row.DefaultCycle)
	if !ok {
		cycle = model.Cycle70Hours8Days
	}

	return &model.DriverProfile{
		DriverID:                row.DriverID,
		LicenseNumber:           row.LicenseNumber,
		Company:                 row.Company,
		Timezone:                row.Timezone,
		DefaultCycle:            cycle,
		AutoCloseTripAtMidnight: row.AutoCloseTripAtMidnight,
		AutoCloseTripTime:       row.AutoCloseTripTime,
	}, nil
}

func defaultProfile(driverID uuid.UUID) *model.DriverProfile {
	return &model.DriverProfile{
		DriverID:                driverID,
		Timezone:                "America/New_York",
		DefaultCycle:            model.Cycle70Hours8Days,
		AutoCloseTripAtMidnight: true,
		AutoCloseTripTime:       "00:00",
	}
}
