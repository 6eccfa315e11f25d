package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotter-eld/hos-service/internal/model"
)

type IntervalRepository struct {
	db *gorm.DB
}

func NewIntervalRepository(db *gorm.DB) *IntervalRepository {
	return &IntervalRepository{db: db}
}

const intervalColumns = `
	id,
	driver_id,
	date,
	start_time,
	end_time,
	duty_status,
	location,
	latitude,
	longitude,
	notes,
	vehicle_info,
	trailer_info,
	odometer_start,
	odometer_end,
	total_hours,
	created_at,
	updated_at
`

func (r *IntervalRepository) Create(ctx context.Context, interval model.DutyInterval) (*model.DutyInterval, error) {
	var saved model.DutyInterval
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO duty_intervals (
			driver_id,
			date,
			start_time,
			end_time,
			duty_status,
			location,
			latitude,
			longitude,
			notes,
			vehicle_info,
			trailer_info,
			odometer_start,
			odometer_end,
			total_hours
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+intervalColumns,
		interval.DriverID,
		interval.Date,
		interval.StartTime,
		interval.EndTime,
		interval.DutyStatus,
		interval.Location,
		interval.Latitude,
		interval.Longitude,
		interval.Notes,
		interval.VehicleInfo,
		interval.TrailerInfo,
		interval.OdometerStart,
		interval.OdometerEnd,
		interval.TotalHours,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// CreateClosingOpenDriving closes any open driving interval for the driver at
// the new interval's start time and inserts the new interval, atomically.
// This is what keeps a driver from holding two open driving periods.
func (r *IntervalRepository) CreateClosingOpenDriving(ctx context.Context, interval model.DutyInterval) (*model.DutyInterval, error) {
	var saved model.DutyInterval
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := closeOpenDrivingTx(tx, interval.DriverID, interval.StartTime); err != nil {
			return err
		}

		return tx.Raw(`
			INSERT INTO duty_intervals (
				driver_id,
				date,
				start_time,
				end_time,
				duty_status,
				location,
				latitude,
				longitude,
				notes,
				vehicle_info,
				trailer_info,
				odometer_start,
				odometer_end,
				total_hours
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING `+intervalColumns,
			interval.DriverID,
			interval.Date,
			interval.StartTime,
			interval.EndTime,
			interval.DutyStatus,
			interval.Location,
			interval.Latitude,
			interval.Longitude,
			interval.Notes,
			interval.VehicleInfo,
			interval.TrailerInfo,
			interval.OdometerStart,
			interval.OdometerEnd,
			interval.TotalHours,
		).Scan(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// closeOpenDrivingTx closes every open driving interval for the driver at the
// given instant. Callers that insert a new interval inside the same
// transaction use this to keep a driver from holding two open driving
// periods, whichever code path opened the first one.
func closeOpenDrivingTx(tx *gorm.DB, driverID uuid.UUID, at time.Time) error {
	var open []model.DutyInterval
	if err := tx.Raw(`
		SELECT `+intervalColumns+`
		FROM duty_intervals
		WHERE driver_id = ?
			AND duty_status = 'driving'
			AND end_time IS NULL
		ORDER BY start_time ASC
	`, driverID).Scan(&open).Error; err != nil {
		return err
	}

	for _, prior := range open {
		hours := model.DurationHours(prior.StartTime, at)
		if err := tx.Exec(`
			UPDATE duty_intervals
			SET end_time = ?, total_hours = ?, updated_at = NOW()
			WHERE id = ?
		`, at, hours, prior.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *IntervalRepository) GetByID(ctx context.Context, driverID, id uuid.UUID) (*model.DutyInterval, error) {
	var interval model.DutyInterval
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+intervalColumns+`
		FROM duty_intervals
		WHERE id = ? AND driver_id = ?
		LIMIT 1
	`, id, driverID).Scan(&interval).Error
	if err != nil {
		return nil, err
	}
	if interval.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &interval, nil
}

// Close sets the interval's end time and computed hours. Status and timing of
// already-closed intervals are never touched here.
func (r *IntervalRepository) Close(ctx context.Context, id uuid.UUID, end time.Time, hours float64, odometerEnd *float64, notes string) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE duty_intervals
		SET end_time = ?,
			total_hours = ?,
			odometer_end = COALESCE(?, odometer_end),
			notes = CASE WHEN ? = '' THEN notes ELSE ? END,
			updated_at = NOW()
		WHERE id = ?
	`, end, hours, odometerEnd, notes, notes, id).Error
}

func (r *IntervalRepository) UpdateNotes(ctx context.Context, driverID, id uuid.UUID, notes string) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE duty_intervals
		SET notes = ?, updated_at = NOW()
		WHERE id = ? AND driver_id = ?
	`, notes, id, driverID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *IntervalRepository) Delete(ctx context.Context, driverID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM duty_intervals WHERE id = ? AND driver_id = ?
	`, id, driverID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *IntervalRepository) ListForDate(ctx context.Context, driverID uuid.UUID, date time.Time) ([]model.DutyInterval, error) {
	var intervals []model.DutyInterval
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+intervalColumns+`
		FROM duty_intervals
		WHERE driver_id = ? AND date = ?
		ORDER BY start_time ASC
	`, driverID, date).Scan(&intervals).Error
	if err != nil {
		return nil, err
	}
	return intervals, nil
}

func (r *IntervalRepository) ListForRange(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]model.DutyInterval, error) {
	var intervals []model.DutyInterval
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+intervalColumns+`
		FROM duty_intervals
		WHERE driver_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, start_time ASC
	`, driverID, from, to).Scan(&intervals).Error
	if err != nil {
		return nil, err
	}
	return intervals, nil
}

// ListOpenOnDuty returns open on-duty-not-driving intervals across all
// drivers that started at or before the cutoff. Scheduler scan path.
func (r *IntervalRepository) ListOpenOnDuty(ctx context.Context, cutoff time.Time) ([]model.DutyInterval, error) {
	var intervals []model.DutyInterval
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+intervalColumns+`
		FROM duty_intervals
		WHERE duty_status = 'on_duty_not_driving'
			AND end_time IS NULL
			AND start_time <= ?
		ORDER BY start_time ASC
	`, cutoff).Scan(&intervals).Error
	if err != nil {
		return nil, err
	}
	return intervals, nil
}

// RevertToDriving closes the pickup/drop-off interval and opens a driving
// interval in one transaction. The close-then-open pair must commit together
// to preserve the single-open-interval invariant.
func (r *IntervalRepository) RevertToDriving(ctx context.Context, entry model.DutyInterval, closeAt time.Time, replacement model.DutyInterval) (*model.DutyInterval, error) {
	var saved model.DutyInterval
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hours := model.DurationHours(entry.StartTime, closeAt)
		result := tx.Exec(`
			UPDATE duty_intervals
			SET end_time = ?, total_hours = ?, updated_at = NOW()
			WHERE id = ? AND end_time IS NULL
		`, closeAt, hours, entry.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Already closed by a concurrent tick; nothing to do.
			return gorm.ErrRecordNotFound
		}

		return tx.Raw(`
			INSERT INTO duty_intervals (
				driver_id, date, start_time, duty_status, location, notes, total_hours
			) VALUES (?, ?, ?, 'driving', ?, ?, 0)
			RETURNING `+intervalColumns,
			replacement.DriverID,
			replacement.Date,
			replacement.StartTime,
			replacement.Location,
			replacement.Notes,
		).Scan(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
