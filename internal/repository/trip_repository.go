package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotter-eld/hos-service/internal/model"
)

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

const tripColumns = `
	id,
	driver_id,
	name,
	current_cycle,
	status,
	start_time,
	end_time,
	total_distance,
	available_hours,
	used_hours,
	last_reset_date,
	is_automatic,
	trip_date,
	created_at,
	updated_at
`

func (r *TripRepository) Create(ctx context.Context, trip model.Trip) (*model.Trip, error) {
	var saved model.Trip
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO trips (
			driver_id,
			name,
			current_cycle,
			status,
			start_time,
			end_time,
			total_distance,
			available_hours,
			used_hours,
			last_reset_date,
			is_automatic,
			trip_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+tripColumns,
		trip.DriverID,
		trip.Name,
		trip.CurrentCycle,
		trip.Status,
		trip.StartTime,
		trip.EndTime,
		trip.TotalDistance,
		trip.AvailableHours,
		trip.UsedHours,
		trip.LastResetDate,
		trip.IsAutomatic,
		trip.TripDate,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// CreateWithInterval inserts a trip together with its opening duty interval.
// Used by trip start/complete flows and automatic trip creation, where the
// trip row and the interval must commit together. Open driving intervals for
// the driver are closed at the new interval's start, same as a direct open.
func (r *TripRepository) CreateWithInterval(ctx context.Context, trip model.Trip, interval model.DutyInterval) (*model.Trip, error) {
	var saved model.Trip
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(`
			INSERT INTO trips (
				driver_id, name, current_cycle, status, start_time, end_time,
				total_distance, available_hours, used_hours, last_reset_date,
				is_automatic, trip_date
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING `+tripColumns,
			trip.DriverID,
			trip.Name,
			trip.CurrentCycle,
			trip.Status,
			trip.StartTime,
			trip.EndTime,
			trip.TotalDistance,
			trip.AvailableHours,
			trip.UsedHours,
			trip.LastResetDate,
			trip.IsAutomatic,
			trip.TripDate,
		).Scan(&saved).Error; err != nil {
			return err
		}

		if err := closeOpenDrivingTx(tx, interval.DriverID, interval.StartTime); err != nil {
			return err
		}
		return tx.Exec(`
			INSERT INTO duty_intervals (
				driver_id, date, start_time, duty_status, location, notes, total_hours
			) VALUES (?, ?, ?, ?, ?, ?, 0)
		`,
			interval.DriverID,
			interval.Date,
			interval.StartTime,
			interval.DutyStatus,
			interval.Location,
			interval.Notes,
		).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *TripRepository) GetByID(ctx context.Context, driverID, id uuid.UUID) (*model.Trip, error) {
	var trip model.Trip
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+tripColumns+`
		FROM trips
		WHERE id = ? AND driver_id = ?
		LIMIT 1
	`, id, driverID).Scan(&trip).Error
	if err != nil {
		return nil, err
	}
	if trip.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &trip, nil
}

func (r *TripRepository) List(ctx context.Context, driverID uuid.UUID) ([]model.Trip, error) {
	var trips []model.Trip
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+tripColumns+`
		FROM trips
		WHERE driver_id = ?
		ORDER BY trip_date DESC, created_at DESC
	`, driverID).Scan(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

// GetActiveAutomatic returns the driver's active automatic trip for the date,
// or gorm.ErrRecordNotFound.
func (r *TripRepository) GetActiveAutomatic(ctx context.Context, driverID uuid.UUID, date time.Time) (*model.Trip, error) {
	var trip model.Trip
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+tripColumns+`
		FROM trips
		WHERE driver_id = ?
			AND status = 'active'
			AND is_automatic
			AND trip_date = ?
		LIMIT 1
	`, driverID, date).Scan(&trip).Error
	if err != nil {
		return nil, err
	}
	if trip.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &trip, nil
}

// ListActiveAutomatic returns every active automatic trip across drivers.
// Scheduler rollover scan path.
func (r *TripRepository) ListActiveAutomatic(ctx context.Context) ([]model.Trip, error) {
	var trips []model.Trip
	err := r.db.WithContext(ctx).Raw(`
		SELECT ` + tripColumns + `
		FROM trips
		WHERE status = 'active' AND is_automatic
		ORDER BY driver_id
	`).Scan(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *TripRepository) Update(ctx context.Context, trip *model.Trip) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE trips
		SET name = ?,
			status = ?,
			start_time = ?,
			end_time = ?,
			total_distance = ?,
			available_hours = ?,
			used_hours = ?,
			last_reset_date = ?,
			updated_at = NOW()
		WHERE id = ?
	`,
		trip.Name,
		trip.Status,
		trip.StartTime,
		trip.EndTime,
		trip.TotalDistance,
		trip.AvailableHours,
		trip.UsedHours,
		trip.LastResetDate,
		trip.ID,
	).Error
}

// TransitionStatus applies trip mutations only when the row is still in the
// expected status. Returns gorm.ErrRecordNotFound when another writer got
// there first.
func (r *TripRepository) TransitionStatus(ctx context.Context, trip *model.Trip, expectStatus model.TripStatus) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE trips
		SET status = ?,
			start_time = ?,
			end_time = ?,
			available_hours = ?,
			used_hours = ?,
			last_reset_date = ?,
			updated_at = NOW()
		WHERE id = ? AND status = ?
	`,
		trip.Status,
		trip.StartTime,
		trip.EndTime,
		trip.AvailableHours,
		trip.UsedHours,
		trip.LastResetDate,
		trip.ID,
		expectStatus,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateWithInterval applies trip mutations and inserts a duty interval in
// one transaction. The WHERE status guard makes the write a no-op when a
// concurrent tick already moved the trip out of the expected state. Open
// driving intervals for the driver are closed at the new interval's start.
func (r *TripRepository) UpdateWithInterval(ctx context.Context, trip *model.Trip, expectStatus model.TripStatus, interval model.DutyInterval) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(`
			UPDATE trips
			SET status = ?,
				start_time = ?,
				end_time = ?,
				available_hours = ?,
				used_hours = ?,
				last_reset_date = ?,
				updated_at = NOW()
			WHERE id = ? AND status = ?
		`,
			trip.Status,
			trip.StartTime,
			trip.EndTime,
			trip.AvailableHours,
			trip.UsedHours,
			trip.LastResetDate,
			trip.ID,
			expectStatus,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := closeOpenDrivingTx(tx, interval.DriverID, interval.StartTime); err != nil {
			return err
		}
		return tx.Exec(`
			INSERT INTO duty_intervals (
				driver_id, date, start_time, duty_status, location, notes, total_hours
			) VALUES (?, ?, ?, ?, ?, ?, 0)
		`,
			interval.DriverID,
			interval.Date,
			interval.StartTime,
			interval.DutyStatus,
			interval.Location,
			interval.Notes,
		).Error
	})
}
