package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotter-eld/hos-service/internal/model"
)

type SummaryRepository struct {
	db *gorm.DB
}

func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

const summaryColumns = `
	id,
	driver_id,
	date,
	total_driving_hours,
	total_on_duty_hours,
	total_off_duty_hours,
	total_sleeper_hours,
	cycle_start_date,
	available_hours_next_day,
	is_certified,
	certified_at,
	certified_by,
	created_at,
	updated_at
`

// GetOrCreate returns the summary row for the date, inserting an empty one
// when absent. The bool reports whether a new row was created.
func (r *SummaryRepository) GetOrCreate(ctx context.Context, driverID uuid.UUID, date time.Time) (*model.DailySummary, bool, error) {
	var summary model.DailySummary
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(`
			SELECT `+summaryColumns+`
			FROM daily_summaries
			WHERE driver_id = ? AND date = ?
			LIMIT 1
		`, driverID, date).Scan(&summary).Error; err != nil {
			return err
		}
		if summary.ID != uuid.Nil {
			return nil
		}

		created = true
		return tx.Raw(`
			INSERT INTO daily_summaries (driver_id, date)
			VALUES (?, ?)
			ON CONFLICT (driver_id, date) DO UPDATE SET updated_at = NOW()
			RETURNING `+summaryColumns,
			driverID, date,
		).Scan(&summary).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &summary, created, nil
}

func (r *SummaryRepository) Get(ctx context.Context, driverID uuid.UUID, date time.Time) (*model.DailySummary, error) {
	var summary model.DailySummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+summaryColumns+`
		FROM daily_summaries
		WHERE driver_id = ? AND date = ?
		LIMIT 1
	`, driverID, date).Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	if summary.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &summary, nil
}

func (r *SummaryRepository) GetByID(ctx context.Context, driverID, id uuid.UUID) (*model.DailySummary, error) {
	var summary model.DailySummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+summaryColumns+`
		FROM daily_summaries
		WHERE id = ? AND driver_id = ?
		LIMIT 1
	`, id, driverID).Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	if summary.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &summary, nil
}

func (r *SummaryRepository) List(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]model.DailySummary, error) {
	var summaries []model.DailySummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+summaryColumns+`
		FROM daily_summaries
		WHERE driver_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, driverID, from, to).Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// UpdateTotals persists recomputed aggregates. Certification fields are
// deliberately left out; those only move through Certify.
func (r *SummaryRepository) UpdateTotals(ctx context.Context, summary *model.DailySummary) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE daily_summaries
		SET total_driving_hours = ?,
			total_on_duty_hours = ?,
			total_off_duty_hours = ?,
			total_sleeper_hours = ?,
			available_hours_next_day = ?,
			updated_at = NOW()
		WHERE id = ?
	`,
		summary.TotalDrivingHours,
		summary.TotalOnDutyHours,
		summary.TotalOffDutyHours,
		summary.TotalSleeperHours,
		summary.AvailableHoursNextDay,
		summary.ID,
	).Error
}

func (r *SummaryRepository) Certify(ctx context.Context, id, certifiedBy uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE daily_summaries
		SET is_certified = TRUE, certified_at = ?, certified_by = ?, updated_at = NOW()
		WHERE id = ?
	`, at, certifiedBy, id).Error
}
