package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotter-eld/hos-service/internal/model"
)

type ViolationRepository struct {
	db *gorm.DB
}

func NewViolationRepository(db *gorm.DB) *ViolationRepository {
	return &ViolationRepository{db: db}
}

const violationColumns = `
	id,
	driver_id,
	interval_id,
	summary_id,
	violation_type,
	description,
	severity,
	detected_at,
	is_resolved,
	resolved_at,
	resolution_notes
`

func (r *ViolationRepository) Create(ctx context.Context, violation model.Violation) (*model.Violation, error) {
	var saved model.Violation
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO violations (
			driver_id,
			interval_id,
			summary_id,
			violation_type,
			description,
			severity
		) VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+violationColumns,
		violation.DriverID,
		violation.IntervalID,
		violation.SummaryID,
		violation.ViolationType,
		violation.Description,
		violation.Severity,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ViolationRepository) GetByID(ctx context.Context, driverID, id uuid.UUID) (*model.Violation, error) {
	var violation model.Violation
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+violationColumns+`
		FROM violations
		WHERE id = ? AND driver_id = ?
		LIMIT 1
	`, id, driverID).Scan(&violation).Error
	if err != nil {
		return nil, err
	}
	if violation.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &violation, nil
}

func (r *ViolationRepository) List(ctx context.Context, driverID uuid.UUID, unresolvedOnly bool) ([]model.Violation, error) {
	query := `
		SELECT ` + violationColumns + `
		FROM violations
		WHERE driver_id = ?
	`
	if unresolvedOnly {
		query += " AND NOT is_resolved"
	}
	query += " ORDER BY detected_at DESC"

	var violations []model.Violation
	if err := r.db.WithContext(ctx).Raw(query, driverID).Scan(&violations).Error; err != nil {
		return nil, err
	}
	return violations, nil
}

func (r *ViolationRepository) Resolve(ctx context.Context, id uuid.UUID, at time.Time, notes string) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE violations
		SET is_resolved = TRUE, resolved_at = ?, resolution_notes = ?
		WHERE id = ?
	`, at, notes, id).Error
}
