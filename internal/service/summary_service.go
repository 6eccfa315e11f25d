package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotter-eld/hos-service/internal/model"
)

// SummaryStore is the persistence surface for daily summaries.
type SummaryStore interface {
	GetOrCreate(ctx context.Context, driverID uuid.UUID, date time.Time) (*model.DailySummary, bool, error)
	Get(ctx context.Context, driverID uuid.UUID, date time.Time) (*model.DailySummary, error)
	GetByID(ctx context.Context, driverID, id uuid.UUID) (*model.DailySummary, error)
	List(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]model.DailySummary, error)
	UpdateTotals(ctx context.Context, summary *model.DailySummary) error
	Certify(ctx context.Context, id, certifiedBy uuid.UUID, at time.Time) error
}

// SummaryService aggregates duty intervals into per-day totals. Totals are a
// pure function of the interval set for the date, so recomputing is always
// safe and idempotent.
type SummaryService struct {
	summaries SummaryStore
	intervals IntervalStore
}

func NewSummaryService(summaries SummaryStore, intervals IntervalStore) *SummaryService {
	return &SummaryService{summaries: summaries, intervals: intervals}
}

// Summarize recomputes the four status buckets for the driver's date from the
// interval table and persists them. An interval that crosses midnight counts
// entirely toward its start date. The bool reports whether the summary row
// was created by this call.
func (s *SummaryService) Summarize(ctx context.Context, driverID uuid.UUID, date time.Time) (*model.DailySummary, bool, error) {
	date = dateOnly(date)

	summary, created, err := s.summaries.GetOrCreate(ctx, driverID, date)
	if err != nil {
		return nil, false, err
	}

	intervals, err := s.intervals.ListForDate(ctx, driverID, date)
	if err != nil {
		return nil, false, err
	}

	summary.TotalDrivingHours = 0
	summary.TotalOnDutyHours = 0
	summary.TotalOffDutyHours = 0
	summary.TotalSleeperHours = 0

	for _, interval := range intervals {
		switch interval.DutyStatus {
		case model.DutyStatusDriving:
			summary.TotalDrivingHours += interval.TotalHours
		case model.DutyStatusOnDutyNotDriving:
			summary.TotalOnDutyHours += interval.TotalHours
		case model.DutyStatusOffDuty:
			summary.TotalOffDutyHours += interval.TotalHours
		case model.DutyStatusSleeperBerth:
			summary.TotalSleeperHours += interval.TotalHours
		}
	}

	if err := s.summaries.UpdateTotals(ctx, summary); err != nil {
		return nil, false, err
	}
	return summary, created, nil
}

// GetDailySummary is the read path for reporting collaborators; it always
// recomputes so the caller sees totals consistent with current intervals.
func (s *SummaryService) GetDailySummary(ctx context.Context, driverID uuid.UUID, date time.Time) (*model.DailySummary, error) {
	summary, _, err := s.Summarize(ctx, driverID, date)
	return summary, err
}

func (s *SummaryService) ListSummaries(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]model.DailySummary, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: date range is required", ErrInvalidInput)
	}
	from = dateOnly(from)
	to = dateOnly(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: from must be before or equal to to", ErrInvalidInput)
	}
	return s.summaries.List(ctx, driverID, from, to)
}

// Certify marks the summary as certified by the driver. Certification is
// one-way; a certified summary cannot be certified again or reverted.
func (s *SummaryService) Certify(ctx context.Context, driverID, summaryID uuid.UUID, now time.Time) (*model.DailySummary, error) {
	summary, err := s.summaries.GetByID(ctx, driverID, summaryID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if summary.IsCertified {
		return nil, fmt.Errorf("%w: log is already certified", ErrInvalidTransition)
	}

	if err := s.summaries.Certify(ctx, summary.ID, driverID, now); err != nil {
		return nil, err
	}
	return s.summaries.GetByID(ctx, driverID, summaryID)
}
