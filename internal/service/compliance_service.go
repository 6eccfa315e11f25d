package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotter-eld/hos-service/internal/model"
)

const (
	maxDrivingHours = 11
	maxOnDutyWindow = 14
	minRestHours    = 10
)

// ViolationStore is the persistence surface for violations.
type ViolationStore interface {
	Create(ctx context.Context, violation model.Violation) (*model.Violation, error)
	GetByID(ctx context.Context, driverID, id uuid.UUID) (*model.Violation, error)
	List(ctx context.Context, driverID uuid.UUID, unresolvedOnly bool) ([]model.Violation, error)
	Resolve(ctx context.Context, id uuid.UUID, at time.Time, notes string) error
}

// ComplianceService applies the HOS rules to aggregated totals and records
// violations. Rule failures are not errors; IsCompliant returns false and
// the caller decides whether to record anything.
type ComplianceService struct {
	summaries  *SummaryService
	intervals  IntervalStore
	violations ViolationStore
}

func NewComplianceService(summaries *SummaryService, intervals IntervalStore, violations ViolationStore) *ComplianceService {
	return &ComplianceService{summaries: summaries, intervals: intervals, violations: violations}
}

// IsCompliant checks the three daily HOS rules: the 11-hour driving limit,
// the 14-hour on-duty window and the 10-hour rest requirement. All three
// must hold.
func IsCompliant(summary *model.DailySummary) bool {
	if summary.TotalDrivingHours > maxDrivingHours {
		return false
	}
	if summary.TotalDrivingHours+summary.TotalOnDutyHours > maxOnDutyWindow {
		return false
	}
	if summary.TotalOffDutyHours+summary.TotalSleeperHours < minRestHours {
		return false
	}
	return true
}

// CheckPeriod recomputes each date's summary in the range and records a
// major driving_limit violation for every non-compliant day. Repeated checks
// over overlapping ranges create duplicate violation rows; dedupe is a
// product decision still pending.
func (s *ComplianceService) CheckPeriod(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]model.Violation, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: date range is required", ErrInvalidInput)
	}
	from = dateOnly(from)
	to = dateOnly(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: from must be before or equal to to", ErrInvalidInput)
	}

	var found []model.Violation
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		summary, _, err := s.summaries.Summarize(ctx, driverID, date)
		if err != nil {
			return nil, err
		}
		if IsCompliant(summary) {
			continue
		}

		summaryID := summary.ID
		violation, err := s.violations.Create(ctx, model.Violation{
			DriverID:      driverID,
			SummaryID:     &summaryID,
			ViolationType: model.ViolationDrivingLimit,
			Description:   fmt.Sprintf("HOS violation detected for %s", date.Format("2006-01-02")),
			Severity:      model.SeverityMajor,
		})
		if err != nil {
			return nil, err
		}
		found = append(found, *violation)
	}
	return found, nil
}

type TripComplianceReport struct {
	TripID         uuid.UUID
	Compliant      bool
	AvailableHours float64
	EstimatedHours float64
	RemainingHours float64
	CurrentCycle   model.CycleType
}

// TripCompliance compares the trip's remaining cycle hours against its
// estimated duration at 60 mph. This is a coarse planning check, not a
// rolling 8-day recompute from daily summaries.
func TripCompliance(trip *model.Trip) TripComplianceReport {
	estimated := trip.EstimatedHours()
	return TripComplianceReport{
		TripID:         trip.ID,
		Compliant:      trip.AvailableHours >= estimated,
		AvailableHours: trip.AvailableHours,
		EstimatedHours: estimated,
		RemainingHours: trip.AvailableHours - estimated,
		CurrentCycle:   trip.CurrentCycle,
	}
}

type CurrentStatus struct {
	DriverID              uuid.UUID
	CurrentStatus         model.DutyStatus
	StartTime             *time.Time
	Location              string
	DrivingHoursToday     float64
	OnDutyHoursToday      float64
	CompliantToday        bool
	RemainingDrivingHours float64
	RemainingOnDutyHours  float64
}

// Status reports the driver's live HOS picture for today: the most recent
// entry's status plus totals and remaining allowances.
func (s *ComplianceService) Status(ctx context.Context, driverID uuid.UUID, now time.Time) (*CurrentStatus, error) {
	today := dateOnly(now)

	entries, err := s.intervals.ListForDate(ctx, driverID, today)
	if err != nil {
		return nil, err
	}

	status := &CurrentStatus{
		DriverID:      driverID,
		CurrentStatus: model.DutyStatusOffDuty,
	}
	for i := range entries {
		entry := &entries[i]
		switch entry.DutyStatus {
		case model.DutyStatusDriving:
			status.DrivingHoursToday += entry.TotalHours
			status.OnDutyHoursToday += entry.TotalHours
		case model.DutyStatusOnDutyNotDriving:
			status.OnDutyHoursToday += entry.TotalHours
		}
		if status.StartTime == nil || entry.StartTime.After(*status.StartTime) {
			start := entry.StartTime
			status.StartTime = &start
			status.CurrentStatus = entry.DutyStatus
			status.Location = entry.Location
		}
	}

	summary, _, err := s.summaries.Summarize(ctx, driverID, today)
	if err != nil {
		return nil, err
	}
	status.CompliantToday = IsCompliant(summary)
	status.RemainingDrivingHours = max(0, maxDrivingHours-status.DrivingHoursToday)
	status.RemainingOnDutyHours = max(0, maxOnDutyWindow-status.OnDutyHoursToday)
	return status, nil
}

func (s *ComplianceService) ListViolations(ctx context.Context, driverID uuid.UUID, unresolvedOnly bool) ([]model.Violation, error) {
	return s.violations.List(ctx, driverID, unresolvedOnly)
}

// ResolveViolation is a one-way transition with operator notes.
func (s *ComplianceService) ResolveViolation(ctx context.Context, driverID, id uuid.UUID, notes string, now time.Time) (*model.Violation, error) {
	violation, err := s.violations.GetByID(ctx, driverID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if violation.IsResolved {
		return nil, fmt.Errorf("%w: violation is already resolved", ErrInvalidTransition)
	}

	if err := s.violations.Resolve(ctx, violation.ID, now, notes); err != nil {
		return nil, err
	}
	return s.violations.GetByID(ctx, driverID, id)
}
