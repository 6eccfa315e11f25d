package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spotter-eld/hos-service/internal/model"
)

func TestIsCompliant(t *testing.T) {
	cases := []struct {
		name    string
		driving float64
		onDuty  float64
		offDuty float64
		sleeper float64
		want    bool
	}{
		{"typical day", 8, 2, 10, 4, true},
		{"driving at the limit", 11, 0, 13, 0, true},
		{"driving over the limit", 11.5, 0, 12.5, 0, false},
		{"window at the limit", 7, 7, 10, 0, true},
		{"window over the limit", 7, 7.5, 9.5, 0, false},
		{"rest exactly ten hours", 8, 6, 5, 5, true},
		{"rest short of ten hours", 8, 6, 5, 4.5, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary := &model.DailySummary{
				TotalDrivingHours: tc.driving,
				TotalOnDutyHours:  tc.onDuty,
				TotalOffDutyHours: tc.offDuty,
				TotalSleeperHours: tc.sleeper,
			}
			if got := IsCompliant(summary); got != tc.want {
				t.Errorf("IsCompliant = %v, want %v", got, tc.want)
			}
		})
	}
}

func newComplianceFixture() (*ComplianceService, *fakeIntervalStore, *fakeViolationStore) {
	intervals := &fakeIntervalStore{}
	violations := &fakeViolationStore{}
	summaries := NewSummaryService(&fakeSummaryStore{}, intervals)
	return NewComplianceService(summaries, intervals, violations), intervals, violations
}

func addClosedInterval(store *fakeIntervalStore, driverID uuid.UUID, date time.Time, startHour int, hours float64, status model.DutyStatus) {
	start := date.Add(time.Duration(startHour) * time.Hour)
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	store.intervals = append(store.intervals, model.DutyInterval{
		ID:         uuid.New(),
		DriverID:   driverID,
		Date:       date,
		StartTime:  start,
		EndTime:    &end,
		DutyStatus: status,
		TotalHours: hours,
	})
}

func TestCheckPeriodRecordsViolations(t *testing.T) {
	svc, intervals, _ := newComplianceFixture()
	driverID := uuid.New()
	ctx := context.Background()

	good := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	addClosedInterval(intervals, driverID, good, 0, 10, model.DutyStatusOffDuty)
	addClosedInterval(intervals, driverID, good, 10, 8, model.DutyStatusDriving)

	bad := good.AddDate(0, 0, 1)
	addClosedInterval(intervals, driverID, bad, 0, 10, model.DutyStatusOffDuty)
	addClosedInterval(intervals, driverID, bad, 10, 13, model.DutyStatusDriving)

	found, err := svc.CheckPeriod(ctx, driverID, good, bad)
	if err != nil {
		t.Fatalf("check period: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("found %d violations, want 1", len(found))
	}
	violation := found[0]
	if violation.ViolationType != model.ViolationDrivingLimit {
		t.Errorf("ViolationType = %s", violation.ViolationType)
	}
	if violation.Severity != model.SeverityMajor {
		t.Errorf("Severity = %s", violation.Severity)
	}
	if violation.SummaryID == nil {
		t.Error("violation should link to its daily summary")
	}

	listed, err := svc.ListViolations(ctx, driverID, true)
	if err != nil {
		t.Fatalf("list violations: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("listed %d unresolved violations, want 1", len(listed))
	}
}

func TestCheckPeriodRejectsInvertedRange(t *testing.T) {
	svc, _, _ := newComplianceFixture()
	from := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.CheckPeriod(context.Background(), uuid.New(), from, from.AddDate(0, 0, -1))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestStatusReportsLatestEntryAndRemaining(t *testing.T) {
	svc, intervals, _ := newComplianceFixture()
	driverID := uuid.New()
	ctx := context.Background()

	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	addClosedInterval(intervals, driverID, today, 0, 10, model.DutyStatusOffDuty)
	addClosedInterval(intervals, driverID, today, 10, 4, model.DutyStatusDriving)
	addClosedInterval(intervals, driverID, today, 14, 2, model.DutyStatusOnDutyNotDriving)

	status, err := svc.Status(ctx, driverID, today.Add(16*time.Hour+30*time.Minute))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.CurrentStatus != model.DutyStatusOnDutyNotDriving {
		t.Errorf("CurrentStatus = %s, want the latest entry's status", status.CurrentStatus)
	}
	if status.DrivingHoursToday != 4 {
		t.Errorf("DrivingHoursToday = %v, want 4", status.DrivingHoursToday)
	}
	if status.OnDutyHoursToday != 6 {
		t.Errorf("OnDutyHoursToday = %v, want 6 (driving counts toward the window)", status.OnDutyHoursToday)
	}
	if status.RemainingDrivingHours != 7 {
		t.Errorf("RemainingDrivingHours = %v, want 7", status.RemainingDrivingHours)
	}
	if status.RemainingOnDutyHours != 8 {
		t.Errorf("RemainingOnDutyHours = %v, want 8", status.RemainingOnDutyHours)
	}
	if !status.CompliantToday {
		t.Error("day should be compliant")
	}
}

func TestStatusRemainingClampsAtZero(t *testing.T) {
	svc, intervals, _ := newComplianceFixture()
	driverID := uuid.New()

	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	addClosedInterval(intervals, driverID, today, 0, 13, model.DutyStatusDriving)

	status, err := svc.Status(context.Background(), driverID, today.Add(13*time.Hour))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.RemainingDrivingHours != 0 {
		t.Errorf("RemainingDrivingHours = %v, want 0", status.RemainingDrivingHours)
	}
	if status.CompliantToday {
		t.Error("13 driving hours should not be compliant")
	}
}

func TestStatusEmptyDayDefaultsOffDuty(t *testing.T) {
	svc, _, _ := newComplianceFixture()

	status, err := svc.Status(context.Background(), uuid.New(), time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.CurrentStatus != model.DutyStatusOffDuty {
		t.Errorf("CurrentStatus = %s, want off_duty default", status.CurrentStatus)
	}
	if status.StartTime != nil {
		t.Error("StartTime should be nil with no entries")
	}
}

func TestTripCompliance(t *testing.T) {
	distance := 600.0
	trip := &model.Trip{
		ID:             uuid.New(),
		CurrentCycle:   model.Cycle70Hours8Days,
		TotalDistance:  &distance,
		AvailableHours: 70,
	}

	report := TripCompliance(trip)
	if !report.Compliant {
		t.Error("trip should be compliant")
	}
	if report.EstimatedHours != 10 {
		t.Errorf("EstimatedHours = %v, want 10", report.EstimatedHours)
	}
	if report.RemainingHours != 60 {
		t.Errorf("RemainingHours = %v, want 60", report.RemainingHours)
	}

	trip.AvailableHours = 8
	report = TripCompliance(trip)
	if report.Compliant {
		t.Error("trip should not be compliant with 8 available hours")
	}
	if report.RemainingHours != -2 {
		t.Errorf("RemainingHours = %v, want -2", report.RemainingHours)
	}
}

func TestResolveViolationIsOneWay(t *testing.T) {
	svc, _, violations := newComplianceFixture()
	driverID := uuid.New()
	ctx := context.Background()

	created, err := violations.Create(ctx, model.Violation{
		DriverID:      driverID,
		ViolationType: model.ViolationDrivingLimit,
		Severity:      model.SeverityMajor,
	})
	if err != nil {
		t.Fatalf("create violation: %v", err)
	}

	now := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	resolved, err := svc.ResolveViolation(ctx, driverID, created.ID, "coached the driver", now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !resolved.IsResolved {
		t.Error("violation should be resolved")
	}
	if resolved.ResolutionNotes != "coached the driver" {
		t.Errorf("ResolutionNotes = %q", resolved.ResolutionNotes)
	}

	_, err = svc.ResolveViolation(ctx, driverID, created.ID, "", now)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second resolve: err = %v, want ErrInvalidTransition", err)
	}
}
