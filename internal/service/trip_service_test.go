package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spotter-eld/hos-service/internal/model"
)

func TestCreateTripDefaultsCycleFromProfile(t *testing.T) {
	trips := newFakeTripStore()
	driverID := uuid.New()
	profiles := &fakeProfileStore{profiles: map[uuid.UUID]model.DriverProfile{
		driverID: {
			DriverID:     driverID,
			DefaultCycle: model.Cycle60Hours7Days,
		},
	}}
	svc := NewTripService(trips, profiles)
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	trip, err := svc.CreateTrip(context.Background(), driverID, CreateTripInput{Name: "Chicago run"}, now)
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if trip.CurrentCycle != model.Cycle60Hours7Days {
		t.Errorf("CurrentCycle = %s, want the profile default", trip.CurrentCycle)
	}
	if trip.AvailableHours != 60 {
		t.Errorf("AvailableHours = %v, want 60", trip.AvailableHours)
	}
	if trip.Status != model.TripStatusPlanning {
		t.Errorf("Status = %s, want planning", trip.Status)
	}
}

func TestCreateTripRejectsUnknownCycle(t *testing.T) {
	svc := NewTripService(newFakeTripStore(), &fakeProfileStore{})
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	_, err := svc.CreateTrip(context.Background(), uuid.New(), CreateTripInput{CurrentCycle: "80_9"}, now)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestStartOpensDrivingInterval(t *testing.T) {
	trips := newFakeTripStore()
	svc := NewTripService(trips, &fakeProfileStore{})
	driverID := uuid.New()
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	trip, err := svc.CreateTrip(ctx, driverID, CreateTripInput{Name: "Chicago run", CurrentCycle: model.Cycle70Hours8Days}, now)
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}

	started, err := svc.Start(ctx, driverID, trip.ID, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("start trip: %v", err)
	}
	if started.Status != model.TripStatusActive {
		t.Errorf("Status = %s, want active", started.Status)
	}
	if started.StartTime == nil {
		t.Fatal("StartTime should be set")
	}

	if len(trips.intervals.intervals) != 1 {
		t.Fatalf("start created %d intervals, want 1", len(trips.intervals.intervals))
	}
	if trips.intervals.intervals[0].DutyStatus != model.DutyStatusDriving {
		t.Errorf("interval status = %s, want driving", trips.intervals.intervals[0].DutyStatus)
	}

	_, err = svc.Start(ctx, driverID, trip.ID, now.Add(2*time.Hour))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second start: err = %v, want ErrInvalidTransition", err)
	}
}

func TestStartClosesOpenDrivingInterval(t *testing.T) {
	trips := newFakeTripStore()
	intervalSvc := NewIntervalService(trips.intervals)
	tripSvc := NewTripService(trips, &fakeProfileStore{})
	driverID := uuid.New()
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	odometer := 1000.0
	manual, err := intervalSvc.OpenInterval(ctx, driverID, OpenIntervalInput{
		StartTime:     now,
		DutyStatus:    model.DutyStatusDriving,
		Location:      "I-80 W",
		OdometerStart: &odometer,
	})
	if err != nil {
		t.Fatalf("open manual driving interval: %v", err)
	}

	trip, err := tripSvc.CreateTrip(ctx, driverID, CreateTripInput{Name: "Chicago run", CurrentCycle: model.Cycle70Hours8Days}, now)
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if _, err := tripSvc.Start(ctx, driverID, trip.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("start trip: %v", err)
	}

	openDriving := 0
	for _, interval := range trips.intervals.intervals {
		if interval.DutyStatus == model.DutyStatusDriving && interval.EndTime == nil {
			openDriving++
		}
	}
	if openDriving != 1 {
		t.Fatalf("open driving intervals = %d, want 1", openDriving)
	}

	closed, err := intervalSvc.GetInterval(ctx, driverID, manual.ID)
	if err != nil {
		t.Fatalf("get manual interval: %v", err)
	}
	if closed.IsOpen() {
		t.Fatal("manual driving interval should be closed by the trip start")
	}
	if !closed.EndTime.Equal(now.Add(time.Hour)) {
		t.Errorf("manual interval closed at %v, want the trip's start", closed.EndTime)
	}
}

func TestCompleteBooksElapsedHours(t *testing.T) {
	trips := newFakeTripStore()
	svc := NewTripService(trips, &fakeProfileStore{})
	driverID := uuid.New()
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	trip, err := svc.CreateTrip(ctx, driverID, CreateTripInput{Name: "Chicago run", CurrentCycle: model.Cycle70Hours8Days}, now)
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if _, err := svc.Start(ctx, driverID, trip.ID, now); err != nil {
		t.Fatalf("start trip: %v", err)
	}

	completed, err := svc.Complete(ctx, driverID, trip.ID, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("complete trip: %v", err)
	}
	if completed.Status != model.TripStatusCompleted {
		t.Errorf("Status = %s, want completed", completed.Status)
	}
	if completed.UsedHours != 2 {
		t.Errorf("UsedHours = %v, want 2", completed.UsedHours)
	}
	if completed.AvailableHours != 68 {
		t.Errorf("AvailableHours = %v, want 68", completed.AvailableHours)
	}

	last := trips.intervals.intervals[len(trips.intervals.intervals)-1]
	if last.DutyStatus != model.DutyStatusOffDuty {
		t.Errorf("closing interval status = %s, want off_duty", last.DutyStatus)
	}
	driving := trips.intervals.intervals[0]
	if driving.EndTime == nil {
		t.Error("trip's driving interval should be closed at completion")
	}

	_, err = svc.Complete(ctx, driverID, trip.ID, now.Add(3*time.Hour))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second complete: err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelFromTerminalStatus(t *testing.T) {
	trips := newFakeTripStore()
	svc := NewTripService(trips, &fakeProfileStore{})
	driverID := uuid.New()
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	trip, err := svc.CreateTrip(ctx, driverID, CreateTripInput{CurrentCycle: model.Cycle70Hours8Days}, now)
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, driverID, trip.ID, now)
	if err != nil {
		t.Fatalf("cancel trip: %v", err)
	}
	if cancelled.Status != model.TripStatusCancelled {
		t.Errorf("Status = %s, want cancelled", cancelled.Status)
	}

	_, err = svc.Cancel(ctx, driverID, trip.ID, now)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancel of cancelled trip: err = %v, want ErrInvalidTransition", err)
	}
}

func TestGetOrCreateCurrentIsIdempotent(t *testing.T) {
	trips := newFakeTripStore()
	svc := NewTripService(trips, &fakeProfileStore{})
	driverID := uuid.New()
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	trip, created, err := svc.GetOrCreateCurrent(ctx, driverID, now)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if !created {
		t.Error("first call should create the trip")
	}
	if !trip.IsAutomatic {
		t.Error("trip should be automatic")
	}
	if trip.Name != "Daily Trip - 2025-06-10" {
		t.Errorf("Name = %q", trip.Name)
	}
	if len(trips.intervals.intervals) != 1 || trips.intervals.intervals[0].DutyStatus != model.DutyStatusOffDuty {
		t.Error("creation should open a single off-duty interval")
	}

	again, created, err := svc.GetOrCreateCurrent(ctx, driverID, now.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("second get or create: %v", err)
	}
	if created {
		t.Error("second call should reuse the trip")
	}
	if again.ID != trip.ID {
		t.Error("second call returned a different trip")
	}
	if len(trips.intervals.intervals) != 1 {
		t.Error("second call should not add intervals")
	}
}
