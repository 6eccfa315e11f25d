package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotter-eld/hos-service/internal/model"
)

// In-memory stores mirroring the repository semantics, including the
// guarded-update behavior the services depend on for idempotence.

type fakeIntervalStore struct {
	intervals []model.DutyInterval
}

func (f *fakeIntervalStore) Create(_ context.Context, interval model.DutyInterval) (*model.DutyInterval, error) {
	interval.ID = uuid.New()
	f.intervals = append(f.intervals, interval)
	created := interval
	return &created, nil
}

func (f *fakeIntervalStore) CreateClosingOpenDriving(ctx context.Context, interval model.DutyInterval) (*model.DutyInterval, error) {
	for i := range f.intervals {
		open := &f.intervals[i]
		if open.DriverID != interval.DriverID || open.EndTime != nil || open.DutyStatus != model.DutyStatusDriving {
			continue
		}
		end := interval.StartTime
		open.EndTime = &end
		open.TotalHours = model.DurationHours(open.StartTime, end)
	}
	return f.Create(ctx, interval)
}

func (f *fakeIntervalStore) GetByID(_ context.Context, driverID, id uuid.UUID) (*model.DutyInterval, error) {
	for i := range f.intervals {
		if f.intervals[i].ID == id && f.intervals[i].DriverID == driverID {
			found := f.intervals[i]
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeIntervalStore) Close(_ context.Context, id uuid.UUID, end time.Time, hours float64, odometerEnd *float64, notes string) error {
	for i := range f.intervals {
		if f.intervals[i].ID != id {
			continue
		}
		endCopy := end
		f.intervals[i].EndTime = &endCopy
		f.intervals[i].TotalHours = hours
		if odometerEnd != nil {
			f.intervals[i].OdometerEnd = odometerEnd
		}
		if notes != "" {
			f.intervals[i].Notes = notes
		}
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeIntervalStore) UpdateNotes(_ context.Context, driverID, id uuid.UUID, notes string) error {
	for i := range f.intervals {
		if f.intervals[i].ID == id && f.intervals[i].DriverID == driverID {
			f.intervals[i].Notes = notes
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeIntervalStore) Delete(_ context.Context, driverID, id uuid.UUID) error {
	for i := range f.intervals {
		if f.intervals[i].ID == id && f.intervals[i].DriverID == driverID {
			f.intervals = append(f.intervals[:i], f.intervals[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeIntervalStore) ListForDate(_ context.Context, driverID uuid.UUID, date time.Time) ([]model.DutyInterval, error) {
	var out []model.DutyInterval
	for _, interval := range f.intervals {
		if interval.DriverID == driverID && interval.Date.Equal(date) {
			out = append(out, interval)
		}
	}
	return out, nil
}

func (f *fakeIntervalStore) ListForRange(_ context.Context, driverID uuid.UUID, from, to time.Time) ([]model.DutyInterval, error) {
	var out []model.DutyInterval
	for _, interval := range f.intervals {
		if interval.DriverID != driverID {
			continue
		}
		if interval.Date.Before(from) || interval.Date.After(to) {
			continue
		}
		out = append(out, interval)
	}
	return out, nil
}

type fakeSummaryStore struct {
	summaries []model.DailySummary
}

func (f *fakeSummaryStore) GetOrCreate(_ context.Context, driverID uuid.UUID, date time.Time) (*model.DailySummary, bool, error) {
	for i := range f.summaries {
		if f.summaries[i].DriverID == driverID && f.summaries[i].Date.Equal(date) {
			found := f.summaries[i]
			return &found, false, nil
		}
	}
	summary := model.DailySummary{
		ID:       uuid.New(),
		DriverID: driverID,
		Date:     date,
	}
	f.summaries = append(f.summaries, summary)
	created := summary
	return &created, true, nil
}

func (f *fakeSummaryStore) Get(_ context.Context, driverID uuid.UUID, date time.Time) (*model.DailySummary, error) {
	for i := range f.summaries {
		if f.summaries[i].DriverID == driverID && f.summaries[i].Date.Equal(date) {
			found := f.summaries[i]
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSummaryStore) GetByID(_ context.Context, driverID, id uuid.UUID) (*model.DailySummary, error) {
	for i := range f.summaries {
		if f.summaries[i].ID == id && f.summaries[i].DriverID == driverID {
			found := f.summaries[i]
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSummaryStore) List(_ context.Context, driverID uuid.UUID, from, to time.Time) ([]model.DailySummary, error) {
	var out []model.DailySummary
	for _, summary := range f.summaries {
		if summary.DriverID != driverID {
			continue
		}
		if summary.Date.Before(from) || summary.Date.After(to) {
			continue
		}
		out = append(out, summary)
	}
	return out, nil
}

func (f *fakeSummaryStore) UpdateTotals(_ context.Context, summary *model.DailySummary) error {
	for i := range f.summaries {
		if f.summaries[i].ID == summary.ID {
			f.summaries[i].TotalDrivingHours = summary.TotalDrivingHours
			f.summaries[i].TotalOnDutyHours = summary.TotalOnDutyHours
			f.summaries[i].TotalOffDutyHours = summary.TotalOffDutyHours
			f.summaries[i].TotalSleeperHours = summary.TotalSleeperHours
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeSummaryStore) Certify(_ context.Context, id, certifiedBy uuid.UUID, at time.Time) error {
	for i := range f.summaries {
		if f.summaries[i].ID == id {
			f.summaries[i].IsCertified = true
			atCopy := at
			f.summaries[i].CertifiedAt = &atCopy
			by := certifiedBy
			f.summaries[i].CertifiedBy = &by
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeViolationStore struct {
	violations []model.Violation
}

func (f *fakeViolationStore) Create(_ context.Context, violation model.Violation) (*model.Violation, error) {
	violation.ID = uuid.New()
	if violation.DetectedAt.IsZero() {
		violation.DetectedAt = time.Now()
	}
	f.violations = append(f.violations, violation)
	created := violation
	return &created, nil
}

func (f *fakeViolationStore) GetByID(_ context.Context, driverID, id uuid.UUID) (*model.Violation, error) {
	for i := range f.violations {
		if f.violations[i].ID == id && f.violations[i].DriverID == driverID {
			found := f.violations[i]
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeViolationStore) List(_ context.Context, driverID uuid.UUID, unresolvedOnly bool) ([]model.Violation, error) {
	var out []model.Violation
	for _, violation := range f.violations {
		if violation.DriverID != driverID {
			continue
		}
		if unresolvedOnly && violation.IsResolved {
			continue
		}
		out = append(out, violation)
	}
	return out, nil
}

func (f *fakeViolationStore) Resolve(_ context.Context, id uuid.UUID, at time.Time, notes string) error {
	for i := range f.violations {
		if f.violations[i].ID == id {
			f.violations[i].IsResolved = true
			atCopy := at
			f.violations[i].ResolvedAt = &atCopy
			if notes != "" {
				f.violations[i].ResolutionNotes = notes
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeTripStore struct {
	trips     []model.Trip
	intervals *fakeIntervalStore
}

func newFakeTripStore() *fakeTripStore {
	return &fakeTripStore{intervals: &fakeIntervalStore{}}
}

func (f *fakeTripStore) Create(_ context.Context, trip model.Trip) (*model.Trip, error) {
	trip.ID = uuid.New()
	f.trips = append(f.trips, trip)
	created := trip
	return &created, nil
}

func (f *fakeTripStore) CreateWithInterval(ctx context.Context, trip model.Trip, interval model.DutyInterval) (*model.Trip, error) {
	created, err := f.Create(ctx, trip)
	if err != nil {
		return nil, err
	}
	if _, err := f.intervals.CreateClosingOpenDriving(ctx, interval); err != nil {
		return nil, err
	}
	return created, nil
}

func (f *fakeTripStore) GetByID(_ context.Context, driverID, id uuid.UUID) (*model.Trip, error) {
	for i := range f.trips {
		if f.trips[i].ID == id && f.trips[i].DriverID == driverID {
			found := f.trips[i]
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTripStore) List(_ context.Context, driverID uuid.UUID) ([]model.Trip, error) {
	var out []model.Trip
	for _, trip := range f.trips {
		if trip.DriverID == driverID {
			out = append(out, trip)
		}
	}
	return out, nil
}

func (f *fakeTripStore) GetActiveAutomatic(_ context.Context, driverID uuid.UUID, date time.Time) (*model.Trip, error) {
	for i := range f.trips {
		trip := &f.trips[i]
		if trip.DriverID == driverID && trip.IsAutomatic && trip.Status == model.TripStatusActive && trip.TripDate.Equal(date) {
			found := *trip
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTripStore) Update(_ context.Context, trip *model.Trip) error {
	for i := range f.trips {
		if f.trips[i].ID == trip.ID {
			f.trips[i] = *trip
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeTripStore) UpdateWithInterval(ctx context.Context, trip *model.Trip, expectStatus model.TripStatus, interval model.DutyInterval) error {
	for i := range f.trips {
		if f.trips[i].ID != trip.ID {
			continue
		}
		if f.trips[i].Status != expectStatus {
			return gorm.ErrRecordNotFound
		}
		f.trips[i] = *trip
		_, err := f.intervals.CreateClosingOpenDriving(ctx, interval)
		return err
	}
	return gorm.ErrRecordNotFound
}

type fakeProfileStore struct {
	profiles map[uuid.UUID]model.DriverProfile
}

func (f *fakeProfileStore) Get(_ context.Context, driverID uuid.UUID) (*model.DriverProfile, error) {
	if profile, ok := f.profiles[driverID]; ok {
		found := profile
		return &found, nil
	}
	profile := model.DriverProfile{
		DriverID:                driverID,
		Timezone:                "America/New_York",
		DefaultCycle:            model.Cycle70Hours8Days,
		AutoCloseTripAtMidnight: true,
		AutoCloseTripTime:       "00:00",
	}
	return &profile, nil
}
