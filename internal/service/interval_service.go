package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotter-eld/hos-service/internal/model"
)

// IntervalStore is the persistence surface the duty-interval service needs.
type IntervalStore interface {
	Create(ctx context.Context, interval model.DutyInterval) (*model.DutyInterval, error)
	CreateClosingOpenDriving(ctx context.Context, interval model.DutyInterval) (*model.DutyInterval, error)
	GetByID(ctx context.Context, driverID, id uuid.UUID) (*model.DutyInterval, error)
	Close(ctx context.Context, id uuid.UUID, end time.Time, hours float64, odometerEnd *float64, notes string) error
	UpdateNotes(ctx context.Context, driverID, id uuid.UUID, notes string) error
	Delete(ctx context.Context, driverID, id uuid.UUID) error
	ListForDate(ctx context.Context, driverID uuid.UUID, date time.Time) ([]model.DutyInterval, error)
	ListForRange(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]model.DutyInterval, error)
}

// IntervalService owns the duty-status timeline: opening, closing, listing
// and deleting intervals for a driver.
type IntervalService struct {
	intervals IntervalStore
}

func NewIntervalService(intervals IntervalStore) *IntervalService {
	return &IntervalService{intervals: intervals}
}

type OpenIntervalInput struct {
	Date          time.Time
	StartTime     time.Time
	DutyStatus    model.DutyStatus
	Location      string
	Latitude      *float64
	Longitude     *float64
	Notes         string
	VehicleInfo   string
	TrailerInfo   string
	OdometerStart *float64
}

// OpenInterval opens a new duty interval. A prior open driving interval for
// the driver is closed at the new interval's start time in the same
// transaction, so the driver never holds two open driving periods.
func (s *IntervalService) OpenInterval(ctx context.Context, driverID uuid.UUID, input OpenIntervalInput) (*model.DutyInterval, error) {
	if _, ok := model.ParseDutyStatus(string(input.DutyStatus)); !ok {
		return nil, fmt.Errorf("%w: unknown duty status %q", ErrInvalidInput, input.DutyStatus)
	}
	if input.DutyStatus == model.DutyStatusDriving && input.OdometerStart == nil {
		return nil, fmt.Errorf("%w: odometer_start is required for driving intervals", ErrInvalidInput)
	}
	if input.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: start_time is required", ErrInvalidInput)
	}

	date := input.Date
	if date.IsZero() {
		date = dateOnly(input.StartTime)
	} else {
		date = dateOnly(date)
	}

	interval := model.DutyInterval{
		DriverID:      driverID,
		Date:          date,
		StartTime:     input.StartTime,
		DutyStatus:    input.DutyStatus,
		Location:      input.Location,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		Notes:         input.Notes,
		VehicleInfo:   input.VehicleInfo,
		TrailerInfo:   input.TrailerInfo,
		OdometerStart: input.OdometerStart,
	}

	return s.intervals.CreateClosingOpenDriving(ctx, interval)
}

type CloseIntervalInput struct {
	EndTime         time.Time
	CrossedMidnight bool
	OdometerEnd     *float64
	Notes           string
}

// CloseInterval terminates an open interval. An end time before the start is
// rejected unless the caller flags a midnight crossing, in which case the
// duration gains 24 hours.
func (s *IntervalService) CloseInterval(ctx context.Context, driverID, id uuid.UUID, input CloseIntervalInput) (*model.DutyInterval, error) {
	interval, err := s.intervals.GetByID(ctx, driverID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !interval.IsOpen() {
		return nil, fmt.Errorf("%w: interval is already closed", ErrInvalidTransition)
	}
	if input.EndTime.Before(interval.StartTime) && !input.CrossedMidnight {
		return nil, fmt.Errorf("%w: end_time is before start_time", ErrInvalidTransition)
	}
	if interval.DutyStatus == model.DutyStatusDriving && input.OdometerEnd != nil &&
		interval.OdometerStart != nil && *input.OdometerEnd < *interval.OdometerStart {
		return nil, fmt.Errorf("%w: odometer_end is below odometer_start", ErrInvalidInput)
	}

	hours := model.DurationHours(interval.StartTime, input.EndTime)
	if err := s.intervals.Close(ctx, id, input.EndTime, hours, input.OdometerEnd, input.Notes); err != nil {
		return nil, err
	}
	return s.intervals.GetByID(ctx, driverID, id)
}

func (s *IntervalService) GetInterval(ctx context.Context, driverID, id uuid.UUID) (*model.DutyInterval, error) {
	interval, err := s.intervals.GetByID(ctx, driverID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return interval, nil
}

// UpdateNotes is the only mutation allowed on a closed interval besides its
// end time; status and timing stay immutable.
func (s *IntervalService) UpdateNotes(ctx context.Context, driverID, id uuid.UUID, notes string) (*model.DutyInterval, error) {
	if err := s.intervals.UpdateNotes(ctx, driverID, id, notes); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.intervals.GetByID(ctx, driverID, id)
}

func (s *IntervalService) DeleteInterval(ctx context.Context, driverID, id uuid.UUID) error {
	if err := s.intervals.Delete(ctx, driverID, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *IntervalService) ListIntervals(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]model.DutyInterval, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: date range is required", ErrInvalidInput)
	}
	from = dateOnly(from)
	to = dateOnly(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: from must be before or equal to to", ErrInvalidInput)
	}
	return s.intervals.ListForRange(ctx, driverID, from, to)
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
