package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotter-eld/hos-service/internal/model"
)

// TripStore is the persistence surface for trips.
type TripStore interface {
	Create(ctx context.Context, trip model.Trip) (*model.Trip, error)
	CreateWithInterval(ctx context.Context, trip model.Trip, interval model.DutyInterval) (*model.Trip, error)
	GetByID(ctx context.Context, driverID, id uuid.UUID) (*model.Trip, error)
	List(ctx context.Context, driverID uuid.UUID) ([]model.Trip, error)
	GetActiveAutomatic(ctx context.Context, driverID uuid.UUID, date time.Time) (*model.Trip, error)
	Update(ctx context.Context, trip *model.Trip) error
	UpdateWithInterval(ctx context.Context, trip *model.Trip, expectStatus model.TripStatus, interval model.DutyInterval) error
}

// ProfileStore resolves driver policy (cycle defaults, timezone, auto-close).
type ProfileStore interface {
	Get(ctx context.Context, driverID uuid.UUID) (*model.DriverProfile, error)
}

// TripService owns the trip state machine: planning -> active -> completed,
// with cancelled as a terminal side exit. State transitions also drive the
// duty-interval timeline.
type TripService struct {
	trips    TripStore
	profiles ProfileStore
}

func NewTripService(trips TripStore, profiles ProfileStore) *TripService {
	return &TripService{trips: trips, profiles: profiles}
}

type CreateTripInput struct {
	Name          string
	CurrentCycle  model.CycleType
	TotalDistance *float64
	TripDate      time.Time
}

func (s *TripService) CreateTrip(ctx context.Context, driverID uuid.UUID, input CreateTripInput, now time.Time) (*model.Trip, error) {
	cycle := input.CurrentCycle
	if cycle == "" {
		profile, err := s.profiles.Get(ctx, driverID)
		if err != nil {
			return nil, err
		}
		cycle = profile.DefaultCycle
	}
	if _, ok := model.ParseCycleType(string(cycle)); !ok {
		return nil, fmt.Errorf("%w: unknown cycle %q", ErrInvalidInput, cycle)
	}

	tripDate := input.TripDate
	if tripDate.IsZero() {
		tripDate = dateOnly(now)
	} else {
		tripDate = dateOnly(tripDate)
	}

	return s.trips.Create(ctx, model.Trip{
		DriverID:       driverID,
		Name:           input.Name,
		CurrentCycle:   cycle,
		Status:         model.TripStatusPlanning,
		TotalDistance:  input.TotalDistance,
		AvailableHours: cycle.MaxHours(),
		UsedHours:      0,
		LastResetDate:  dateOnly(now),
		TripDate:       tripDate,
	})
}

func (s *TripService) GetTrip(ctx context.Context, driverID, id uuid.UUID) (*model.Trip, error) {
	trip, err := s.trips.GetByID(ctx, driverID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

func (s *TripService) ListTrips(ctx context.Context, driverID uuid.UUID) ([]model.Trip, error) {
	return s.trips.List(ctx, driverID)
}

// Start moves a planning trip to active and opens a driving interval for
// today in the same transaction.
func (s *TripService) Start(ctx context.Context, driverID, id uuid.UUID, now time.Time) (*model.Trip, error) {
	trip, err := s.GetTrip(ctx, driverID, id)
	if err != nil {
		return nil, err
	}
	if trip.Status != model.TripStatusPlanning {
		return nil, fmt.Errorf("%w: trip is not in planning status", ErrInvalidTransition)
	}

	trip.Status = model.TripStatusActive
	start := now
	trip.StartTime = &start

	interval := model.DutyInterval{
		DriverID:   driverID,
		Date:       dateOnly(now),
		StartTime:  now,
		DutyStatus: model.DutyStatusDriving,
		Location:   fmt.Sprintf("Trip started: %s", trip.Name),
		Notes:      "Automatic log entry created when trip started",
	}
	if err := s.trips.UpdateWithInterval(ctx, trip, model.TripStatusPlanning, interval); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: trip is not in planning status", ErrInvalidTransition)
		}
		return nil, err
	}
	return s.GetTrip(ctx, driverID, id)
}

// Complete moves an active trip to completed, books the elapsed hours
// against the cycle and opens an off-duty interval. Hours are not clamped;
// available hours can go negative on repeated long trips.
func (s *TripService) Complete(ctx context.Context, driverID, id uuid.UUID, now time.Time) (*model.Trip, error) {
	trip, err := s.GetTrip(ctx, driverID, id)
	if err != nil {
		return nil, err
	}
	if trip.Status != model.TripStatusActive {
		return nil, fmt.Errorf("%w: trip is not active", ErrInvalidTransition)
	}

	trip.Status = model.TripStatusCompleted
	end := now
	trip.EndTime = &end
	if trip.StartTime != nil {
		elapsed := now.Sub(*trip.StartTime).Hours()
		trip.UsedHours += elapsed
		trip.AvailableHours -= elapsed
	}

	interval := model.DutyInterval{
		DriverID:   driverID,
		Date:       dateOnly(now),
		StartTime:  now,
		DutyStatus: model.DutyStatusOffDuty,
		Location:   fmt.Sprintf("Trip completed: %s", trip.Name),
		Notes:      "Automatic log entry created when trip completed",
	}
	if err := s.trips.UpdateWithInterval(ctx, trip, model.TripStatusActive, interval); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: trip is not active", ErrInvalidTransition)
		}
		return nil, err
	}
	return s.GetTrip(ctx, driverID, id)
}

// Cancel is a terminal side exit from planning or active.
func (s *TripService) Cancel(ctx context.Context, driverID, id uuid.UUID, now time.Time) (*model.Trip, error) {
	trip, err := s.GetTrip(ctx, driverID, id)
	if err != nil {
		return nil, err
	}
	if trip.Status != model.TripStatusPlanning && trip.Status != model.TripStatusActive {
		return nil, fmt.Errorf("%w: trip cannot be cancelled from %s", ErrInvalidTransition, trip.Status)
	}

	trip.Status = model.TripStatusCancelled
	end := now
	trip.EndTime = &end
	if err := s.trips.Update(ctx, trip); err != nil {
		return nil, err
	}
	return s.GetTrip(ctx, driverID, id)
}

// GetOrCreateCurrent returns today's active automatic trip for the driver,
// creating one (with its initial off-duty interval) when absent. The bool
// reports whether a new trip was created.
func (s *TripService) GetOrCreateCurrent(ctx context.Context, driverID uuid.UUID, now time.Time) (*model.Trip, bool, error) {
	today := dateOnly(now)

	trip, err := s.trips.GetActiveAutomatic(ctx, driverID, today)
	if err == nil {
		return trip, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	profile, err := s.profiles.Get(ctx, driverID)
	if err != nil {
		return nil, false, err
	}

	start := now
	created, err := s.trips.CreateWithInterval(ctx,
		model.Trip{
			DriverID:       driverID,
			Name:           model.AutoTripName(today),
			CurrentCycle:   profile.DefaultCycle,
			Status:         model.TripStatusActive,
			StartTime:      &start,
			AvailableHours: profile.DefaultCycle.MaxHours(),
			UsedHours:      0,
			LastResetDate:  today,
			IsAutomatic:    true,
			TripDate:       today,
		},
		model.DutyInterval{
			DriverID:   driverID,
			Date:       today,
			StartTime:  now,
			DutyStatus: model.DutyStatusOffDuty,
			Location:   "Automatic trip created",
			Notes:      "Initial log entry for automatic trip",
		},
	)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}
