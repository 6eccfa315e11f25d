package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spotter-eld/hos-service/internal/model"
)

const pickupAllowance = time.Hour

// IntervalStore is the slice of interval persistence the scheduler mutates.
type IntervalStore interface {
	ListOpenOnDuty(ctx context.Context, cutoff time.Time) ([]model.DutyInterval, error)
	RevertToDriving(ctx context.Context, entry model.DutyInterval, closeAt time.Time, replacement model.DutyInterval) (*model.DutyInterval, error)
}

// TripStore is the slice of trip persistence the scheduler mutates.
type TripStore interface {
	ListActiveAutomatic(ctx context.Context) ([]model.Trip, error)
	TransitionStatus(ctx context.Context, trip *model.Trip, expectStatus model.TripStatus) error
	CreateWithInterval(ctx context.Context, trip model.Trip, interval model.DutyInterval) (*model.Trip, error)
}

// ProfileStore resolves driver policy for rollover decisions.
type ProfileStore interface {
	Get(ctx context.Context, driverID uuid.UUID) (*model.DriverProfile, error)
}

// Scheduler is the periodic control loop for automatic duty transitions:
// reverting pickup/drop-off intervals back to driving after the one-hour
// allowance, and rolling active automatic trips over at each driver's
// configured local close time.
//
// Every decision takes the tick's injected now; the scheduler never reads
// the ambient clock, which keeps the tolerance windows testable.
type Scheduler struct {
	intervals IntervalStore
	trips     TripStore
	profiles  ProfileStore
	interval  time.Duration
	budget    time.Duration
	tolerance time.Duration
	log       zerolog.Logger
}

func New(intervals IntervalStore, trips TripStore, profiles ProfileStore, interval, budget, tolerance time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		intervals: intervals,
		trips:     trips,
		profiles:  profiles,
		interval:  interval,
		budget:    budget,
		tolerance: tolerance,
		log:       log,
	}
}

// Run drives RunTick on the configured cadence until the context is
// cancelled. Each tick gets its own budget; stragglers are picked up by the
// next tick.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return
		case t := <-ticker.C:
			tickCtx, cancel := context.WithTimeout(ctx, s.budget)
			stats := s.RunTick(tickCtx, t.UTC())
			cancel()
			s.log.Debug().
				Int("reverted", stats.Reverted).
				Int("rolled_over", stats.RolledOver).
				Int("errors", stats.Errors).
				Msg("tick complete")
		}
	}
}

type TickStats struct {
	Reverted   int
	RolledOver int
	Errors     int
}

// RunTick processes one scheduler pass at the given instant. Entities are
// handled independently: a failure on one driver is logged and skipped, and
// each mutation runs in its own transaction. Running the same tick twice
// inside a tolerance window is safe because every mutation's filter
// predicate (open interval, active trip) is false after the first pass.
func (s *Scheduler) RunTick(ctx context.Context, now time.Time) TickStats {
	var stats TickStats
	s.revertPickups(ctx, now, &stats)
	s.rolloverTrips(ctx, now, &stats)
	return stats
}

// revertPickups closes on-duty-not-driving intervals that hit the one-hour
// allowance and opens a driving interval in their place. Entries older than
// allowance+tolerance are left alone; a missed window is never retroactively
// fixed (inherited behavior, under review).
func (s *Scheduler) revertPickups(ctx context.Context, now time.Time, stats *TickStats) {
	cutoff := now.Add(-pickupAllowance)
	entries, err := s.intervals.ListOpenOnDuty(ctx, cutoff)
	if err != nil {
		stats.Errors++
		s.log.Error().Err(err).Msg("list open on-duty intervals failed")
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			s.log.Warn().Msg("tick budget exhausted, deferring remaining intervals")
			return
		}

		elapsed := now.Sub(entry.StartTime)
		if elapsed < pickupAllowance || elapsed > pickupAllowance+s.tolerance {
			continue
		}

		replacement := model.DutyInterval{
			DriverID:   entry.DriverID,
			Date:       dateOnly(now),
			StartTime:  now,
			DutyStatus: model.DutyStatusDriving,
			Location:   entry.Location,
			Notes:      fmt.Sprintf("Auto-switched from %s after 1 hour - pickup/drop-off complete", entry.DutyStatus),
		}

		// Closing at the entry's own start time yields a zero-duration
		// record; kept to match the established log format, flagged for a
		// product decision.
		if _, err := s.intervals.RevertToDriving(ctx, entry, entry.StartTime, replacement); err != nil {
			stats.Errors++
			s.log.Error().
				Err(err).
				Str("interval_id", entry.ID.String()).
				Str("driver_id", entry.DriverID.String()).
				Msg("auto-revert failed")
			continue
		}

		stats.Reverted++
		s.log.Info().
			Str("driver_id", entry.DriverID.String()).
			Str("interval_id", entry.ID.String()).
			Msg("reverted pickup/drop-off to driving")
	}
}

// rolloverTrips closes each driver's active automatic trip when the driver's
// local wall clock is inside the tolerance window around their configured
// close time, then starts the next day's trip.
func (s *Scheduler) rolloverTrips(ctx context.Context, now time.Time, stats *TickStats) {
	trips, err := s.trips.ListActiveAutomatic(ctx)
	if err != nil {
		stats.Errors++
		s.log.Error().Err(err).Msg("list active automatic trips failed")
		return
	}

	for i := range trips {
		if ctx.Err() != nil {
			s.log.Warn().Msg("tick budget exhausted, deferring remaining trips")
			return
		}

		trip := trips[i]
		profile, err := s.profiles.Get(ctx, trip.DriverID)
		if err != nil {
			stats.Errors++
			s.log.Error().Err(err).Str("driver_id", trip.DriverID.String()).Msg("load driver profile failed")
			continue
		}
		if !profile.AutoCloseTripAtMidnight {
			continue
		}
		// A successor created earlier in this window already carries the
		// driver-local today as its trip date. Skipping it keeps the scan
		// self-disabling: each trip rolls over at most once per window.
		if !trip.TripDate.Before(localDate(now, profile)) {
			continue
		}
		if !s.shouldClose(now, profile) {
			continue
		}

		if err := s.closeAndReplace(ctx, trip, profile, now); err != nil {
			stats.Errors++
			s.log.Error().
				Err(err).
				Str("trip_id", trip.ID.String()).
				Str("driver_id", trip.DriverID.String()).
				Msg("trip rollover failed")
			continue
		}

		stats.RolledOver++
		s.log.Info().
			Str("driver_id", trip.DriverID.String()).
			Str("trip_id", trip.ID.String()).
			Msg("rolled trip over")
	}
}

// shouldClose compares the driver-local wall clock against the configured
// close time with the tolerance window on either side.
func (s *Scheduler) shouldClose(now time.Time, profile *model.DriverProfile) bool {
	local := now.In(profile.Location())
	hour, minute := profile.AutoCloseClock()
	target := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, local.Location())

	diff := local.Sub(target)
	if diff < 0 {
		diff = -diff
	}
	return diff <= s.tolerance
}

func (s *Scheduler) closeAndReplace(ctx context.Context, trip model.Trip, profile *model.DriverProfile, now time.Time) error {
	today := localDate(now, profile)

	closed := trip
	closed.Status = model.TripStatusCompleted
	end := now
	closed.EndTime = &end
	closed.AvailableHours = closed.CurrentCycle.MaxHours()
	closed.UsedHours = 0
	closed.LastResetDate = today

	// The active-status guard is the idempotence barrier: a second tick in
	// the same window finds the trip completed and never reaches the
	// successor creation.
	if err := s.trips.TransitionStatus(ctx, &closed, model.TripStatusActive); err != nil {
		return err
	}

	start := now
	_, err := s.trips.CreateWithInterval(ctx,
		model.Trip{
			DriverID:       trip.DriverID,
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
			DriverID:   trip.DriverID,
			Date:       today,
			StartTime:  now,
			DutyStatus: model.DutyStatusOffDuty,
			Location:   "Auto-closed trip",
			Notes:      "Automatic trip closure - starting new day in off duty status",
		},
	)
	return err
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// localDate is the calendar date on the driver's wall clock, normalized to
// the UTC midnight form trip dates are stored in.
func localDate(now time.Time, profile *model.DriverProfile) time.Time {
	local := now.In(profile.Location())
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
