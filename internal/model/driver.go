package model

import (
	"time"

	"github.com/google/uuid"
)

// Principal is the authenticated caller resolved from the access token.
type Principal struct {
	UserID uuid.UUID
	Name   string
	Email  string
}

// DriverProfile holds per-driver policy consumed read-only by the scheduler
// and the trip lifecycle: timezone, default cycle and auto-close settings.
type DriverProfile struct {
	DriverID                uuid.UUID
	LicenseNumber           string
	Company                 string
	Timezone                string
	DefaultCycle            CycleType
	AutoCloseTripAtMidnight bool
	AutoCloseTripTime       string // "HH:MM" wall clock in the driver's timezone
}

// AutoCloseClock parses the configured auto-close time of day. Malformed
// values fall back to midnight.
func (p *DriverProfile) AutoCloseClock() (hour, minute int) {
	t, err := time.Parse("15:04", p.AutoCloseTripTime)
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}

// Location loads the profile's IANA timezone, defaulting to UTC when the
// name is empty or unknown.
func (p *DriverProfile) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
