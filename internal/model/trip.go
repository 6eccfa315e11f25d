package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CycleType string

const (
	Cycle70Hours8Days CycleType = "70_8"
	Cycle60Hours7Days CycleType = "60_7"
)

// MaxHours is the cycle's cumulative on-duty cap. Unknown cycles fall back
// to 70/8, matching the profile default.
func (c CycleType) MaxHours() float64 {
	if c == Cycle60Hours7Days {
		return 60
	}
	return 70
}

func ParseCycleType(raw string) (CycleType, bool) {
	switch CycleType(raw) {
	case Cycle70Hours8Days, Cycle60Hours7Days:
		return CycleType(raw), true
	default:
		return "", false
	}
}

type TripStatus string

const (
	TripStatusPlanning  TripStatus = "planning"
	TripStatusActive    TripStatus = "active"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// Trip is a logical driving assignment. Automatic trips are created one per
// driver per day by the rollover scheduler.
type Trip struct {
	ID             uuid.UUID
	DriverID       uuid.UUID
	Name           string
	CurrentCycle   CycleType
	Status         TripStatus
	StartTime      *time.Time
	EndTime        *time.Time
	TotalDistance  *float64
	AvailableHours float64
	UsedHours      float64
	LastResetDate  time.Time
	IsAutomatic    bool
	TripDate       time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EstimatedHours approximates trip duration assuming an average 60 mph.
func (t *Trip) EstimatedHours() float64 {
	if t.TotalDistance == nil {
		return 0
	}
	return *t.TotalDistance / 60
}

// AutoTripName is the generated name for automatic daily trips.
func AutoTripName(date time.Time) string {
	return fmt.Sprintf("Daily Trip - %s", date.Format("2006-01-02"))
}
