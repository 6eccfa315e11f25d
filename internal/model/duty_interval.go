package model

import (
	"time"

	"github.com/google/uuid"
)

type DutyStatus string

const (
	DutyStatusOffDuty          DutyStatus = "off_duty"
	DutyStatusSleeperBerth     DutyStatus = "sleeper_berth"
	DutyStatusDriving          DutyStatus = "driving"
	DutyStatusOnDutyNotDriving DutyStatus = "on_duty_not_driving"
)

func ParseDutyStatus(raw string) (DutyStatus, bool) {
	switch DutyStatus(raw) {
	case DutyStatusOffDuty, DutyStatusSleeperBerth, DutyStatusDriving, DutyStatusOnDutyNotDriving:
		return DutyStatus(raw), true
	default:
		return "", false
	}
}

// DutyInterval is one continuous period of a single duty status for one
// driver. EndTime == nil means the interval is still open.
type DutyInterval struct {
	ID            uuid.UUID
	DriverID      uuid.UUID
	Date          time.Time
	StartTime     time.Time
	EndTime       *time.Time
	DutyStatus    DutyStatus
	Location      string
	Latitude      *float64
	Longitude     *float64
	Notes         string
	VehicleInfo   string
	TrailerInfo   string
	OdometerStart *float64
	OdometerEnd   *float64
	TotalHours    float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (i *DutyInterval) IsOpen() bool {
	return i.EndTime == nil
}

// DurationHours computes the interval length, adding a day when the end
// time-of-day falls before the start (midnight wraparound).
func DurationHours(start, end time.Time) float64 {
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}
	return end.Sub(start).Hours()
}
