package model

import (
	"time"

	"github.com/google/uuid"
)

// DailySummary aggregates one driver's duty intervals for one calendar date.
// The four totals are always recomputed from intervals, never hand-edited;
// only the certification fields are written directly.
type DailySummary struct {
	ID                    uuid.UUID
	DriverID              uuid.UUID
	Date                  time.Time
	TotalDrivingHours     float64
	TotalOnDutyHours      float64
	TotalOffDutyHours     float64
	TotalSleeperHours     float64
	CycleStartDate        *time.Time
	AvailableHoursNextDay float64
	IsCertified           bool
	CertifiedAt           *time.Time
	CertifiedBy           *uuid.UUID
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
