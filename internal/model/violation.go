package model

import (
	"time"

	"github.com/google/uuid"
)

type ViolationType string

const (
	ViolationDrivingLimit    ViolationType = "driving_limit"
	ViolationOnDutyLimit     ViolationType = "on_duty_limit"
	ViolationRestRequirement ViolationType = "rest_requirement"
	ViolationCycleLimit      ViolationType = "cycle_limit"
	ViolationFalsification   ViolationType = "falsification"
	ViolationMissingLogs     ViolationType = "missing_logs"
)

type ViolationSeverity string

const (
	SeverityMinor    ViolationSeverity = "minor"
	SeverityMajor    ViolationSeverity = "major"
	SeverityCritical ViolationSeverity = "critical"
)

type Violation struct {
	ID              uuid.UUID
	DriverID        uuid.UUID
	IntervalID      *uuid.UUID
	SummaryID       *uuid.UUID
	ViolationType   ViolationType
	Description     string
	Severity        ViolationSeverity
	DetectedAt      time.Time
	IsResolved      bool
	ResolvedAt      *time.Time
	ResolutionNotes string
}
