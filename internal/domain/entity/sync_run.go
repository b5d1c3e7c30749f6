package entity

import "time"

// SyncRun is the persisted summary of one reconciliation run for a timetable
type SyncRun struct {
	ID           string
	TimetableKey string
	VersionTS    time.Time
	DryRun       bool
	Created      int
	Updated      int
	Deleted      int
	Skipped      int
	Failed       int
	StartedAt    time.Time
	FinishedAt   time.Time
}
