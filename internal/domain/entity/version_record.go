package entity

import "time"

// VersionRecord is one immutable snapshot of a timetable's event set.
// The latest record per timetable key is the authoritative baseline for
// diffing; superseded records survive only in the audit log.
type VersionRecord struct {
	ID               string           `bson:"_id,omitempty"`
	TimetableKey     string           `bson:"timetableKey"`
	VersionTimestamp time.Time        `bson:"versionTimestamp"`
	Events           []TimetableEvent `bson:"events"`
	CreatedAt        time.Time        `bson:"createdAt"`
}
