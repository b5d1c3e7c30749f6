package utils

import "timetable-sync-service/internal/domain/entity"

// CandidateEvent is an unvalidated event straight out of the table layout,
// field texts still raw. The normalizer turns it into an entity.TimetableEvent
// or rejects it with a diagnostic.
type CandidateEvent struct {
	Keyword     string
	DateText    string
	TimeText    string
	SubjectText string
	RoomText    string
	SourceRow   entity.RawRow
	RawSource   string
}

// Constants
const (
	DATE_LAYOUT    = "02.01.2006"
	VERSION_LAYOUT = "02.01.2006 15:04"
)
