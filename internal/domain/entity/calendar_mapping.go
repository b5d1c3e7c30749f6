package entity

import "time"

// MappingEntry links a local identity key to the calendar event created for
// it. The mapping is the sole source of truth for "does this session already
// exist remotely"; remote state is never inferred by content queries.
type MappingEntry struct {
	ID              string    `bson:"_id,omitempty"`
	TimetableKey    string    `bson:"timetableKey"`
	IdentityKey     string    `bson:"identityKey"`
	ExternalEventID string    `bson:"externalEventId"`
	CreatedAt       time.Time `bson:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt"`
}

// CalendarMapping is the in-memory view of a timetable's mapping entries
type CalendarMapping map[string]string

// Clone returns an independent copy of the mapping
func (m CalendarMapping) Clone() CalendarMapping {
	out := make(CalendarMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
