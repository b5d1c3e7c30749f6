package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// TimetableEvent is a single session extracted from a timetable PDF
type TimetableEvent struct {
	IdentityKey  string    `bson:"identityKey"`
	Subject      string    `bson:"subject"`
	Keyword      string    `bson:"keyword"`
	Date         time.Time `bson:"date"`
	StartTime    time.Time `bson:"startTime"`
	EndTime      time.Time `bson:"endTime"`
	Room         string    `bson:"room"`
	RawSourceRow string    `bson:"rawSourceRow"`
}

// ComputeIdentityKey derives the deterministic fingerprint of a session.
// Only keyword, date, start time and the case-folded subject participate,
// so cosmetic room or subject-casing differences map to the same key.
func ComputeIdentityKey(keyword string, date, startTime time.Time, subject string) string {
	canonical := strings.Join([]string{
		strings.ToLower(strings.TrimSpace(keyword)),
		date.Format("2006-01-02"),
		startTime.Format("15:04"),
		foldSubject(subject),
	}, "|")

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:16])
}

// WithIdentityKey returns a copy of the event with its identity key filled in
func (e TimetableEvent) WithIdentityKey() TimetableEvent {
	e.IdentityKey = ComputeIdentityKey(e.Keyword, e.Date, e.StartTime, e.Subject)
	return e
}

// SameFields reports whether two events with the same identity key also agree
// on the non-key fields that matter for the calendar entry
func (e TimetableEvent) SameFields(other TimetableEvent) bool {
	return e.Subject == other.Subject &&
		e.Room == other.Room &&
		e.EndTime.Equal(other.EndTime)
}

func foldSubject(subject string) string {
	return strings.Join(strings.Fields(strings.ToLower(subject)), " ")
}
