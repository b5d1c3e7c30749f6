package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent(day int, hour int, subject, room string) TimetableEvent {
	date := time.Date(2024, time.October, day, 0, 0, 0, 0, time.UTC)
	start := date.Add(time.Duration(hour) * time.Hour)
	return TimetableEvent{
		Subject:   subject,
		Keyword:   "ELM 3",
		Date:      date,
		StartTime: start,
		EndTime:   start.Add(90 * time.Minute),
		Room:      room,
	}.WithIdentityKey()
}

func TestComputeIdentityKey(t *testing.T) {
	base := sampleEvent(14, 9, "Regelungstechnik", "B.2.01")

	t.Run("room is not part of the key", func(t *testing.T) {
		other := sampleEvent(14, 9, "Regelungstechnik", "C.3.03")
		assert.Equal(t, base.IdentityKey, other.IdentityKey)
	})

	t.Run("subject casing and spacing are folded", func(t *testing.T) {
		other := sampleEvent(14, 9, "  REGELUNGSTECHNIK ", "B.2.01")
		assert.Equal(t, base.IdentityKey, other.IdentityKey)
	})

	t.Run("date, start time and subject wording discriminate", func(t *testing.T) {
		assert.NotEqual(t, base.IdentityKey, sampleEvent(15, 9, "Regelungstechnik", "B.2.01").IdentityKey)
		assert.NotEqual(t, base.IdentityKey, sampleEvent(14, 11, "Regelungstechnik", "B.2.01").IdentityKey)
		assert.NotEqual(t, base.IdentityKey, sampleEvent(14, 9, "Regelungstechnik II", "B.2.01").IdentityKey)
	})

	t.Run("end time is not part of the key", func(t *testing.T) {
		longer := base
		longer.EndTime = longer.EndTime.Add(30 * time.Minute)
		assert.Equal(t, base.IdentityKey, longer.WithIdentityKey().IdentityKey)
	})
}

func TestComputeDiff(t *testing.T) {
	t.Run("empty baseline marks everything added", func(t *testing.T) {
		diff := ComputeDiff(nil, []TimetableEvent{sampleEvent(14, 9, "Regelungstechnik", "B.2.01")})
		assert.Len(t, diff.Added, 1)
		assert.Empty(t, diff.Removed)
		assert.Empty(t, diff.Changed)
		assert.False(t, diff.Empty())
	})

	t.Run("identical sets produce an empty diff", func(t *testing.T) {
		events := []TimetableEvent{
			sampleEvent(14, 9, "Regelungstechnik", "B.2.01"),
			sampleEvent(14, 11, "Mathematik III", "B.2.01"),
		}
		assert.True(t, ComputeDiff(events, events).Empty())
	})

	t.Run("non-key field difference classifies as changed", func(t *testing.T) {
		old := sampleEvent(14, 9, "Regelungstechnik", "B.2.01")
		updated := old
		updated.Room = "C.3.03"

		diff := ComputeDiff([]TimetableEvent{old}, []TimetableEvent{updated})
		require.Len(t, diff.Changed, 1)
		assert.Equal(t, old, diff.Changed[0].Old)
		assert.Equal(t, updated, diff.Changed[0].New)
		assert.Empty(t, diff.Added)
		assert.Empty(t, diff.Removed)
	})

	t.Run("key field difference classifies as removal plus addition", func(t *testing.T) {
		old := sampleEvent(14, 9, "Regelungstechnik", "B.2.01")
		moved := sampleEvent(14, 14, "Regelungstechnik", "B.2.01")

		diff := ComputeDiff([]TimetableEvent{old}, []TimetableEvent{moved})
		assert.Empty(t, diff.Changed)
		assert.Len(t, diff.Removed, 1)
		assert.Len(t, diff.Added, 1)
	})

	t.Run("subject recased under the same key updates in place", func(t *testing.T) {
		old := sampleEvent(14, 9, "Regelungstechnik", "B.2.01")
		recased := sampleEvent(14, 9, "REGELUNGSTECHNIK", "B.2.01")

		diff := ComputeDiff([]TimetableEvent{old}, []TimetableEvent{recased})
		require.Len(t, diff.Changed, 1)
		assert.Empty(t, diff.Added)
		assert.Empty(t, diff.Removed)
	})
}
