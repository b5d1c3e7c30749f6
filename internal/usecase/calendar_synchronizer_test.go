package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetable-sync-service/internal/domain/entity"
)

var berlinDay = time.Date(2024, time.October, 14, 0, 0, 0, 0, time.UTC)

func TestCalendarSynchronizerApply(t *testing.T) {
	ctx := context.Background()

	t.Run("creates every added event and persists the mapping", func(t *testing.T) {
		cal := newFakeCalendar()
		mappings := newMemMappingRepo()
		sync := NewCalendarSynchronizer(cal, mappings, nopLogger{})

		diff := entity.EventDiff{Added: []entity.TimetableEvent{
			testEvent(berlinDay, 9, "Regelungstechnik", "B.2.01"),
			testEvent(berlinDay, 11, "Mathematik III", "B.2.01"),
			testEvent(berlinDay.AddDate(0, 0, 1), 9, "Elektronik", "C.1.10"),
		}}

		result := sync.Apply(ctx, "elm3", "cal-1", diff, entity.CalendarMapping{}, false)

		assert.Equal(t, 3, result.Count(entity.ActionCreated))
		assert.Empty(t, result.Failed())
		assert.Len(t, result.Mapping, 3)
		assert.Len(t, cal.events, 3)

		stored, err := mappings.GetAll(ctx, "elm3")
		require.NoError(t, err)
		assert.Equal(t, result.Mapping, stored)
	})

	t.Run("dry run reports intentions and touches nothing", func(t *testing.T) {
		cal := newFakeCalendar()
		mappings := newMemMappingRepo()
		sync := NewCalendarSynchronizer(cal, mappings, nopLogger{})

		old := testEvent(berlinDay, 9, "Regelungstechnik", "B.2.01")
		require.NoError(t, mappings.Upsert(ctx, "elm3", old.IdentityKey, "ext-old"))

		changed := old
		changed.Room = "C.3.03"
		diff := entity.EventDiff{
			Added:   []entity.TimetableEvent{testEvent(berlinDay, 11, "Elektronik", "")},
			Changed: []entity.EventChange{{Old: old, New: changed}},
			Removed: []entity.TimetableEvent{testEvent(berlinDay, 14, "Entfallen", "")},
		}
		mapping, err := mappings.GetAll(ctx, "elm3")
		require.NoError(t, err)

		result := sync.Apply(ctx, "elm3", "cal-1", diff, mapping, true)

		assert.Equal(t, 1, result.Count(entity.ActionWouldCreate))
		assert.Equal(t, 1, result.Count(entity.ActionWouldUpdate))
		assert.Equal(t, 1, result.Count(entity.ActionWouldDelete))
		assert.Empty(t, cal.calls)
		assert.Equal(t, mapping, result.Mapping)
	})

	t.Run("one failing event does not block the others", func(t *testing.T) {
		cal := newFakeCalendar()
		mappings := newMemMappingRepo()
		sync := NewCalendarSynchronizer(cal, mappings, nopLogger{})

		bad := testEvent(berlinDay, 11, "Mathematik III", "B.2.01")
		cal.failOn[bad.IdentityKey] = transientErr("create")

		diff := entity.EventDiff{Added: []entity.TimetableEvent{
			testEvent(berlinDay, 9, "Regelungstechnik", "B.2.01"),
			bad,
			testEvent(berlinDay, 14, "Elektronik", "C.1.10"),
		}}

		result := sync.Apply(ctx, "elm3", "cal-1", diff, entity.CalendarMapping{}, false)

		assert.Equal(t, 2, result.Count(entity.ActionCreated))
		require.Len(t, result.Failed(), 1)
		assert.Equal(t, bad.IdentityKey, result.Failed()[0].IdentityKey)
		assert.False(t, result.Failed()[0].Permanent)
		assert.NotContains(t, result.Mapping, bad.IdentityKey)
	})

	t.Run("permanent rejection is flagged as such", func(t *testing.T) {
		cal := newFakeCalendar()
		sync := NewCalendarSynchronizer(cal, newMemMappingRepo(), nopLogger{})

		bad := testEvent(berlinDay, 9, "Regelungstechnik", "B.2.01")
		cal.failOn[bad.IdentityKey] = permanentErr("create")

		result := sync.Apply(ctx, "elm3", "cal-1", entity.EventDiff{Added: []entity.TimetableEvent{bad}}, entity.CalendarMapping{}, false)

		require.Len(t, result.Failed(), 1)
		assert.True(t, result.Failed()[0].Permanent)
	})

	t.Run("room change updates the existing remote event in place", func(t *testing.T) {
		cal := newFakeCalendar()
		mappings := newMemMappingRepo()
		sync := NewCalendarSynchronizer(cal, mappings, nopLogger{})

		old := testEvent(berlinDay, 9, "Regelungstechnik", "B.2.01")
		externalID, err := cal.CreateEvent(ctx, "cal-1", old)
		require.NoError(t, err)
		require.NoError(t, mappings.Upsert(ctx, "elm3", old.IdentityKey, externalID))
		cal.calls = nil

		updated := old
		updated.Room = "C.3.03"
		diff := entity.EventDiff{Changed: []entity.EventChange{{Old: old, New: updated}}}
		mapping, err := mappings.GetAll(ctx, "elm3")
		require.NoError(t, err)

		result := sync.Apply(ctx, "elm3", "cal-1", diff, mapping, false)

		assert.Equal(t, 1, result.Count(entity.ActionUpdated))
		assert.Equal(t, []string{"update:" + old.IdentityKey}, cal.calls)
		assert.Equal(t, "C.3.03", cal.events[externalID].Room)
		assert.Equal(t, externalID, result.Mapping[old.IdentityKey])
	})

	t.Run("changed event without a mapping entry is created instead", func(t *testing.T) {
		cal := newFakeCalendar()
		mappings := newMemMappingRepo()
		sync := NewCalendarSynchronizer(cal, mappings, nopLogger{})

		old := testEvent(berlinDay, 9, "Regelungstechnik", "B.2.01")
		updated := old
		updated.Room = "C.3.03"

		result := sync.Apply(ctx, "elm3", "cal-1",
			entity.EventDiff{Changed: []entity.EventChange{{Old: old, New: updated}}},
			entity.CalendarMapping{}, false)

		assert.Equal(t, 1, result.Count(entity.ActionCreated))
		assert.Contains(t, result.Mapping, updated.IdentityKey)
	})

	t.Run("dry run reports an unmapped removal without touching anything", func(t *testing.T) {
		cal := newFakeCalendar()
		mappings := newMemMappingRepo()
		sync := NewCalendarSynchronizer(cal, mappings, nopLogger{})

		gone := testEvent(berlinDay, 9, "Regelungstechnik", "B.2.01")
		result := sync.Apply(ctx, "elm3", "cal-1",
			entity.EventDiff{Removed: []entity.TimetableEvent{gone}},
			entity.CalendarMapping{}, true)

		assert.Equal(t, 1, result.Count(entity.ActionWouldDelete))
		assert.Empty(t, cal.calls)
		stored, err := mappings.GetAll(ctx, "elm3")
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("removed event without a mapping entry is already consistent", func(t *testing.T) {
		cal := newFakeCalendar()
		sync := NewCalendarSynchronizer(cal, newMemMappingRepo(), nopLogger{})

		gone := testEvent(berlinDay, 9, "Regelungstechnik", "B.2.01")
		result := sync.Apply(ctx, "elm3", "cal-1",
			entity.EventDiff{Removed: []entity.TimetableEvent{gone}},
			entity.CalendarMapping{}, false)

		assert.Equal(t, 1, result.Count(entity.ActionDeleted))
		assert.Empty(t, cal.calls)
	})

	t.Run("remote 404 on delete still clears the mapping entry", func(t *testing.T) {
		cal := newFakeCalendar()
		mappings := newMemMappingRepo()
		sync := NewCalendarSynchronizer(cal, mappings, nopLogger{})

		gone := testEvent(berlinDay, 9, "Regelungstechnik", "B.2.01")
		require.NoError(t, mappings.Upsert(ctx, "elm3", gone.IdentityKey, "ext-vanished"))
		mapping, err := mappings.GetAll(ctx, "elm3")
		require.NoError(t, err)

		result := sync.Apply(ctx, "elm3", "cal-1",
			entity.EventDiff{Removed: []entity.TimetableEvent{gone}}, mapping, false)

		assert.Equal(t, 1, result.Count(entity.ActionDeleted))
		assert.NotContains(t, result.Mapping, gone.IdentityKey)
		stored, err := mappings.GetAll(ctx, "elm3")
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("removals run before additions", func(t *testing.T) {
		cal := newFakeCalendar()
		mappings := newMemMappingRepo()
		sync := NewCalendarSynchronizer(cal, mappings, nopLogger{})

		old := testEvent(berlinDay, 9, "Regelungstechnik", "B.2.01")
		externalID, err := cal.CreateEvent(ctx, "cal-1", old)
		require.NoError(t, err)
		require.NoError(t, mappings.Upsert(ctx, "elm3", old.IdentityKey, externalID))
		cal.calls = nil

		moved := testEvent(berlinDay, 14, "Regelungstechnik", "B.2.01")
		mapping, err := mappings.GetAll(ctx, "elm3")
		require.NoError(t, err)

		result := sync.Apply(ctx, "elm3", "cal-1", entity.EventDiff{
			Added:   []entity.TimetableEvent{moved},
			Removed: []entity.TimetableEvent{old},
		}, mapping, false)

		require.Len(t, cal.calls, 2)
		assert.Equal(t, "delete:"+externalID, cal.calls[0])
		assert.Equal(t, "create:"+moved.IdentityKey, cal.calls[1])
		assert.Equal(t, 1, result.Count(entity.ActionCreated))
		assert.Equal(t, 1, result.Count(entity.ActionDeleted))
	})

	t.Run("failed delete keeps the mapping entry for the next run", func(t *testing.T) {
		cal := newFakeCalendar()
		mappings := newMemMappingRepo()
		sync := NewCalendarSynchronizer(cal, mappings, nopLogger{})

		old := testEvent(berlinDay, 9, "Regelungstechnik", "B.2.01")
		externalID, err := cal.CreateEvent(ctx, "cal-1", old)
		require.NoError(t, err)
		require.NoError(t, mappings.Upsert(ctx, "elm3", old.IdentityKey, externalID))
		cal.failOn[externalID] = transientErr("delete")
		mapping, err := mappings.GetAll(ctx, "elm3")
		require.NoError(t, err)

		result := sync.Apply(ctx, "elm3", "cal-1",
			entity.EventDiff{Removed: []entity.TimetableEvent{old}}, mapping, false)

		require.Len(t, result.Failed(), 1)
		assert.Contains(t, result.Mapping, old.IdentityKey)
		stored, err := mappings.GetAll(ctx, "elm3")
		require.NoError(t, err)
		assert.Contains(t, stored, old.IdentityKey)
	})
}
