package entity

// EventChange pairs the stored and the freshly extracted variant of a session
// whose identity key matched but whose fields differ
type EventChange struct {
	Old TimetableEvent
	New TimetableEvent
}

// EventDiff is the added/removed/changed partition between the stored event
// set and a newly extracted one, computed by identity key
type EventDiff struct {
	Added   []TimetableEvent
	Removed []TimetableEvent
	Changed []EventChange
}

// Empty reports whether applying the diff would touch the calendar at all
func (d EventDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// ComputeDiff partitions newEvents against oldEvents by identity key.
// Keys present in both sets are compared field by field; only real field
// differences classify as changed. A key-relevant field shift (date, time,
// keyword, subject wording) produces a new key and therefore shows up as
// one removal plus one addition, never as an update.
func ComputeDiff(oldEvents, newEvents []TimetableEvent) EventDiff {
	oldByKey := make(map[string]TimetableEvent, len(oldEvents))
	for _, e := range oldEvents {
		oldByKey[e.IdentityKey] = e
	}
	newByKey := make(map[string]TimetableEvent, len(newEvents))
	for _, e := range newEvents {
		newByKey[e.IdentityKey] = e
	}

	var diff EventDiff
	for _, e := range newEvents {
		old, ok := oldByKey[e.IdentityKey]
		if !ok {
			diff.Added = append(diff.Added, e)
			continue
		}
		if !old.SameFields(e) {
			diff.Changed = append(diff.Changed, EventChange{Old: old, New: e})
		}
	}
	for _, e := range oldEvents {
		if _, ok := newByKey[e.IdentityKey]; !ok {
			diff.Removed = append(diff.Removed, e)
		}
	}
	return diff
}
