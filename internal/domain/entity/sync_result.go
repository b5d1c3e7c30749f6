package entity

// SyncAction is the per-event outcome of applying a diff to the calendar
type SyncAction string

const (
	ActionCreated SyncAction = "created"
	ActionUpdated SyncAction = "updated"
	ActionDeleted SyncAction = "deleted"
	ActionFailed  SyncAction = "failed"

	// Dry-run counterparts: reported, never executed
	ActionWouldCreate SyncAction = "would_create"
	ActionWouldUpdate SyncAction = "would_update"
	ActionWouldDelete SyncAction = "would_delete"
)

// EventOutcome records what happened to a single event during apply
type EventOutcome struct {
	IdentityKey string
	Subject     string
	Action      SyncAction
	Err         error
	Permanent   bool
}

// SyncResult reports the per-event outcomes of one apply pass plus the
// mapping as confirmed by the remote calendar afterwards
type SyncResult struct {
	Outcomes []EventOutcome
	Mapping  CalendarMapping
}

// Failed returns the outcomes whose remote operation did not go through
func (r SyncResult) Failed() []EventOutcome {
	var failed []EventOutcome
	for _, o := range r.Outcomes {
		if o.Action == ActionFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Count returns how many outcomes ended in the given action
func (r SyncResult) Count(action SyncAction) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == action {
			n++
		}
	}
	return n
}
