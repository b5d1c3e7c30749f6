package entity

import "errors"

// RemoteError wraps a calendar API failure with the transient/permanent
// classification the synchronizer reports to the user. Transient failures
// (timeouts, rate limits, 5xx) are retried naturally on the next run;
// permanent rejections will not succeed without a fix and are surfaced
// distinctly.
type RemoteError struct {
	Op        string
	Err       error
	Transient bool
}

func (e *RemoteError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return "calendar " + e.Op + " (" + kind + "): " + e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a remote failure worth retrying
func IsTransient(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Transient
}

// ErrRemoteNotFound signals that the calendar no longer knows the event id
// the mapping points at
var ErrRemoteNotFound = errors.New("remote event not found")
