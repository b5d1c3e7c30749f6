package repository

import "context"

// SubjectCleaner strips boilerplate from free-text subject cells. It is
// best effort: callers keep the raw text whenever Clean errors, so no
// implementation may be required for correctness.
type SubjectCleaner interface {
	Clean(ctx context.Context, text string) (string, error)
}
