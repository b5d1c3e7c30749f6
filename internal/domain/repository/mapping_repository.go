package repository

import (
	"context"

	"timetable-sync-service/internal/domain/entity"
)

// MappingRepository persists identityKey -> externalEventID entries per
// timetable. Entries are written only after the corresponding remote
// operation succeeded, so the stored mapping always reflects confirmed
// calendar state.
type MappingRepository interface {
	GetAll(ctx context.Context, timetableKey string) (entity.CalendarMapping, error)
	Upsert(ctx context.Context, timetableKey, identityKey, externalEventID string) error
	Delete(ctx context.Context, timetableKey, identityKey string) error
}
