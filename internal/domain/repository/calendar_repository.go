package repository

import (
	"context"

	"timetable-sync-service/internal/domain/entity"
)

// CalendarRepository is the external calendar collaborator. All three calls
// are single attempts with a timeout; failures come back as *entity.RemoteError
// so callers can tell transient trouble from permanent rejection.
type CalendarRepository interface {
	CreateEvent(ctx context.Context, calendarID string, event entity.TimetableEvent) (string, error)
	UpdateEvent(ctx context.Context, calendarID, externalEventID string, event entity.TimetableEvent) error
	DeleteEvent(ctx context.Context, calendarID, externalEventID string) error
}
