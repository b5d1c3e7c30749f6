package usecase

import (
	"context"
	"errors"

	"timetable-sync-service/internal/domain/entity"
	"timetable-sync-service/internal/domain/repository"
	"timetable-sync-service/pkg/logger"
)

// CalendarSynchronizer applies an event diff to the external calendar with
// the minimal set of create/update/delete calls. One event's failure never
// blocks the others; mapping entries are persisted only after the remote
// side confirmed the operation, so a crash or partial failure leaves the
// next run to retry exactly the unconfirmed events.
type CalendarSynchronizer struct {
	calendarRepo repository.CalendarRepository
	mappingRepo  repository.MappingRepository
	logger       logger.Logger
}

// NewCalendarSynchronizer creates a new calendar synchronizer
func NewCalendarSynchronizer(
	calendarRepo repository.CalendarRepository,
	mappingRepo repository.MappingRepository,
	logger logger.Logger,
) *CalendarSynchronizer {
	return &CalendarSynchronizer{
		calendarRepo: calendarRepo,
		mappingRepo:  mappingRepo,
		logger:       logger,
	}
}

// Apply issues the remote calls for diff. Removals run before additions so
// that a reused identity key never exists twice remotely. In dry-run mode
// the intended actions are reported and nothing remote or persisted moves.
func (s *CalendarSynchronizer) Apply(ctx context.Context, timetableKey, calendarID string, diff entity.EventDiff, mapping entity.CalendarMapping, dryRun bool) entity.SyncResult {
	result := entity.SyncResult{Mapping: mapping.Clone()}

	for _, event := range diff.Removed {
		result.Outcomes = append(result.Outcomes, s.applyRemove(ctx, timetableKey, calendarID, event, result.Mapping, dryRun))
	}
	for _, change := range diff.Changed {
		result.Outcomes = append(result.Outcomes, s.applyChange(ctx, timetableKey, calendarID, change, result.Mapping, dryRun))
	}
	for _, event := range diff.Added {
		result.Outcomes = append(result.Outcomes, s.applyAdd(ctx, timetableKey, calendarID, event, result.Mapping, dryRun))
	}

	return result
}

func (s *CalendarSynchronizer) applyAdd(ctx context.Context, timetableKey, calendarID string, event entity.TimetableEvent, mapping entity.CalendarMapping, dryRun bool) entity.EventOutcome {
	if dryRun {
		s.logger.Info("Dry run: would create event", "identityKey", event.IdentityKey, "subject", event.Subject)
		return outcome(event, entity.ActionWouldCreate)
	}

	externalID, err := s.calendarRepo.CreateEvent(ctx, calendarID, event)
	if err != nil {
		s.logger.Error("Failed to create event",
			"identityKey", event.IdentityKey,
			"subject", event.Subject,
			"transient", entity.IsTransient(err),
			"error", err)
		return failure(event, err)
	}

	if err := s.mappingRepo.Upsert(ctx, timetableKey, event.IdentityKey, externalID); err != nil {
		s.logger.Error("Created event but failed to persist mapping",
			"identityKey", event.IdentityKey, "externalId", externalID, "error", err)
		return failure(event, err)
	}

	mapping[event.IdentityKey] = externalID
	s.logger.Info("Event created", "identityKey", event.IdentityKey, "externalId", externalID)
	return outcome(event, entity.ActionCreated)
}

func (s *CalendarSynchronizer) applyChange(ctx context.Context, timetableKey, calendarID string, change entity.EventChange, mapping entity.CalendarMapping, dryRun bool) entity.EventOutcome {
	externalID, ok := mapping[change.Old.IdentityKey]
	if !ok {
		// Mapping lost or the event was never actually created: fall back
		// to a create instead of failing.
		s.logger.Warn("No mapping entry for changed event, creating instead",
			"identityKey", change.Old.IdentityKey)
		return s.applyAdd(ctx, timetableKey, calendarID, change.New, mapping, dryRun)
	}

	if dryRun {
		s.logger.Info("Dry run: would update event", "identityKey", change.New.IdentityKey, "subject", change.New.Subject)
		return outcome(change.New, entity.ActionWouldUpdate)
	}

	if err := s.calendarRepo.UpdateEvent(ctx, calendarID, externalID, change.New); err != nil {
		s.logger.Error("Failed to update event",
			"identityKey", change.New.IdentityKey,
			"externalId", externalID,
			"transient", entity.IsTransient(err),
			"error", err)
		return failure(change.New, err)
	}

	// Re-key the mapping entry; identical keys make this an upsert in place.
	if change.Old.IdentityKey != change.New.IdentityKey {
		if err := s.mappingRepo.Delete(ctx, timetableKey, change.Old.IdentityKey); err != nil {
			return failure(change.New, err)
		}
		delete(mapping, change.Old.IdentityKey)
	}
	if err := s.mappingRepo.Upsert(ctx, timetableKey, change.New.IdentityKey, externalID); err != nil {
		return failure(change.New, err)
	}
	mapping[change.New.IdentityKey] = externalID

	s.logger.Info("Event updated", "identityKey", change.New.IdentityKey, "externalId", externalID)
	return outcome(change.New, entity.ActionUpdated)
}

func (s *CalendarSynchronizer) applyRemove(ctx context.Context, timetableKey, calendarID string, event entity.TimetableEvent, mapping entity.CalendarMapping, dryRun bool) entity.EventOutcome {
	if dryRun {
		s.logger.Info("Dry run: would delete event", "identityKey", event.IdentityKey, "subject", event.Subject)
		return outcome(event, entity.ActionWouldDelete)
	}

	externalID, ok := mapping[event.IdentityKey]
	if !ok {
		// Never created remotely, or already deleted on a previous run.
		s.logger.Info("No mapping entry for removed event, already consistent",
			"identityKey", event.IdentityKey)
		return outcome(event, entity.ActionDeleted)
	}

	if err := s.calendarRepo.DeleteEvent(ctx, calendarID, externalID); err != nil && !errors.Is(err, entity.ErrRemoteNotFound) {
		s.logger.Error("Failed to delete event",
			"identityKey", event.IdentityKey,
			"externalId", externalID,
			"transient", entity.IsTransient(err),
			"error", err)
		return failure(event, err)
	}

	if err := s.mappingRepo.Delete(ctx, timetableKey, event.IdentityKey); err != nil {
		return failure(event, err)
	}
	delete(mapping, event.IdentityKey)

	s.logger.Info("Event deleted", "identityKey", event.IdentityKey, "externalId", externalID)
	return outcome(event, entity.ActionDeleted)
}

func outcome(event entity.TimetableEvent, action entity.SyncAction) entity.EventOutcome {
	return entity.EventOutcome{
		IdentityKey: event.IdentityKey,
		Subject:     event.Subject,
		Action:      action,
	}
}

func failure(event entity.TimetableEvent, err error) entity.EventOutcome {
	return entity.EventOutcome{
		IdentityKey: event.IdentityKey,
		Subject:     event.Subject,
		Action:      entity.ActionFailed,
		Err:         err,
		Permanent:   !entity.IsTransient(err),
	}
}
