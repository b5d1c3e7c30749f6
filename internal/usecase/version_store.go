package usecase

import (
	"context"
	"fmt"
	"time"

	"timetable-sync-service/internal/domain/entity"
	"timetable-sync-service/internal/domain/repository"
	"timetable-sync-service/pkg/logger"
)

// VersionStore owns the authoritative event baseline per timetable. It
// diffs freshly extracted sets against the stored version and, once the
// calendar effects are confirmed, advances the baseline. It never advances
// past a version whose calendar effects are unconfirmed.
type VersionStore struct {
	versionRepo repository.VersionRepository
	logger      logger.Logger
}

// NewVersionStore creates a new version store
func NewVersionStore(versionRepo repository.VersionRepository, logger logger.Logger) *VersionStore {
	return &VersionStore{
		versionRepo: versionRepo,
		logger:      logger,
	}
}

// Diff partitions newEvents against the stored baseline. On the first ever
// run there is no baseline and every event comes back as added.
func (s *VersionStore) Diff(ctx context.Context, timetableKey string, newEvents []entity.TimetableEvent) (entity.EventDiff, error) {
	latest, err := s.versionRepo.GetLatest(ctx, timetableKey)
	if err != nil {
		return entity.EventDiff{}, fmt.Errorf("load latest version for %q: %w", timetableKey, err)
	}

	var oldEvents []entity.TimetableEvent
	if latest != nil {
		oldEvents = latest.Events
	} else {
		s.logger.Info("No prior version, treating every event as added", "timetable", timetableKey)
	}

	diff := entity.ComputeDiff(oldEvents, newEvents)
	s.logger.Info("Computed diff",
		"timetable", timetableKey,
		"added", len(diff.Added),
		"removed", len(diff.Removed),
		"changed", len(diff.Changed))
	return diff, nil
}

// Commit persists events as the new baseline and appends it to the audit
// log. Callers pass the confirmed set: the extraction result with every
// event whose calendar operation failed reverted to its prior state, so the
// next run recomputes and retries exactly those.
func (s *VersionStore) Commit(ctx context.Context, timetableKey string, events []entity.TimetableEvent, versionTS time.Time) error {
	record := &entity.VersionRecord{
		TimetableKey:     timetableKey,
		VersionTimestamp: versionTS,
		Events:           events,
		CreatedAt:        time.Now(),
	}

	if err := s.versionRepo.SaveLatest(ctx, record); err != nil {
		return fmt.Errorf("save version for %q: %w", timetableKey, err)
	}
	if err := s.versionRepo.AppendAudit(ctx, record); err != nil {
		// baseline is already advanced, log and continue
		s.logger.Error("Failed to append audit record", "timetable", timetableKey, "error", err)
	}

	s.logger.Info("Version committed",
		"timetable", timetableKey,
		"versionTimestamp", versionTS,
		"events", len(events))
	return nil
}

// LastVersionTimestamp returns the version stamp of the stored baseline,
// zero when none exists yet
func (s *VersionStore) LastVersionTimestamp(ctx context.Context, timetableKey string) (time.Time, error) {
	return s.versionRepo.LatestVersionTimestamp(ctx, timetableKey)
}
