package repository

import (
	"context"
	"time"

	"timetable-sync-service/internal/domain/entity"
)

// VersionRepository persists the per-timetable event baseline. The latest
// record is replaced atomically on commit; every superseded record is kept
// in an append-only audit log and never mutated.
type VersionRepository interface {
	GetLatest(ctx context.Context, timetableKey string) (*entity.VersionRecord, error)
	SaveLatest(ctx context.Context, record *entity.VersionRecord) error
	AppendAudit(ctx context.Context, record *entity.VersionRecord) error
	LatestVersionTimestamp(ctx context.Context, timetableKey string) (time.Time, error)
}
