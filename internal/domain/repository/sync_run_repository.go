package repository

import (
	"context"

	"timetable-sync-service/internal/domain/entity"
)

// SyncRunRepository records run summaries for operational inspection
type SyncRunRepository interface {
	Create(ctx context.Context, run *entity.SyncRun) error
	ListRecent(ctx context.Context, timetableKey string, limit int) ([]entity.SyncRun, error)
}
