package repository

import (
	"context"
	"time"

	"timetable-sync-service/internal/domain/entity"
	"timetable-sync-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormSyncRunRepository implements the SyncRunRepository interface
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewGormSyncRunRepository creates a new GORM sync run repository
func NewGormSyncRunRepository(db *gorm.DB) repository.SyncRunRepository {
	return &GormSyncRunRepository{
		db: db,
	}
}

// SyncRunRow GORM model for database mapping
type SyncRunRow struct {
	ID           string    `gorm:"primaryKey;column:id"`
	TimetableKey string    `gorm:"column:timetable_key;index"`
	VersionTS    time.Time `gorm:"column:version_ts"`
	DryRun       bool      `gorm:"column:dry_run"`
	Created      int       `gorm:"column:created_events"`
	Updated      int       `gorm:"column:updated_events"`
	Deleted      int       `gorm:"column:deleted_events"`
	Skipped      int       `gorm:"column:skipped_rows"`
	Failed       int       `gorm:"column:failed_events"`
	StartedAt    time.Time `gorm:"column:started_at"`
	FinishedAt   time.Time `gorm:"column:finished_at"`
}

// TableName overrides the default table name
func (SyncRunRow) TableName() string {
	return "t_sync_runs"
}

// Create persists a run summary
func (r *GormSyncRunRepository) Create(ctx context.Context, run *entity.SyncRun) error {
	row := SyncRunRow{
		ID:           run.ID,
		TimetableKey: run.TimetableKey,
		VersionTS:    run.VersionTS,
		DryRun:       run.DryRun,
		Created:      run.Created,
		Updated:      run.Updated,
		Deleted:      run.Deleted,
		Skipped:      run.Skipped,
		Failed:       run.Failed,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// ListRecent returns the most recent run summaries for a timetable
func (r *GormSyncRunRepository) ListRecent(ctx context.Context, timetableKey string, limit int) ([]entity.SyncRun, error) {
	var rows []SyncRunRow
	result := r.db.WithContext(ctx).
		Where("timetable_key = ?", timetableKey).
		Order("started_at DESC").
		Limit(limit).
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	runs := make([]entity.SyncRun, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, entity.SyncRun{
			ID:           row.ID,
			TimetableKey: row.TimetableKey,
			VersionTS:    row.VersionTS,
			DryRun:       row.DryRun,
			Created:      row.Created,
			Updated:      row.Updated,
			Deleted:      row.Deleted,
			Skipped:      row.Skipped,
			Failed:       row.Failed,
			StartedAt:    row.StartedAt,
			FinishedAt:   row.FinishedAt,
		})
	}
	return runs, nil
}
