package usecase

import (
	"context"
	"fmt"
	"time"

	"timetable-sync-service/internal/domain/entity"
	"timetable-sync-service/internal/domain/repository"
	"timetable-sync-service/pkg/logger"
	"timetable-sync-service/pkg/metrics"
	"timetable-sync-service/pkg/utils"
	"timetable-sync-service/templates"

	"github.com/google/uuid"
)

// SyncJob is one timetable's reconciliation input: its configuration plus
// the raw table and version stamp read from the current PDF
type SyncJob struct {
	TimetableKey string
	Keyword      string
	CalendarID   string
	Location     *time.Location
	DryRun       bool
	Table        entity.RawTable
	VersionTS    time.Time
}

// SyncProcessor orchestrates one run per timetable: extract, normalize,
// diff against the stored version, apply to the calendar, commit the
// confirmed state. Timetables are independent; the processor holds no
// per-timetable mutable state.
type SyncProcessor struct {
	versionStore *VersionStore
	synchronizer *CalendarSynchronizer
	mappingRepo  repository.MappingRepository
	runRepo      repository.SyncRunRepository
	cleaner      repository.SubjectCleaner
	metrics      *metrics.Metrics
	logger       logger.Logger
}

// NewSyncProcessor creates a new sync processor. cleaner and runRepo may be
// nil; subject cleanup and run bookkeeping are then skipped.
func NewSyncProcessor(
	versionStore *VersionStore,
	synchronizer *CalendarSynchronizer,
	mappingRepo repository.MappingRepository,
	runRepo repository.SyncRunRepository,
	cleaner repository.SubjectCleaner,
	m *metrics.Metrics,
	logger logger.Logger,
) *SyncProcessor {
	return &SyncProcessor{
		versionStore: versionStore,
		synchronizer: synchronizer,
		mappingRepo:  mappingRepo,
		runRepo:      runRepo,
		cleaner:      cleaner,
		metrics:      m,
		logger:       logger,
	}
}

// ProcessTimetable runs the full reconciliation for one timetable. An error
// return means a systemic failure before any calendar or store mutation;
// per-event failures are reported inside the SyncResult instead.
func (p *SyncProcessor) ProcessTimetable(ctx context.Context, job SyncJob) (*entity.SyncRun, entity.SyncResult, error) {
	log := p.logger.With("timetable", job.TimetableKey)
	startedAt := time.Now()
	if p.metrics != nil {
		p.metrics.SyncRuns.Inc()
		defer func() {
			p.metrics.SyncDuration.Observe(time.Since(startedAt).Seconds())
		}()
	}

	if !job.VersionTS.IsZero() {
		lastTS, err := p.versionStore.LastVersionTimestamp(ctx, job.TimetableKey)
		if err != nil {
			return nil, entity.SyncResult{}, fmt.Errorf("read stored version stamp: %w", err)
		}
		if lastTS.Equal(job.VersionTS) {
			log.Info("PDF version already synced, nothing to do", "versionTimestamp", job.VersionTS)
			run := p.newRun(job, startedAt, entity.SyncResult{}, 0)
			p.recordRun(ctx, run, log)
			return run, entity.SyncResult{}, nil
		}
	}

	extractor := utils.NewTableExtractor(job.Keyword, log)
	candidates, skippedRows := extractor.Extract(job.Table)

	year := job.VersionTS.Year()
	if job.VersionTS.IsZero() {
		year = time.Now().In(job.Location).Year()
	}
	normalizer := utils.NewEventNormalizer(job.Location, p.cleaner, log)
	events, skippedCandidates := normalizer.Normalize(ctx, candidates, year)
	skipped := append(skippedRows, skippedCandidates...)
	if p.metrics != nil {
		p.metrics.RowsSkipped.Add(float64(len(skipped)))
	}

	diff, err := p.versionStore.Diff(ctx, job.TimetableKey, events)
	if err != nil {
		return nil, entity.SyncResult{}, err
	}

	mapping, err := p.mappingRepo.GetAll(ctx, job.TimetableKey)
	if err != nil {
		return nil, entity.SyncResult{}, fmt.Errorf("load calendar mapping: %w", err)
	}

	result := p.synchronizer.Apply(ctx, job.TimetableKey, job.CalendarID, diff, mapping, job.DryRun)
	p.observeOutcomes(result)

	if !job.DryRun {
		confirmed := confirmedEventSet(events, diff, result)
		committedTS := job.VersionTS
		if len(result.Failed()) > 0 {
			// the stamp advances only once every event is confirmed,
			// otherwise the early skip would suppress the retry
			committedTS = time.Time{}
		}
		if err := p.versionStore.Commit(ctx, job.TimetableKey, confirmed, committedTS); err != nil {
			return nil, result, err
		}
	}

	run := p.newRun(job, startedAt, result, len(skipped))
	p.recordRun(ctx, run, log)

	log.Info("Run completed", "summary", templates.RenderRunSummary(run, result.Failed()))
	return run, result, nil
}

// confirmedEventSet reverts every event whose remote operation failed to its
// pre-run state, so the committed version only reflects confirmed calendar
// effects and the next run retries the rest by recomputation
func confirmedEventSet(newEvents []entity.TimetableEvent, diff entity.EventDiff, result entity.SyncResult) []entity.TimetableEvent {
	failedKeys := make(map[string]bool)
	for _, o := range result.Outcomes {
		if o.Action == entity.ActionFailed {
			failedKeys[o.IdentityKey] = true
		}
	}
	if len(failedKeys) == 0 {
		return newEvents
	}

	oldOfChanged := make(map[string]entity.TimetableEvent)
	for _, c := range diff.Changed {
		oldOfChanged[c.New.IdentityKey] = c.Old
	}

	var confirmed []entity.TimetableEvent
	for _, e := range newEvents {
		if !failedKeys[e.IdentityKey] {
			confirmed = append(confirmed, e)
			continue
		}
		if old, ok := oldOfChanged[e.IdentityKey]; ok {
			// failed update: keep the stored variant
			confirmed = append(confirmed, old)
		}
		// failed create: drop the event so the next run re-adds it
	}
	for _, e := range diff.Removed {
		if failedKeys[e.IdentityKey] {
			// failed delete: the event is still on the calendar
			confirmed = append(confirmed, e)
		}
	}
	return confirmed
}

func (p *SyncProcessor) newRun(job SyncJob, startedAt time.Time, result entity.SyncResult, skipped int) *entity.SyncRun {
	return &entity.SyncRun{
		ID:           uuid.New().String(),
		TimetableKey: job.TimetableKey,
		VersionTS:    job.VersionTS,
		DryRun:       job.DryRun,
		Created:      result.Count(entity.ActionCreated) + result.Count(entity.ActionWouldCreate),
		Updated:      result.Count(entity.ActionUpdated) + result.Count(entity.ActionWouldUpdate),
		Deleted:      result.Count(entity.ActionDeleted) + result.Count(entity.ActionWouldDelete),
		Skipped:      skipped,
		Failed:       result.Count(entity.ActionFailed),
		StartedAt:    startedAt,
		FinishedAt:   time.Now(),
	}
}

func (p *SyncProcessor) recordRun(ctx context.Context, run *entity.SyncRun, log logger.Logger) {
	if p.runRepo == nil {
		return
	}
	if err := p.runRepo.Create(ctx, run); err != nil {
		log.Error("Failed to record run summary", "error", err)
	}
}

func (p *SyncProcessor) observeOutcomes(result entity.SyncResult) {
	if p.metrics == nil {
		return
	}
	p.metrics.EventsCreated.Add(float64(result.Count(entity.ActionCreated)))
	p.metrics.EventsUpdated.Add(float64(result.Count(entity.ActionUpdated)))
	p.metrics.EventsDeleted.Add(float64(result.Count(entity.ActionDeleted)))
	for _, o := range result.Failed() {
		class := "transient"
		if o.Permanent {
			class = "permanent"
		}
		p.metrics.EventFailures.WithLabelValues(class).Inc()
	}
}
