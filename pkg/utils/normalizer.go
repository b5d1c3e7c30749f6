package utils

import (
	"context"
	"time"

	"timetable-sync-service/internal/domain/entity"
	"timetable-sync-service/internal/domain/repository"
	"timetable-sync-service/pkg/logger"
)

// EventNormalizer resolves candidate events into fully typed TimetableEvents:
// dates and time ranges become timestamps in the calendar time zone, subjects
// run through the optional cleanup collaborator, and rows that collapse to
// the same identity key are merged.
type EventNormalizer struct {
	location *time.Location
	cleaner  repository.SubjectCleaner
	logger   logger.Logger
}

// NewEventNormalizer creates a normalizer for one timetable's time zone.
// cleaner may be nil; subjects then keep their raw extracted text.
func NewEventNormalizer(location *time.Location, cleaner repository.SubjectCleaner, logger logger.Logger) *EventNormalizer {
	return &EventNormalizer{
		location: location,
		cleaner:  cleaner,
		logger:   logger,
	}
}

// Normalize turns candidates into a deduplicated event set. year anchors
// dates printed without one (taken from the PDF version stamp). Candidates
// with unparseable date or time text are reported as skipped, not fatal.
func (n *EventNormalizer) Normalize(ctx context.Context, candidates []CandidateEvent, year int) ([]entity.TimetableEvent, []entity.SkippedRow) {
	var skipped []entity.SkippedRow
	byKey := make(map[string]entity.TimetableEvent)
	var order []string

	for _, candidate := range candidates {
		date, err := ParseDate(candidate.DateText, year, n.location)
		if err != nil {
			n.logger.Warn("Candidate skipped", "row", candidate.SourceRow.Number, "error", err)
			skipped = append(skipped, entity.SkippedRow{Row: candidate.SourceRow, Reason: err.Error()})
			continue
		}

		start, end, err := ParseTimeRange(candidate.TimeText, date)
		if err != nil {
			n.logger.Warn("Candidate skipped", "row", candidate.SourceRow.Number, "error", err)
			skipped = append(skipped, entity.SkippedRow{Row: candidate.SourceRow, Reason: err.Error()})
			continue
		}

		event := entity.TimetableEvent{
			Subject:      n.cleanSubject(ctx, candidate.SubjectText),
			Keyword:      candidate.Keyword,
			Date:         date,
			StartTime:    start,
			EndTime:      end,
			Room:         candidate.RoomText,
			RawSourceRow: candidate.RawSource,
		}
		// identity comes from the raw cell text; the cleanup collaborator
		// is best effort and must not shift keys between runs
		event.IdentityKey = entity.ComputeIdentityKey(candidate.Keyword, date, start, candidate.SubjectText)

		existing, ok := byKey[event.IdentityKey]
		if !ok {
			byKey[event.IdentityKey] = event
			order = append(order, event.IdentityKey)
			continue
		}
		byKey[event.IdentityKey] = mergeVariants(existing, event)
	}

	events := make([]entity.TimetableEvent, 0, len(byKey))
	for _, key := range order {
		events = append(events, byKey[key])
	}

	n.logger.Info("Normalization completed",
		"events", len(events),
		"merged", len(candidates)-len(events)-len(skipped),
		"skipped", len(skipped))

	return events, skipped
}

func (n *EventNormalizer) cleanSubject(ctx context.Context, text string) string {
	if n.cleaner == nil {
		return text
	}
	cleaned, err := n.cleaner.Clean(ctx, text)
	if err != nil {
		n.logger.Warn("Subject cleanup failed, keeping raw text", "error", err)
		return text
	}
	if cleaned == "" {
		return text
	}
	return cleaned
}

// mergeVariants absorbs PDF rendering artifacts that duplicate a session
// across adjacent lines: of two rows with the same identity key, the more
// complete subject and room texts win
func mergeVariants(a, b entity.TimetableEvent) entity.TimetableEvent {
	merged := a
	if len(b.Subject) > len(merged.Subject) {
		merged.Subject = b.Subject
	}
	if len(b.Room) > len(merged.Room) {
		merged.Room = b.Room
	}
	return merged
}
