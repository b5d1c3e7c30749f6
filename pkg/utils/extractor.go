package utils

import (
	"strings"

	"timetable-sync-service/internal/domain/entity"
	"timetable-sync-service/pkg/logger"
)

// TableExtractor turns a raw page table into candidate events for one
// course group. Rows without the configured keyword belong to other groups
// and are silently discarded; rows that match but cannot carry an event are
// collected as diagnostics, never aborting the document.
type TableExtractor struct {
	keyword string
	logger  logger.Logger
}

// NewTableExtractor creates a new table extractor for the given keyword
func NewTableExtractor(keyword string, logger logger.Logger) *TableExtractor {
	return &TableExtractor{
		keyword: keyword,
		logger:  logger,
	}
}

// Extract walks the table once and returns the candidate events plus the
// rows it had to skip
func (x *TableExtractor) Extract(table entity.RawTable) ([]CandidateEvent, []entity.SkippedRow) {
	var candidates []CandidateEvent
	var skipped []entity.SkippedRow

	for _, row := range table.Rows {
		if emptyRow(row.Cells) {
			continue
		}
		if !ContainsKeyword(row.Cells, x.keyword) {
			continue
		}
		if len(row.Cells) < entity.MinColumns {
			x.logger.Warn("Malformed row skipped",
				"source", table.SourceName,
				"row", row.Number,
				"cells", len(row.Cells))
			skipped = append(skipped, entity.SkippedRow{
				Row:    row,
				Reason: "fewer columns than the table layout requires",
			})
			continue
		}

		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = CleanCell(cell)
		}

		candidate := CandidateEvent{
			Keyword:     x.keyword,
			DateText:    cells[entity.ColumnDate],
			TimeText:    cells[entity.ColumnTime],
			SubjectText: cells[entity.ColumnSubject],
			SourceRow:   row,
			RawSource:   strings.Join(cells, " | "),
		}
		if len(cells) > entity.ColumnRoom {
			candidate.RoomText = cells[entity.ColumnRoom]
		}
		candidates = append(candidates, candidate)
	}

	x.logger.Info("Table extraction completed",
		"source", table.SourceName,
		"candidates", len(candidates),
		"skipped", len(skipped))

	return candidates, skipped
}

func emptyRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
