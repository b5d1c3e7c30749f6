package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"timetable-sync-service/internal/domain/entity"

	"github.com/gocarina/gocsv"
)

// OutcomeRow is one line of the per-run outcome report
type OutcomeRow struct {
	TimetableKey string `csv:"timetable_key"`
	IdentityKey  string `csv:"identity_key"`
	Subject      string `csv:"subject"`
	Action       string `csv:"action"`
	Error        string `csv:"error"`
	Permanent    bool   `csv:"permanent"`
}

// WriteOutcomes writes a run's per-event outcomes to a timestamped CSV in
// dir, mirroring the dry-run preview workflow: inspect the file, then run
// again without the flag. Returns the written path.
func WriteOutcomes(dir, timetableKey string, result entity.SyncResult, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	rows := make([]OutcomeRow, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		row := OutcomeRow{
			TimetableKey: timetableKey,
			IdentityKey:  o.IdentityKey,
			Subject:      o.Subject,
			Action:       string(o.Action),
			Permanent:    o.Permanent,
		}
		if o.Err != nil {
			row.Error = o.Err.Error()
		}
		rows = append(rows, row)
	}

	name := fmt.Sprintf("%s_%s_outcomes.csv", timetableKey, at.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return path, nil
}
