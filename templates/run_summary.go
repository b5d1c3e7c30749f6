package templates

import (
	"fmt"
	"strings"

	"timetable-sync-service/internal/domain/entity"
)

const runSummaryTemplate = `timetable %s: %d created, %d updated, %d deleted, %d skipped, %d failed`

// RenderRunSummary formats the user-visible summary of one reconciliation
// run, listing failed events individually so readers can tell what needs a
// fix and what will simply retry
func RenderRunSummary(run *entity.SyncRun, failed []entity.EventOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, runSummaryTemplate,
		run.TimetableKey, run.Created, run.Updated, run.Deleted, run.Skipped, run.Failed)
	if run.DryRun {
		b.WriteString(" (dry run)")
	}

	for _, o := range failed {
		kind := "transient, will retry next run"
		if o.Permanent {
			kind = "permanent, needs attention"
		}
		fmt.Fprintf(&b, "\n  failed %s %q: %v (%s)", o.IdentityKey, o.Subject, o.Err, kind)
	}
	return b.String()
}
