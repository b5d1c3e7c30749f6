package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	SyncRuns      prometheus.Counter
	EventsCreated prometheus.Counter
	EventsUpdated prometheus.Counter
	EventsDeleted prometheus.Counter
	RowsSkipped   prometheus.Counter
	SyncDuration  prometheus.Histogram
	EventFailures *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SyncRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "The total number of reconciliation runs",
		}),
		EventsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_created_total",
			Help:      "The total number of calendar events created",
		}),
		EventsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_updated_total",
			Help:      "The total number of calendar events updated",
		}),
		EventsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_deleted_total",
			Help:      "The total number of calendar events deleted",
		}),
		RowsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "The total number of malformed table rows skipped",
		}),
		SyncDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Time taken for one reconciliation run",
			Buckets:   prometheus.DefBuckets,
		}),
		EventFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_failures_total",
			Help:      "The total number of per-event calendar failures",
		}, []string{"class"}),
	}
}
