// Package metrics exposes editor and collaborator activity as Prometheus series.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stage results.
const (
	StageAccepted = "accepted"
	StageRejected = "rejected"
	StageReverted = "reverted"
	StageStale    = "stale"
)

// Metrics groups every series the program records.
type Metrics struct {
	registry *prometheus.Registry

	stageResults    *prometheus.CounterVec
	commits         prometheus.Counter
	committedRows   prometheus.Counter
	historyOps      *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	appends         prometheus.Counter
	lookups         *prometheus.CounterVec
	lookupDuration  prometheus.Histogram
	syncedRows      prometheus.Counter
	records         prometheus.Gauge
	pendingRows     prometheus.Gauge
}

// New registers all series on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		stageResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "glossary_stage_total",
			Help: "Staged cell edits by result.",
		}, []string{"result"}),
		commits: f.NewCounter(prometheus.CounterOpts{
			Name: "glossary_commits_total",
			Help: "Commits that applied at least one row.",
		}),
		committedRows: f.NewCounter(prometheus.CounterOpts{
			Name: "glossary_committed_rows_total",
			Help: "Rows changed by commits.",
		}),
		historyOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "glossary_history_ops_total",
			Help: "Undo and redo requests by outcome.",
		}, []string{"op", "result"}),
		persistFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "glossary_persist_failures_total",
			Help: "Durable writes that failed, by storage key.",
		}, []string{"key"}),
		appends: f.NewCounter(prometheus.CounterOpts{
			Name: "glossary_appends_total",
			Help: "Records appended.",
		}),
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "glossary_lookups_total",
			Help: "Definition lookups by result.",
		}, []string{"result"}),
		lookupDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "glossary_lookup_duration_seconds",
			Help:    "Duration of definition lookups.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		syncedRows: f.NewCounter(prometheus.CounterOpts{
			Name: "glossary_synced_rows_total",
			Help: "Rows sent to the class sheet.",
		}),
		records: f.NewGauge(prometheus.GaugeOpts{
			Name: "glossary_records",
			Help: "Records currently in the glossary.",
		}),
		pendingRows: f.NewGauge(prometheus.GaugeOpts{
			Name: "glossary_pending_rows",
			Help: "Rows with staged, uncommitted edits.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Stage(result string) {
	if m == nil {
		return
	}
	m.stageResults.WithLabelValues(result).Inc()
}

func (m *Metrics) Commit(rows int) {
	if m == nil || rows == 0 {
		return
	}
	m.commits.Inc()
	m.committedRows.Add(float64(rows))
}

// History records an undo or redo; applied is false when the stack was empty.
func (m *Metrics) History(op string, applied bool) {
	if m == nil {
		return
	}
	result := "applied"
	if !applied {
		result = "empty"
	}
	m.historyOps.WithLabelValues(op, result).Inc()
}

func (m *Metrics) PersistFailure(key string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(key).Inc()
}

func (m *Metrics) Append(n int) {
	if m == nil {
		return
	}
	m.appends.Add(float64(n))
}

func (m *Metrics) Lookup(start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.lookups.WithLabelValues(result).Inc()
	m.lookupDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) Synced(rows int) {
	if m == nil {
		return
	}
	m.syncedRows.Add(float64(rows))
}

// State sets the gauges after a mutation.
func (m *Metrics) State(records, pendingRows int) {
	if m == nil {
		return
	}
	m.records.Set(float64(records))
	m.pendingRows.Set(float64(pendingRows))
}
