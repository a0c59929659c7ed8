package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/krew-solutions/projectdesk/projectdesk/session"
)

// Metrics collects statement timings reported by the sessions' query
// observer. Each instance owns its registry, so several may coexist.
type Metrics struct {
	registry *prometheus.Registry
	queries  *prometheus.HistogramVec
	affected *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "projectdesk_query_duration_seconds",
				Help:    "Statement latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "outcome"},
		),
		affected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectdesk_bulk_rows_total",
				Help: "Rows changed by bulk operations",
			},
			[]string{"operation"},
		),
	}
	m.registry.MustRegister(m.queries, m.affected)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveQuery is a session.QueryEndedEvent observer.
func (m *Metrics) ObserveQuery(e session.QueryEndedEvent) {
	outcome := "ok"
	if e.Err != nil {
		outcome = "error"
	}
	m.queries.WithLabelValues(statementKind(e.Query), outcome).Observe(e.ResponseTime.Seconds())
}

// BulkApplied records the rows changed by a named bulk operation.
func (m *Metrics) BulkApplied(operation string, affected int64) {
	m.affected.WithLabelValues(operation).Add(float64(affected))
}

// WriteTextfile dumps every metric in the text exposition format, for
// collectors that pick up files left by batch jobs.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func statementKind(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	switch kind := strings.ToLower(fields[0]); kind {
	case "select", "insert", "update", "delete", "with":
		return kind
	default:
		return "other"
	}
}
