package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline.
type Metrics struct {
	// Provider client metrics.
	ProviderRequestDuration *prometheus.HistogramVec // label: provider={firms,power,modis,cmr}
	ProviderErrors          *prometheus.CounterVec   // label: provider
	RowsSkipped             *prometheus.CounterVec   // label: provider

	// Ingestion task metrics.
	RecordsUpserted *prometheus.CounterVec // labels: kind={weather,health,image}, outcome={created,updated}
	IngestFailures  *prometheus.CounterVec // label: task={weather,satellite,fire,trend}
	TasksRunning    prometheus.Gauge

	// Alerting metrics.
	AlertsCreated    *prometheus.CounterVec // labels: type, severity
	AlertsSuppressed *prometheus.CounterVec // label: type

	// Scheduler metrics.
	SchedulerRuns *prometheus.CounterVec // label: job
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ProviderRequestDuration,
		m.ProviderErrors,
		m.RowsSkipped,
		m.RecordsUpserted,
		m.IngestFailures,
		m.TasksRunning,
		m.AlertsCreated,
		m.AlertsSuppressed,
		m.SchedulerRuns,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ProviderRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "field_monitor",
			Name:      "provider_request_duration_seconds",
			Help:      "External data provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_monitor",
			Name:      "provider_errors_total",
			Help:      "Failed external data provider requests.",
		}, []string{"provider"}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_monitor",
			Name:      "rows_skipped_total",
			Help:      "Malformed provider rows skipped during parsing.",
		}, []string{"provider"}),
		RecordsUpserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_monitor",
			Name:      "records_upserted_total",
			Help:      "Measurement rows written, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		IngestFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_monitor",
			Name:      "ingest_failures_total",
			Help:      "Ingestion task runs that ended in a failure result.",
		}, []string{"task"}),
		TasksRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "field_monitor",
			Name:      "tasks_running",
			Help:      "Ingestion tasks currently executing.",
		}),
		AlertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_monitor",
			Name:      "alerts_created_total",
			Help:      "Alerts created, by type and severity.",
		}, []string{"type", "severity"}),
		AlertsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_monitor",
			Name:      "alerts_suppressed_total",
			Help:      "Alerts suppressed by the cooldown-window duplicate check.",
		}, []string{"type"}),
		SchedulerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_monitor",
			Name:      "scheduler_runs_total",
			Help:      "Scheduled job executions.",
		}, []string{"job"}),
	}
}
