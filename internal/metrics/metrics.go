// Package metrics provides Prometheus metrics for the migrator.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the migration runner.
type Metrics struct {
	MigrationsApplied  *prometheus.CounterVec
	MigrationsRolled   *prometheus.CounterVec
	MigrationDuration  *prometheus.HistogramVec
	CommandsCompiled   *prometheus.CounterVec
	StatementsExecuted *prometheus.CounterVec
	StatementLatency   *prometheus.HistogramVec
	ExecutionErrors    *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.MigrationsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tern_migrations_applied_total",
			Help: "Total number of migration versions applied",
		},
		[]string{"dialect", "status"},
	)

	m.MigrationsRolled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tern_migrations_rolled_back_total",
			Help: "Total number of migration versions rolled back",
		},
		[]string{"dialect", "status"},
	)

	m.MigrationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tern_migration_duration_seconds",
			Help:    "Time to apply or roll back a single migration version",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"dialect", "direction"},
	)

	m.CommandsCompiled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tern_commands_compiled_total",
			Help: "Total number of declarative commands compiled to SQL, by dialect and command kind",
		},
		[]string{"dialect", "kind"},
	)

	m.StatementsExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tern_statements_executed_total",
			Help: "Total number of SQL statements executed against the live database",
		},
		[]string{"dialect"},
	)

	m.StatementLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tern_statement_latency_seconds",
			Help:    "Latency of a single statement execution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"dialect"},
	)

	m.ExecutionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tern_execution_errors_total",
			Help: "Total number of statement execution errors",
		},
		[]string{"dialect"},
	)

	m.registry.MustRegister(
		m.MigrationsApplied,
		m.MigrationsRolled,
		m.MigrationDuration,
		m.CommandsCompiled,
		m.StatementsExecuted,
		m.StatementLatency,
		m.ExecutionErrors,
	)
	m.registry.MustRegister(prometheus.NewGoCollector())
	m.registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return m
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// RecordMigration records one applied migration version.
func (m *Metrics) RecordMigration(dialect string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.MigrationsApplied.WithLabelValues(dialect, status).Inc()
	m.MigrationDuration.WithLabelValues(dialect, "up").Observe(duration.Seconds())
}

// RecordRollback records one rolled-back migration version.
func (m *Metrics) RecordRollback(dialect string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.MigrationsRolled.WithLabelValues(dialect, status).Inc()
	m.MigrationDuration.WithLabelValues(dialect, "down").Observe(duration.Seconds())
}

// RecordCompile records a single command's compilation.
func (m *Metrics) RecordCompile(dialect, kind string) {
	m.CommandsCompiled.WithLabelValues(dialect, kind).Inc()
}

// RecordStatement records one executed statement's latency and outcome.
func (m *Metrics) RecordStatement(dialect string, duration time.Duration, err error) {
	m.StatementsExecuted.WithLabelValues(dialect).Inc()
	m.StatementLatency.WithLabelValues(dialect).Observe(duration.Seconds())
	if err != nil {
		m.ExecutionErrors.WithLabelValues(dialect).Inc()
	}
}
