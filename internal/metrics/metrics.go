// Package metrics defines the Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors. Construct one per
// process with New and share it by injection; there is no package-level
// default so tests can use isolated registries.
type Metrics struct {
	// CacheHits / CacheMisses count gateway read-cache lookups.
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// MigratedRecords / FailedRecords count per-record migration outcomes.
	MigratedRecords prometheus.Counter
	FailedRecords   prometheus.Counter

	// MigrationRuns counts completed migration runs by outcome
	// (completed, completed_with_errors).
	MigrationRuns *prometheus.CounterVec

	// RequestDuration observes HTTP handler latency by route and status.
	RequestDuration *prometheus.HistogramVec
}

// New registers the service collectors with reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_cache_hits_total",
			Help: "Read-cache hits in the persistence gateway.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_cache_misses_total",
			Help: "Read-cache misses in the persistence gateway.",
		}),
		MigratedRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_migration_records_migrated_total",
			Help: "Records successfully copied to the hosted backend.",
		}),
		FailedRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_migration_records_failed_total",
			Help: "Records that failed to copy during migration.",
		}),
		MigrationRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_migration_runs_total",
			Help: "Completed migration runs by outcome.",
		}, []string{"outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backoffice_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
