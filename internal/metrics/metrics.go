// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ImportRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_runs_total",
			Help: "Import runs by outcome (completed, aborted).",
		},
		[]string{"outcome"},
	)

	ImportRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_import_run_duration_seconds",
			Help:    "Wall time of an import run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)

	ImportAssets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_assets_total",
			Help: "Resources seen by import runs, by result (scanned, inserted, repaired).",
		},
		[]string{"result"},
	)

	ImportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_errors_total",
			Help: "Import errors by stage (list, insert). Counted even when the run's error list is full.",
		},
		[]string{"stage"},
	)

	DAMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dam_requests_total",
			Help: "Requests to the DAM provider by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	DAMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dam_request_duration_seconds",
			Help:    "Latency of DAM provider requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions.",
		},
		[]string{"name", "from", "to"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
