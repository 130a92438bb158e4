// Package metrics holds the Prometheus collectors for the sync engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulletin_sync_runs_total",
			Help: "Sync runs by kind and final status",
		},
		[]string{"kind", "status"}, // status: success, failed, skipped
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bulletin_sync_duration_seconds",
			Help:    "Duration of sync runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"kind"},
	)

	SyncItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulletin_sync_items_total",
			Help: "Records written by sync runs",
		},
		[]string{"entity"}, // filter, bulletin, bidding, follow_up
	)

	SyncErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulletin_sync_errors_total",
			Help: "Per-unit failures absorbed by sync runs",
		},
		[]string{"scope"}, // filter, bulletin, bidding, follow_up, publish
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bulletin_sync_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful sync run",
		},
	)

	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulletin_upstream_requests_total",
			Help: "Requests sent to the bulletin API",
		},
		[]string{"endpoint", "status"}, // status: ok, error, unauthorized, rejected
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bulletin_upstream_request_duration_seconds",
			Help:    "Latency of bulletin API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bulletin_upstream_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	DedupeRowsRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bulletin_dedupe_rows_removed_total",
			Help: "Duplicate bidding rows removed by the offline dedupe pass",
		},
	)
)
