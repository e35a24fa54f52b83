package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MonitorRuns counts orchestrated monitoring runs by trigger (scheduled|manual) and result (ok|degraded|error).
	MonitorRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riverwatch_monitor_runs_total",
			Help: "Total number of monitoring runs",
		},
		[]string{"trigger", "result"},
	)

	// MonitorRunDuration measures end-to-end monitoring run latency.
	MonitorRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "riverwatch_monitor_run_duration_seconds",
			Help:    "Monitoring run duration",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	// MonitorUnits counts per user/station work units by outcome (ok|skipped|error).
	MonitorUnits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riverwatch_monitor_units_total",
			Help: "Total number of user/station monitoring units processed",
		},
		[]string{"outcome"},
	)

	// AlertsDispatched counts alert dispatch outcomes (sent|suppressed|undeliverable|failed).
	AlertsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riverwatch_alerts_dispatched_total",
			Help: "Total number of alert dispatch attempts by outcome",
		},
		[]string{"outcome"},
	)

	// UpstreamRequests counts calls to the forecast API by kind (forecast|thresholds) and result (ok|error).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riverwatch_upstream_requests_total",
			Help: "Total number of upstream forecast API requests",
		},
		[]string{"kind", "result"},
	)

	// CacheLookups counts cache provider lookups by kind and result (hit|miss|stale).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riverwatch_cache_lookups_total",
			Help: "Total number of cache lookups by the read-through providers",
		},
		[]string{"kind", "result"},
	)

	// PushSends counts push gateway deliveries by result (ok|error).
	PushSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riverwatch_push_sends_total",
			Help: "Total number of push notification sends",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "riverwatch_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
