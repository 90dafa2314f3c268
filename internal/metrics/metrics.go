// Package metrics exposes the Prometheus instrumentation for the status
// service: cache efficiency, refresh outcomes against the voice server,
// snapshot size and HTTP traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "status_cache_hits_total",
			Help: "Total number of requests served from a fresh snapshot",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "status_cache_misses_total",
			Help: "Total number of requests that found the snapshot stale",
		},
	)

	// Refresh metrics
	RefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_refreshes_total",
			Help: "Total number of refresh attempts against the voice server",
		},
		[]string{"result"}, // "success", "error"
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "status_refresh_duration_seconds",
			Help:    "Duration of full refresh round-trips in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Snapshot size gauges, updated on every successful refresh
	SnapshotChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "status_snapshot_channels",
			Help: "Number of channels in the current snapshot",
		},
	)

	SnapshotClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "status_snapshot_clients",
			Help: "Number of voice clients in the current snapshot",
		},
	)

	// Transport metrics
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "status_websocket_clients",
			Help: "Currently connected websocket subscribers",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by path and status code",
		},
		[]string{"path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds by path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)
