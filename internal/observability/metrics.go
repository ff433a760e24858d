package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framez_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "framez_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedEventsTotal counts domain events published to the live feed.
	FeedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framez_feed_events_total",
		Help: "Total number of feed events published by type",
	}, []string{"event_type"})

	// FeedCacheRequests counts first-page feed cache lookups by result.
	FeedCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framez_feed_cache_requests_total",
		Help: "Feed cache lookups by result (hit or miss)",
	}, []string{"result"})

	// WebSocketConnectionsTotal is the gauge of live feed connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "framez_websocket_connections_total",
		Help: "Total number of active live feed WebSocket connections",
	})

	// WebSocketBackpressureDrops counts live feed messages dropped on slow or closed clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framez_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})

	// MediaUploadsTotal counts processed image uploads by outcome.
	MediaUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framez_media_uploads_total",
		Help: "Total number of image uploads by outcome",
	}, []string{"outcome"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
