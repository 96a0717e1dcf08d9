package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// EventsPublished counts domain events published to Redis by event type.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_events_published_total",
		Help: "Total number of domain events published by type",
	}, []string{"event_type"})

	// CacheHits counts cache-aside hits and misses by cache key prefix.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_requests_total",
		Help: "Total cache-aside lookups by key prefix and outcome",
	}, []string{"prefix", "outcome"})

	// LikeToggleConflicts counts like-toggle transactions retried after a write conflict.
	LikeToggleConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_like_toggle_conflicts_total",
		Help: "Total like toggle transactions retried after a unique-constraint conflict",
	})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// RecordCacheHit increments the cache counter for a hit on the given key prefix.
func RecordCacheHit(prefix string) {
	CacheHits.WithLabelValues(prefix, "hit").Inc()
}

// RecordCacheMiss increments the cache counter for a miss on the given key prefix.
func RecordCacheMiss(prefix string) {
	CacheHits.WithLabelValues(prefix, "miss").Inc()
}
