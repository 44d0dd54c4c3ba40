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
		Name: "ripple_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ripple_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FanoutWrites counts individual feed entries written during fan-out.
	FanoutWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ripple_fanout_writes_total",
		Help: "Total number of feed index entries written by fan-out",
	})

	// FanoutBatchSize records the follower batch size per fan-out.
	FanoutBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ripple_fanout_batch_size",
		Help:    "Number of follower feeds written per fan-out batch",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	// FeedReadLatency records home feed read latency.
	FeedReadLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ripple_feed_read_latency_seconds",
		Help:    "Home feed read latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// CounterCacheMisses counts counter reads that fell back to the durable store.
	CounterCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_counter_cache_misses_total",
		Help: "Total counter cache misses by counter kind",
	}, []string{"kind"})
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
