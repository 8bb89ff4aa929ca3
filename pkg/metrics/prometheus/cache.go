// Package prometheus implements extentcache.Metrics on top of
// prometheus/client_golang. Grounded on dittofs's
// pkg/metrics/prometheus/cache.go: one CounterVec/HistogramVec/GaugeVec per
// concern, registered through promauto against the process-wide registry,
// with every method nil-receiver-safe so a disabled cache metrics instance
// costs nothing.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/curvefs/curvefs-client/pkg/metrics"
	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"
)

// cacheMetrics is the Prometheus implementation of extentcache.Metrics.
type cacheMetrics struct {
	divideWriteOps      prometheus.Counter
	divideWriteDuration prometheus.Histogram
	divideWriteParts    *prometheus.HistogramVec

	divideReadOps      prometheus.Counter
	divideReadDuration prometheus.Histogram
	divideReadParts    *prometheus.HistogramVec

	mergeOps      prometheus.Counter
	mergeDuration prometheus.Histogram

	markWrittenOps      prometheus.Counter
	markWrittenDuration prometheus.Histogram

	rangeCount  prometheus.Gauge
	extentCount prometheus.Gauge
}

// NewCacheMetrics returns a Prometheus-backed extentcache.Metrics, or nil if
// metrics.InitRegistry has not been called. A nil *cacheMetrics is safe to
// attach to a Cache: every method below tolerates a nil receiver.
func NewCacheMetrics() extentcache.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	durationBuckets := []float64{
		0.01, // 10us
		0.05,
		0.1, // 100us
		0.5,
		1, // 1ms
		5,
		10, // 10ms
		50,
		100, // 100ms
	}

	return &cacheMetrics{
		divideWriteOps: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "curvefs_extentcache_divide_for_write_total",
			Help: "Total number of DivideForWrite calls",
		}),
		divideWriteDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "curvefs_extentcache_divide_for_write_duration_milliseconds",
			Help:    "Duration of DivideForWrite calls in milliseconds",
			Buckets: durationBuckets,
		}),
		divideWriteParts: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "curvefs_extentcache_divide_for_write_parts",
			Help:    "Number of parts produced per DivideForWrite call",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		}, []string{"kind"}), // kind: "allocated", "need_alloc"

		divideReadOps: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "curvefs_extentcache_divide_for_read_total",
			Help: "Total number of DivideForRead calls",
		}),
		divideReadDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "curvefs_extentcache_divide_for_read_duration_milliseconds",
			Help:    "Duration of DivideForRead calls in milliseconds",
			Buckets: durationBuckets,
		}),
		divideReadParts: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "curvefs_extentcache_divide_for_read_parts",
			Help:    "Number of parts produced per DivideForRead call",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		}, []string{"kind"}), // kind: "read", "hole"

		mergeOps: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "curvefs_extentcache_merge_total",
			Help: "Total number of Merge calls",
		}),
		mergeDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "curvefs_extentcache_merge_duration_milliseconds",
			Help:    "Duration of Merge calls in milliseconds",
			Buckets: durationBuckets,
		}),

		markWrittenOps: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "curvefs_extentcache_mark_written_total",
			Help: "Total number of MarkWritten calls",
		}),
		markWrittenDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "curvefs_extentcache_mark_written_duration_milliseconds",
			Help:    "Duration of MarkWritten calls in milliseconds",
			Buckets: durationBuckets,
		}),

		rangeCount: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "curvefs_extentcache_range_count",
			Help: "Number of populated outer range partitions for a cache instance",
		}),
		extentCount: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "curvefs_extentcache_extent_count",
			Help: "Total number of stored extents across all ranges for a cache instance",
		}),
	}
}

func (m *cacheMetrics) ObserveDivideForWrite(duration time.Duration, allocatedParts, needAllocParts int) {
	if m == nil {
		return
	}
	m.divideWriteOps.Inc()
	m.divideWriteDuration.Observe(duration.Seconds() * 1000)
	m.divideWriteParts.WithLabelValues("allocated").Observe(float64(allocatedParts))
	m.divideWriteParts.WithLabelValues("need_alloc").Observe(float64(needAllocParts))
}

func (m *cacheMetrics) ObserveDivideForRead(duration time.Duration, readParts, holeParts int) {
	if m == nil {
		return
	}
	m.divideReadOps.Inc()
	m.divideReadDuration.Observe(duration.Seconds() * 1000)
	m.divideReadParts.WithLabelValues("read").Observe(float64(readParts))
	m.divideReadParts.WithLabelValues("hole").Observe(float64(holeParts))
}

func (m *cacheMetrics) ObserveMerge(duration time.Duration) {
	if m == nil {
		return
	}
	m.mergeOps.Inc()
	m.mergeDuration.Observe(duration.Seconds() * 1000)
}

func (m *cacheMetrics) ObserveMarkWritten(duration time.Duration) {
	if m == nil {
		return
	}
	m.markWrittenOps.Inc()
	m.markWrittenDuration.Observe(duration.Seconds() * 1000)
}

func (m *cacheMetrics) RecordRangeCount(count int) {
	if m == nil {
		return
	}
	m.rangeCount.Set(float64(count))
}

func (m *cacheMetrics) RecordExtentCount(count int) {
	if m == nil {
		return
	}
	m.extentCount.Set(float64(count))
}

var _ extentcache.Metrics = (*cacheMetrics)(nil)
