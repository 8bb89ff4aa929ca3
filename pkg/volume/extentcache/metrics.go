package extentcache

import "time"

// Metrics provides observability for extent cache operations. Implementations
// can use this interface to collect latency and shape metrics for the core
// operations; it is optional — a cache with no metrics attached skips
// collection entirely. Grounded on dittofs's pkg/cache.CacheMetrics shape.
//
// Example implementations:
//   - Prometheus metrics (pkg/metrics/prometheus)
//   - In-memory counters for testing
type Metrics interface {
	// ObserveDivideForWrite records one DivideForWrite call.
	ObserveDivideForWrite(duration time.Duration, allocatedParts, needAllocParts int)

	// ObserveDivideForRead records one DivideForRead call.
	ObserveDivideForRead(duration time.Duration, readParts, holeParts int)

	// ObserveMerge records one Merge call.
	ObserveMerge(duration time.Duration)

	// ObserveMarkWritten records one MarkWritten call.
	ObserveMarkWritten(duration time.Duration)

	// RecordRangeCount records the number of outer range partitions
	// currently populated for a cache instance.
	RecordRangeCount(count int)

	// RecordExtentCount records the total number of stored extents across
	// all ranges for a cache instance.
	RecordExtentCount(count int)
}

// noopMetrics is the zero-cost default used when a cache is constructed
// without an explicit Metrics implementation attached.
type noopMetrics struct{}

func (noopMetrics) ObserveDivideForWrite(time.Duration, int, int) {}
func (noopMetrics) ObserveDivideForRead(time.Duration, int, int)  {}
func (noopMetrics) ObserveMerge(time.Duration)                    {}
func (noopMetrics) ObserveMarkWritten(time.Duration)               {}
func (noopMetrics) RecordRangeCount(int)                          {}
func (noopMetrics) RecordExtentCount(int)                         {}
