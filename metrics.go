package chunkarray

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// MetricsCollector defines an interface for collecting chunk-cache metrics.
// Implement this interface to integrate with monitoring systems; see
// metrics/prometheus for a Prometheus implementation.
type MetricsCollector interface {
	// RecordLoad is called after each loader invocation.
	// chunk is the row-major position of the selector in the file grid.
	RecordLoad(chunk int, duration time.Duration, err error)

	// RecordCacheHit is called when an access finds its chunk already resident.
	RecordCacheHit()

	// RecordCopyRange is called after each bulk range copy.
	// chunks is the number of grid coordinates visited.
	RecordCopyRange(chunks, elements int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordCacheHit()                                {}
func (NoopMetricsCollector) RecordCopyRange(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicMetricsCollector struct {
	LoadCount       atomic.Int64
	LoadErrors      atomic.Int64
	LoadTotalNanos  atomic.Int64
	CacheHits       atomic.Int64
	CopyRangeCount  atomic.Int64
	CopyRangeErrors atomic.Int64
	CopiedElements  atomic.Int64

	mu       sync.Mutex
	distinct *roaring.Bitmap
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(chunk int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.mu.Lock()
	if b.distinct == nil {
		b.distinct = roaring.New()
	}
	b.distinct.Add(uint32(chunk))
	b.mu.Unlock()
}

// RecordCacheHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheHit() {
	b.CacheHits.Add(1)
}

// RecordCopyRange implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCopyRange(chunks, elements int, duration time.Duration, err error) {
	b.CopyRangeCount.Add(1)
	b.CopiedElements.Add(int64(elements))
	if err != nil {
		b.CopyRangeErrors.Add(1)
	}
}

// LoadedChunks returns the grid positions that were successfully loaded at
// least once, in ascending order.
func (b *BasicMetricsCollector) LoadedChunks() []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.distinct == nil {
		return nil
	}
	return b.distinct.ToArray()
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	b.mu.Lock()
	var distinct uint64
	if b.distinct != nil {
		distinct = b.distinct.GetCardinality()
	}
	b.mu.Unlock()

	return BasicMetricsStats{
		LoadCount:       b.LoadCount.Load(),
		LoadErrors:      b.LoadErrors.Load(),
		LoadAvgNanos:    b.getAvgLoadNanos(),
		CacheHits:       b.CacheHits.Load(),
		DistinctChunks:  int64(distinct),
		CopyRangeCount:  b.CopyRangeCount.Load(),
		CopyRangeErrors: b.CopyRangeErrors.Load(),
		CopiedElements:  b.CopiedElements.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgLoadNanos() int64 {
	count := b.LoadCount.Load()
	if count == 0 {
		return 0
	}
	return b.LoadTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount       int64
	LoadErrors      int64
	LoadAvgNanos    int64
	CacheHits       int64
	DistinctChunks  int64
	CopyRangeCount  int64
	CopyRangeErrors int64
	CopiedElements  int64
}
