package chunkarray

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	var mc BasicMetricsCollector

	assert.Nil(t, mc.LoadedChunks())
	assert.Equal(t, BasicMetricsStats{}, mc.GetStats())

	mc.RecordLoad(4, 10*time.Millisecond, nil)
	mc.RecordLoad(1, 30*time.Millisecond, nil)
	mc.RecordLoad(4, 20*time.Millisecond, nil)
	mc.RecordLoad(7, 40*time.Millisecond, errors.New("io"))
	mc.RecordCacheHit()
	mc.RecordCacheHit()
	mc.RecordCopyRange(3, 120, time.Millisecond, nil)
	mc.RecordCopyRange(1, 8, time.Millisecond, errors.New("io"))

	stats := mc.GetStats()
	assert.Equal(t, int64(4), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadErrors)
	assert.Equal(t, (25 * time.Millisecond).Nanoseconds(), stats.LoadAvgNanos)
	assert.Equal(t, int64(2), stats.CacheHits)
	assert.Equal(t, int64(2), stats.DistinctChunks, "failed loads are not counted")
	assert.Equal(t, int64(2), stats.CopyRangeCount)
	assert.Equal(t, int64(1), stats.CopyRangeErrors)
	assert.Equal(t, int64(128), stats.CopiedElements)
	assert.Equal(t, []uint32{1, 4}, mc.LoadedChunks())
}

func TestBasicMetricsCollector_Concurrent(t *testing.T) {
	var mc BasicMetricsCollector
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				mc.RecordLoad(g*100+i, time.Microsecond, nil)
				mc.RecordCacheHit()
			}
		}()
	}
	wg.Wait()

	stats := mc.GetStats()
	assert.Equal(t, int64(800), stats.LoadCount)
	assert.Equal(t, int64(800), stats.CacheHits)
	assert.Equal(t, int64(800), stats.DistinctChunks)
}

func TestNoopMetricsCollector(t *testing.T) {
	var mc MetricsCollector = NoopMetricsCollector{}
	assert.NotPanics(t, func() {
		mc.RecordLoad(0, time.Second, nil)
		mc.RecordCacheHit()
		mc.RecordCopyRange(1, 1, time.Second, errors.New("x"))
	})
}
