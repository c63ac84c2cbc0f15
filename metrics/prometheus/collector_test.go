package prometheus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/chunkarray"
	"github.com/hupe1980/chunkarray/ndarray"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg, Options{ConstLabels: prometheus.Labels{"dataset": "t"}})
	require.NoError(t, err)

	c.RecordLoad(0, time.Millisecond, nil)
	c.RecordLoad(1, time.Millisecond, nil)
	c.RecordLoad(2, time.Millisecond, errors.New("io"))
	c.RecordCacheHit()
	c.RecordCopyRange(4, 100, time.Millisecond, nil)
	c.RecordCopyRange(1, 10, time.Millisecond, errors.New("io"))

	assert.Equal(t, 2.0, promtest.ToFloat64(c.loads.WithLabelValues("success")))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.loads.WithLabelValues("error")))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.cacheHits))
	assert.Equal(t, 100.0, promtest.ToFloat64(c.copied))
	assert.Equal(t, 2, promtest.CollectAndCount(c.copyLatency))

	n, err := promtest.GatherAndCount(reg, "chunkarray_chunk_loads_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg, Options{})
	require.NoError(t, err)

	_, err = NewCollector(reg, Options{})
	require.Error(t, err)

	_, err = NewCollector(reg, Options{Namespace: "other"})
	require.NoError(t, err)
}

func TestCollector_WithArray(t *testing.T) {
	c, err := NewCollector(nil, Options{})
	require.NoError(t, err)

	grid := ndarray.New[int](3)
	for i := range grid.Data() {
		grid.Data()[i] = i
	}
	loader := chunkarray.LoaderFunc[float64, int](func(_ context.Context, buf *ndarray.Dense[float64], id int) error {
		buf.Fill(float64(id))
		return nil
	})

	arr, err := chunkarray.New(grid, ndarray.New[float64](4), loader, chunkarray.WithMetricsCollector(c))
	require.NoError(t, err)

	_, err = arr.ReadAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3.0, promtest.ToFloat64(c.loads.WithLabelValues("success")))
	assert.Equal(t, 12.0, promtest.ToFloat64(c.copied))
}
