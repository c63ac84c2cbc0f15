package chunkarray

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/chunkarray/ndarray"
	"github.com/hupe1980/chunkarray/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// elementwise evaluates sels through At, one element at a time.
func elementwise[T any, ID any](t *testing.T, arr *Array[T, ID], sels []ndarray.Selector) *ndarray.Dense[T] {
	t.Helper()
	ctx := context.Background()
	shape := arr.Shape()

	var outShape []int
	starts := make([]int, len(sels))
	counts := make([]int, len(sels))
	for i, s := range sels {
		start, count, collapsed, err := s.Resolve(shape[i])
		require.NoError(t, err)
		starts[i], counts[i] = start, count
		if !collapsed {
			outShape = append(outShape, count)
		}
	}

	out := ndarray.New[T](outShape...)
	idx := make([]int, len(sels))
	for k := range ndarray.Shape(counts).NumElements() {
		rem := k
		for a := len(counts) - 1; a >= 0; a-- {
			idx[a] = starts[a] + rem%counts[a]
			rem /= counts[a]
		}
		v, err := arr.At(ctx, idx...)
		require.NoError(t, err)

		var dstIdx []int
		for a, s := range sels {
			if !s.Collapsed() {
				dstIdx = append(dstIdx, idx[a]-starts[a])
			}
		}
		out.Set(v, dstIdx...)
	}
	return out
}

func TestCopyRange_MatchesElementwise(t *testing.T) {
	src := testutil.RandomDense(testutil.NewRNG(99), 4, 5, 3, 4)
	chunks, grid := testutil.Split(src, 2)

	tests := []struct {
		name       string
		sels       []ndarray.Selector
		wantShape  []int
		wantChunks int
	}{
		{"all", ndarray.AllOf(4), []int{4, 5, 3, 4}, 12},
		{"sub block", []ndarray.Selector{ndarray.Span(1, 3), ndarray.Span(2, 5), ndarray.Span(1, 3), ndarray.Span(0, 2)}, []int{2, 3, 2, 2}, 4},
		{"squeeze buffer axis", []ndarray.Selector{ndarray.At(2), ndarray.All(), ndarray.Span(0, 2), ndarray.At(3)}, []int{5, 2}, 2},
		{"squeeze grid axes", []ndarray.Selector{ndarray.All(), ndarray.Span(1, 4), ndarray.At(1), ndarray.At(2)}, []int{4, 3}, 1},
		{"single element", []ndarray.Selector{ndarray.At(3), ndarray.At(4), ndarray.At(2), ndarray.At(3)}, []int{}, 1},
		{"strided inner", []ndarray.Selector{ndarray.All(), ndarray.At(0), ndarray.All(), ndarray.All()}, []int{4, 3, 4}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := testutil.NewSliceLoader(chunks)
			arr, err := New(grid, ndarray.New[float32](4, 5), Loader[float32, int](loader))
			require.NoError(t, err)

			got, err := arr.CopyRange(context.Background(), nil, tt.sels...)
			require.NoError(t, err)
			assert.True(t, got.Shape().Equal(tt.wantShape), "shape %v", got.Shape())
			assert.Equal(t, tt.wantChunks, loader.Total(), "one load per distinct grid cell")
			for id, n := range loader.Calls() {
				assert.Equal(t, 1, n, "chunk %d", id)
			}

			want := elementwise(t, arr, tt.sels)
			assert.Equal(t, want.Data(), got.Data())
		})
	}
}

func TestCopyRange_RowMajorGridOrder(t *testing.T) {
	chunks, grid := testutil.Split(testutil.Iota(2, 2, 3), 2)
	loader := testutil.NewSliceLoader(chunks)
	arr, err := New(grid, ndarray.New[float64](2), Loader[float64, int](loader))
	require.NoError(t, err)

	_, err = arr.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, loader.Order())
}

func TestCopyRange_ResidentChunkNotReloaded(t *testing.T) {
	chunks, grid := testutil.Split(testutil.Iota(3, 2), 1)
	loader := testutil.NewSliceLoader(chunks)
	arr, err := New(grid, ndarray.New[float64](3), Loader[float64, int](loader))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = arr.At(ctx, 0, 1)
	require.NoError(t, err)

	got, err := arr.CopyRange(ctx, nil, ndarray.All(), ndarray.At(1))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 5}, got.Data())
	assert.Equal(t, 1, loader.Total())
}

func TestCopyRange_Destination(t *testing.T) {
	chunks, grid := testutil.Split(testutil.Iota(2, 3, 2), 1)
	loader := testutil.NewSliceLoader(chunks)
	arr, err := New(grid, ndarray.New[float64](2, 3), Loader[float64, int](loader))
	require.NoError(t, err)
	ctx := context.Background()

	dst := ndarray.New[float64](3, 2)
	got, err := arr.CopyRange(ctx, dst, ndarray.At(1), ndarray.All(), ndarray.All())
	require.NoError(t, err)
	assert.Same(t, dst, got)
	assert.Equal(t, []float64{6, 7, 8, 9, 10, 11}, dst.Data())

	var shapeErr *ErrDestinationShape
	_, err = arr.CopyRange(ctx, ndarray.New[float64](2, 3), ndarray.At(1), ndarray.All(), ndarray.All())
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, []int{3, 2}, shapeErr.Expected)
	assert.Equal(t, []int{2, 3}, shapeErr.Actual)
}

func TestCopyRange_Errors(t *testing.T) {
	chunks, grid := testutil.Split(testutil.Iota(2, 3), 1)
	loader := testutil.NewSliceLoader(chunks)
	mc := &BasicMetricsCollector{}
	arr, err := New(grid, ndarray.New[float64](2), Loader[float64, int](loader), WithMetricsCollector(mc))
	require.NoError(t, err)
	ctx := context.Background()

	var countErr *ErrIndexCount
	_, err = arr.CopyRange(ctx, nil, ndarray.All())
	require.ErrorAs(t, err, &countErr)

	var oob *ErrIndexOutOfRange
	_, err = arr.CopyRange(ctx, nil, ndarray.All(), ndarray.Span(1, 4))
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, 1, oob.Axis)

	_, err = arr.CopyRange(ctx, nil, ndarray.At(2), ndarray.All())
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, 0, oob.Axis)

	_, loaded := arr.Loaded()
	assert.False(t, loaded)
	assert.Equal(t, 0, loader.Total())

	boom := errors.New("boom")
	loader.FailOn(1, boom)
	_, err = arr.CopyRange(ctx, nil, ndarray.All(), ndarray.All())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []int{0, 1}, loader.Order(), "iteration stops at the failing chunk")

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.CopyRangeErrors)
	assert.Equal(t, int64(1), stats.LoadErrors)
}

func TestCopyRange_ErrorsKeepResidentChunk(t *testing.T) {
	var calls int
	arr, err := New(idGrid(2, 3), ndarray.New[float64](4, 5), fillLoader(&calls))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = arr.At(ctx, 1, 1, 1, 1)
	require.NoError(t, err)
	before := arr.buf.Clone()

	tests := []struct {
		name string
		sels []ndarray.Selector
		axis int
	}{
		{"buffer index high", []ndarray.Selector{ndarray.At(4), ndarray.All(), ndarray.All(), ndarray.All()}, 0},
		{"buffer span negative", []ndarray.Selector{ndarray.All(), ndarray.Span(-1, 2), ndarray.All(), ndarray.All()}, 1},
		{"grid span past end", []ndarray.Selector{ndarray.All(), ndarray.All(), ndarray.At(0), ndarray.Span(1, 4)}, 3},
		{"grid index after valid axes", []ndarray.Selector{ndarray.At(0), ndarray.At(0), ndarray.At(2), ndarray.At(0)}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var oob *ErrIndexOutOfRange
			_, err := arr.CopyRange(ctx, nil, tt.sels...)
			require.ErrorAs(t, err, &oob)
			assert.Equal(t, tt.axis, oob.Axis)

			sel, loaded := arr.Loaded()
			assert.True(t, loaded)
			assert.Equal(t, []int{1, 1}, sel)
			assert.Equal(t, before.Data(), arr.buf.Data())
		})
	}

	var shapeErr *ErrDestinationShape
	_, err = arr.CopyRange(ctx, ndarray.New[float64](3), ndarray.All(), ndarray.At(0), ndarray.At(0), ndarray.At(0))
	require.ErrorAs(t, err, &shapeErr)

	sel, loaded := arr.Loaded()
	assert.True(t, loaded)
	assert.Equal(t, []int{1, 1}, sel)
	assert.Equal(t, before.Data(), arr.buf.Data())
	assert.Equal(t, 1, calls)
}

func TestCopyRange_EmptySpan(t *testing.T) {
	chunks, grid := testutil.Split(testutil.Iota(2, 3), 1)
	loader := testutil.NewSliceLoader(chunks)
	arr, err := New(grid, ndarray.New[float64](2), Loader[float64, int](loader))
	require.NoError(t, err)

	got, err := arr.CopyRange(context.Background(), nil, ndarray.All(), ndarray.Span(1, 1))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, []int(got.Shape()))
	assert.Equal(t, 0, loader.Total())
}

func TestReadAll(t *testing.T) {
	src := testutil.RandomDense(testutil.NewRNG(3), 2, 3, 4, 2)
	chunks, grid := testutil.Split(src, 2)
	arr, err := New(grid, ndarray.New[float32](2, 3), Loader[float32, int](testutil.NewSliceLoader(chunks)))
	require.NoError(t, err)

	all, err := arr.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, src.Shape(), all.Shape())
	assert.Equal(t, src.Data(), all.Data())
}
