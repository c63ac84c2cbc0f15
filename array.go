package chunkarray

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/hupe1980/chunkarray/ndarray"
)

// Loader fills buf with the chunk identified by id.
//
// buf already has the chunk shape; Load must overwrite it in place. Errors are
// returned to the caller of the array operation unchanged.
type Loader[T any, ID any] interface {
	Load(ctx context.Context, buf *ndarray.Dense[T], id ID) error
}

// LoaderFunc adapts an ordinary function to the Loader interface.
type LoaderFunc[T any, ID any] func(ctx context.Context, buf *ndarray.Dense[T], id ID) error

// Load implements Loader.
func (f LoaderFunc[T, ID]) Load(ctx context.Context, buf *ndarray.Dense[T], id ID) error {
	return f(ctx, buf, id)
}

// Array is a virtual N-dimensional array whose data lives in many chunk files.
//
// The leading axes range over the buffer shape and the trailing axes range
// over the file grid. Exactly one chunk is resident in the buffer at a time;
// it is reloaded only when an access addresses a different grid cell.
//
// Array is not safe for concurrent use. Use one instance per goroutine or
// guard it with a mutex.
type Array[T any, ID any] struct {
	grid   *ndarray.Dense[ID]
	buf    *ndarray.Dense[T]
	loader Loader[T, ID]

	bufShape  ndarray.Shape
	gridShape ndarray.Shape

	// current is meaningful only while loaded is true.
	current []int
	loaded  bool

	logger  *Logger
	metrics MetricsCollector
}

// New builds an Array over grid, using buf as the reusable chunk buffer and
// loader to fill it. The array owns buf from now on.
func New[T any, ID any](grid *ndarray.Dense[ID], buf *ndarray.Dense[T], loader Loader[T, ID], optFns ...Option) (*Array[T, ID], error) {
	if grid == nil {
		return nil, ErrNilGrid
	}
	if buf == nil {
		return nil, ErrNilBuffer
	}
	if loader == nil {
		return nil, ErrNilLoader
	}

	o := applyOptions(optFns)

	n1, n2 := buf.NDims(), grid.NDims()
	if o.ndims != 0 && o.ndims != n1+n2 {
		return nil, &ErrShapeMismatch{Expected: o.ndims, BufferDims: n1, GridDims: n2}
	}

	return &Array[T, ID]{
		grid:      grid,
		buf:       buf,
		loader:    loader,
		bufShape:  buf.Shape(),
		gridShape: grid.Shape(),
		current:   make([]int, n2),
		logger:    o.logger,
		metrics:   o.metricsCollector,
	}, nil
}

// Shape returns the buffer shape followed by the grid shape.
func (a *Array[T, ID]) Shape() []int {
	return slices.Concat(a.bufShape, a.gridShape)
}

// NDims returns the total number of axes.
func (a *Array[T, ID]) NDims() int { return len(a.bufShape) + len(a.gridShape) }

// BufferDims returns the number of leading axes served by the buffer.
func (a *Array[T, ID]) BufferDims() int { return len(a.bufShape) }

// GridDims returns the number of trailing axes served by the file grid.
func (a *Array[T, ID]) GridDims() int { return len(a.gridShape) }

// Len returns the total number of elements of the virtual array.
func (a *Array[T, ID]) Len() int {
	return a.bufShape.NumElements() * a.gridShape.NumElements()
}

// AxisRanges returns the valid index range of every axis.
func (a *Array[T, ID]) AxisRanges() []ndarray.Range {
	shape := a.Shape()
	ranges := make([]ndarray.Range, len(shape))
	for i, n := range shape {
		ranges[i] = ndarray.Range{Start: 0, Stop: n}
	}
	return ranges
}

// Grid returns the file grid.
func (a *Array[T, ID]) Grid() *ndarray.Dense[ID] { return a.grid }

// Loaded returns the grid coordinate of the resident chunk, if any.
func (a *Array[T, ID]) Loaded() ([]int, bool) {
	if !a.loaded {
		return nil, false
	}
	return slices.Clone(a.current), true
}

// At returns the element at idx, loading its chunk first if needed.
func (a *Array[T, ID]) At(ctx context.Context, idx ...int) (T, error) {
	var zero T
	if err := a.checkIndex(idx); err != nil {
		return zero, err
	}
	bufIdx, sel := a.splitIndex(idx)
	if err := a.ensureLoaded(ctx, sel); err != nil {
		return zero, err
	}
	return a.buf.At(bufIdx...), nil
}

// Chunk makes the chunk at grid coordinate sel resident and returns the
// buffer holding it. The returned array is only valid until the next access
// that addresses a different chunk.
func (a *Array[T, ID]) Chunk(ctx context.Context, sel ...int) (*ndarray.Dense[T], error) {
	if len(sel) != len(a.gridShape) {
		return nil, &ErrIndexCount{Expected: len(a.gridShape), Actual: len(sel)}
	}
	if err := a.grid.CheckIndex(sel...); err != nil {
		return nil, a.indexError(err, len(a.bufShape))
	}
	if err := a.ensureLoaded(ctx, sel); err != nil {
		return nil, err
	}
	return a.buf, nil
}

// splitIndex partitions a full index into its buffer and selector parts.
func (a *Array[T, ID]) splitIndex(idx []int) (bufIdx, sel []int) {
	n1 := len(a.bufShape)
	return idx[:n1:n1], idx[n1:]
}

func (a *Array[T, ID]) checkIndex(idx []int) error {
	if len(idx) != a.NDims() {
		return &ErrIndexCount{Expected: a.NDims(), Actual: len(idx)}
	}
	bufIdx, sel := a.splitIndex(idx)
	if err := a.buf.CheckIndex(bufIdx...); err != nil {
		return a.indexError(err, 0)
	}
	if err := a.grid.CheckIndex(sel...); err != nil {
		return a.indexError(err, len(a.bufShape))
	}
	return nil
}

// indexError converts an ndarray index error on a sub-shape into an
// ErrIndexOutOfRange on the full array.
func (a *Array[T, ID]) indexError(err error, axisOffset int) error {
	var ie *ndarray.IndexError
	if errors.As(err, &ie) {
		return &ErrIndexOutOfRange{Axis: ie.Axis + axisOffset, Index: ie.Index, Len: ie.Len, cause: err}
	}
	return err
}

// ensureLoaded makes the chunk at sel resident. The resident marker is only
// updated after the loader succeeds; a failed load leaves the array in the
// not-loaded state so the next access reloads.
func (a *Array[T, ID]) ensureLoaded(ctx context.Context, sel []int) error {
	if a.loaded && slices.Equal(a.current, sel) {
		a.metrics.RecordCacheHit()
		return nil
	}

	id := a.grid.At(sel...)
	a.loaded = false

	start := time.Now()
	err := a.loader.Load(ctx, a.buf, id)
	elapsed := time.Since(start)

	a.metrics.RecordLoad(a.grid.Offset(sel...), elapsed, err)
	a.logger.LogLoad(ctx, sel, id, elapsed, err)
	if err != nil {
		return err
	}

	copy(a.current, sel)
	a.loaded = true
	return nil
}
