package chunkarray

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/chunkarray/ndarray"
)

// axisSel is a resolved selector on one axis.
type axisSel struct {
	start     int
	count     int
	collapsed bool
	// dstStride is the destination stride of the output axis this axis maps
	// to; zero for collapsed axes.
	dstStride int
}

// CopyRange copies the rectangular selection sels into dst and returns dst.
//
// sels holds one selector per axis. Index selectors (ndarray.At) squeeze
// their axis out of the result, so dst must have the shape formed by the
// counts of the remaining selectors, buffer axes first. If dst is nil a new
// array of that shape is allocated.
//
// The grid part of the selection is visited in row-major order. Each visited
// chunk is loaded at most once and then copied into the destination as a
// whole block, so the loader runs once per distinct grid cell rather than once
// per element. A loader error aborts the copy and is returned unchanged; dst
// may then be partially written.
func (a *Array[T, ID]) CopyRange(ctx context.Context, dst *ndarray.Dense[T], sels ...ndarray.Selector) (*ndarray.Dense[T], error) {
	start := time.Now()

	axes, outShape, err := a.resolve(sels)
	if err != nil {
		return nil, err
	}

	if dst == nil {
		dst = ndarray.New[T](outShape...)
	} else if !dst.Shape().Equal(outShape) {
		return nil, &ErrDestinationShape{Expected: outShape, Actual: dst.Shape()}
	}

	// Map non-collapsed axes onto destination strides; buffer axes form the
	// prefix of the output, grid axes the suffix.
	dstStrides := outShape.Strides()
	out := 0
	for i := range axes {
		if axes[i].collapsed {
			continue
		}
		axes[i].dstStride = dstStrides[out]
		out++
	}

	bufAxes, gridAxes := axes[:len(a.bufShape)], axes[len(a.bufShape):]

	chunks, err := a.copyChunks(ctx, dst, bufAxes, gridAxes)
	elapsed := time.Since(start)

	a.metrics.RecordCopyRange(chunks, dst.Len(), elapsed, err)
	a.logger.LogCopyRange(ctx, chunks, dst.Len(), err)
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// ReadAll materializes the whole virtual array. Chunks are loaded in
// row-major grid order, each exactly once (or not at all if resident).
func (a *Array[T, ID]) ReadAll(ctx context.Context) (*ndarray.Dense[T], error) {
	return a.CopyRange(ctx, nil, ndarray.AllOf(a.NDims())...)
}

// resolve validates every selector and computes the squeezed output shape.
// Nothing is loaded or mutated.
func (a *Array[T, ID]) resolve(sels []ndarray.Selector) ([]axisSel, ndarray.Shape, error) {
	shape := a.Shape()
	if len(sels) != len(shape) {
		return nil, nil, &ErrIndexCount{Expected: len(shape), Actual: len(sels)}
	}

	axes := make([]axisSel, len(sels))
	outShape := make(ndarray.Shape, 0, len(sels))
	for axis, sel := range sels {
		start, count, collapsed, err := sel.Resolve(shape[axis])
		if err != nil {
			var ie *ndarray.IndexError
			if errors.As(err, &ie) {
				return nil, nil, &ErrIndexOutOfRange{Axis: axis, Index: ie.Index, Len: ie.Len, cause: err}
			}
			return nil, nil, err
		}
		axes[axis] = axisSel{start: start, count: count, collapsed: collapsed}
		if !collapsed {
			outShape = append(outShape, count)
		}
	}
	return axes, outShape, nil
}

// copyChunks walks the grid sub-range like an odometer, last axis fastest,
// and copies one buffer block per coordinate. It returns the number of grid
// coordinates visited.
func (a *Array[T, ID]) copyChunks(ctx context.Context, dst *ndarray.Dense[T], bufAxes, gridAxes []axisSel) (int, error) {
	for _, ax := range append(bufAxes[:len(bufAxes):len(bufAxes)], gridAxes...) {
		if ax.count == 0 {
			return 0, nil
		}
	}

	sel := make([]int, len(gridAxes))
	for i, ax := range gridAxes {
		sel[i] = ax.start
	}

	srcStrides := a.buf.Strides()
	visited := 0
	for {
		if err := a.ensureLoaded(ctx, sel); err != nil {
			return visited, err
		}
		visited++

		dstOff := 0
		for i, ax := range gridAxes {
			dstOff += (sel[i] - ax.start) * ax.dstStride
		}
		copyBlock(a.buf.Data(), dst.Data(), srcStrides, bufAxes, 0, dstOff, 0)

		// Advance the odometer.
		axis := len(sel) - 1
		for ; axis >= 0; axis-- {
			sel[axis]++
			if sel[axis] < gridAxes[axis].start+gridAxes[axis].count {
				break
			}
			sel[axis] = gridAxes[axis].start
		}
		if axis < 0 {
			return visited, nil
		}
	}
}

// copyBlock recursively copies the buffer sub-range described by axes into
// dst. The innermost axis is copied as one run when both sides are
// contiguous.
func copyBlock[T any](src, dst []T, srcStrides []int, axes []axisSel, srcOff, dstOff, dim int) {
	if dim == len(axes) {
		dst[dstOff] = src[srcOff]
		return
	}

	ax := axes[dim]
	srcOff += ax.start * srcStrides[dim]

	if dim == len(axes)-1 {
		// srcStrides of the last buffer axis is always 1.
		if ax.count == 1 || ax.dstStride == 1 {
			copy(dst[dstOff:dstOff+ax.count], src[srcOff:srcOff+ax.count])
			return
		}
		for i := 0; i < ax.count; i++ {
			dst[dstOff+i*ax.dstStride] = src[srcOff+i]
		}
		return
	}

	for i := 0; i < ax.count; i++ {
		copyBlock(src, dst, srcStrides, axes, srcOff+i*srcStrides[dim], dstOff+i*ax.dstStride, dim+1)
	}
}
