package chunkarray

import (
	"errors"
	"fmt"
)

var (
	// ErrNilGrid is returned when an array is built without a file grid.
	ErrNilGrid = errors.New("chunkarray: file grid is nil")
	// ErrNilBuffer is returned when an array is built without a buffer.
	ErrNilBuffer = errors.New("chunkarray: buffer is nil")
	// ErrNilLoader is returned when an array is built without a loader.
	ErrNilLoader = errors.New("chunkarray: loader is nil")
)

// ErrShapeMismatch indicates that the declared dimensionality of an array
// differs from buffer dims + grid dims.
type ErrShapeMismatch struct {
	Expected   int
	BufferDims int
	GridDims   int
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: expected %d dims, buffer has %d and grid has %d",
		e.Expected, e.BufferDims, e.GridDims)
}

// ErrIndexOutOfRange reports an index or selector outside [0, Len) on Axis.
//
// The underlying ndarray error (if any) can be accessed via errors.Unwrap.
type ErrIndexOutOfRange struct {
	Axis  int
	Index int
	Len   int
	cause error
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d) on axis %d", e.Index, e.Len, e.Axis)
}

func (e *ErrIndexOutOfRange) Unwrap() error { return e.cause }

// ErrIndexCount indicates that an access supplied the wrong number of indices
// or selectors.
type ErrIndexCount struct {
	Expected int
	Actual   int
}

func (e *ErrIndexCount) Error() string {
	return fmt.Sprintf("index count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrDestinationShape indicates that a range copy destination does not have
// the shape of the selection.
type ErrDestinationShape struct {
	Expected []int
	Actual   []int
}

func (e *ErrDestinationShape) Error() string {
	return fmt.Sprintf("destination shape mismatch: expected %v, got %v", e.Expected, e.Actual)
}
