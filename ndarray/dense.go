package ndarray

import (
	"fmt"
	"slices"
)

// IndexError reports an index outside [0, Len) on one axis.
type IndexError struct {
	Axis  int
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d) on axis %d", e.Index, e.Len, e.Axis)
}

// Dense is a row-major N-dimensional array backed by a flat slice.
//
// Dense is not safe for concurrent mutation.
type Dense[T any] struct {
	shape   Shape
	strides []int
	data    []T
}

// New allocates a zero-valued Dense with the given shape.
// It panics if any axis size is negative.
func New[T any](shape ...int) *Dense[T] {
	s := Shape(shape).Clone()
	if err := s.validate(); err != nil {
		panic(err)
	}
	return &Dense[T]{
		shape:   s,
		strides: s.Strides(),
		data:    make([]T, s.NumElements()),
	}
}

// FromSlice wraps data (without copying) as a Dense of the given shape.
func FromSlice[T any](data []T, shape ...int) (*Dense[T], error) {
	s := Shape(shape).Clone()
	if err := s.validate(); err != nil {
		return nil, err
	}
	if len(data) != s.NumElements() {
		return nil, fmt.Errorf("ndarray: %d elements do not fit shape %s", len(data), s)
	}
	return &Dense[T]{shape: s, strides: s.Strides(), data: data}, nil
}

// Shape returns a copy of the array's shape.
func (d *Dense[T]) Shape() Shape { return d.shape.Clone() }

// NDims returns the number of axes.
func (d *Dense[T]) NDims() int { return len(d.shape) }

// Len returns the total number of elements.
func (d *Dense[T]) Len() int { return len(d.data) }

// Strides returns the row-major strides in elements.
func (d *Dense[T]) Strides() []int { return slices.Clone(d.strides) }

// Data returns the backing slice. Writes through it are visible in d.
func (d *Dense[T]) Data() []T { return d.data }

// CheckIndex validates idx against the shape without panicking.
func (d *Dense[T]) CheckIndex(idx ...int) error {
	if len(idx) != len(d.shape) {
		return fmt.Errorf("ndarray: got %d indices for %d axes", len(idx), len(d.shape))
	}
	for axis, i := range idx {
		if i < 0 || i >= d.shape[axis] {
			return &IndexError{Axis: axis, Index: i, Len: d.shape[axis]}
		}
	}
	return nil
}

// Offset returns the flat position of idx. It panics on invalid indices.
func (d *Dense[T]) Offset(idx ...int) int {
	if err := d.CheckIndex(idx...); err != nil {
		panic(err)
	}
	off := 0
	for axis, i := range idx {
		off += i * d.strides[axis]
	}
	return off
}

// At returns the element at idx. It panics on invalid indices.
func (d *Dense[T]) At(idx ...int) T {
	return d.data[d.Offset(idx...)]
}

// Set stores v at idx. It panics on invalid indices.
func (d *Dense[T]) Set(v T, idx ...int) {
	d.data[d.Offset(idx...)] = v
}

// Fill sets every element to v.
func (d *Dense[T]) Fill(v T) {
	for i := range d.data {
		d.data[i] = v
	}
}

// Reshape returns a Dense sharing d's data with a new shape of equal size.
func (d *Dense[T]) Reshape(shape ...int) (*Dense[T], error) {
	return FromSlice(d.data, shape...)
}

// Clone returns a deep copy.
func (d *Dense[T]) Clone() *Dense[T] {
	return &Dense[T]{
		shape:   d.shape.Clone(),
		strides: slices.Clone(d.strides),
		data:    slices.Clone(d.data),
	}
}

func (d *Dense[T]) String() string {
	return fmt.Sprintf("Dense%s%v", d.shape, d.data)
}
