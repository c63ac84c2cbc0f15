package ndarray

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Shape is the size of each axis, e.g. [2, 3, 4].
// A zero-length Shape describes a 0-d (scalar) array holding one element.
type Shape []int

// NumElements returns the product of the axis sizes.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		if d <= 0 {
			return 0
		}
		n *= d
	}
	return n
}

// Strides returns row-major strides in elements.
// strides[last] = 1; strides[i] = strides[i+1] * shape[i+1].
func (s Shape) Strides() []int {
	if len(s) == 0 {
		return nil
	}
	strides := make([]int, len(s))
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Equal reports whether both shapes have the same axes.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of s.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s Shape) validate() error {
	for axis, d := range s {
		if d < 0 {
			return fmt.Errorf("ndarray: negative size %d on axis %d", d, axis)
		}
	}
	return nil
}

// Range is a half-open interval [Start, Stop) of valid indices on one axis.
type Range struct {
	Start int
	Stop  int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.Stop - r.Start }

// Contains reports whether i lies in the range.
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.Stop }
