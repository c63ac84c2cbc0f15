package chunkio

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat is returned for data that is not a valid chunk file.
var ErrInvalidFormat = errors.New("invalid chunk file")

// ErrDTypeMismatch is returned when the stored element type differs from the
// element type of the destination buffer.
type ErrDTypeMismatch struct {
	Expected DType
	Actual   DType
}

func (e *ErrDTypeMismatch) Error() string {
	return fmt.Sprintf("dtype mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// ErrChunkShape is returned when the stored chunk shape differs from the
// destination buffer shape.
type ErrChunkShape struct {
	Expected []int
	Actual   []int
}

func (e *ErrChunkShape) Error() string {
	return fmt.Sprintf("chunk shape mismatch: expected %v, got %v", e.Expected, e.Actual)
}
