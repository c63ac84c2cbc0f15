package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/chunkarray/ndarray"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// FillInts fills dst with random values in range [0, n).
func (r *RNG) FillInts(dst []int32, n int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Int31n(n)
	}
}

// RandomDense returns a float32 array of the given shape filled with uniform values.
func RandomDense(r *RNG, shape ...int) *ndarray.Dense[float32] {
	d := ndarray.New[float32](shape...)
	r.FillUniform(d.Data())
	return d
}

// Iota returns a float64 array whose element at flat offset i holds i.
func Iota(shape ...int) *ndarray.Dense[float64] {
	d := ndarray.New[float64](shape...)
	for i := range d.Data() {
		d.Data()[i] = float64(i)
	}
	return d
}

// SliceLoader serves chunks from memory and counts loads per chunk index.
// Chunk ids are indices into the chunk slice.
type SliceLoader[T any] struct {
	mu     sync.Mutex
	chunks []*ndarray.Dense[T]
	calls  map[int]int
	order  []int
	fail   map[int]error
}

// NewSliceLoader creates a loader over chunks.
func NewSliceLoader[T any](chunks []*ndarray.Dense[T]) *SliceLoader[T] {
	return &SliceLoader[T]{
		chunks: chunks,
		calls:  make(map[int]int),
		fail:   make(map[int]error),
	}
}

// Load copies chunk id into buf.
func (l *SliceLoader[T]) Load(_ context.Context, buf *ndarray.Dense[T], id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls[id]++
	l.order = append(l.order, id)
	if err, ok := l.fail[id]; ok {
		return err
	}
	if id < 0 || id >= len(l.chunks) {
		return fmt.Errorf("no chunk %d", id)
	}
	src := l.chunks[id]
	if !src.Shape().Equal(buf.Shape()) {
		return fmt.Errorf("chunk %d has shape %v, buffer %v", id, src.Shape(), buf.Shape())
	}
	copy(buf.Data(), src.Data())
	return nil
}

// FailOn makes loads of chunk id return err until cleared with a nil error.
func (l *SliceLoader[T]) FailOn(id int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.fail, id)
		return
	}
	l.fail[id] = err
}

// Calls returns the number of loads per chunk id.
func (l *SliceLoader[T]) Calls() map[int]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[int]int, len(l.calls))
	for k, v := range l.calls {
		out[k] = v
	}
	return out
}

// Total returns the total number of loads.
func (l *SliceLoader[T]) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}

// Order returns the chunk ids in load order.
func (l *SliceLoader[T]) Order() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.order...)
}

// Reset clears the call counters.
func (l *SliceLoader[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.calls)
	l.order = nil
}

// Split cuts a dense array whose trailing gridDims axes form a chunk grid into
// per-chunk buffers plus a grid of chunk ids in row-major order.
func Split[T any](src *ndarray.Dense[T], gridDims int) ([]*ndarray.Dense[T], *ndarray.Dense[int]) {
	shape := src.Shape()
	bufShape := shape[:len(shape)-gridDims]
	gridShape := shape[len(shape)-gridDims:]

	grid := ndarray.New[int](gridShape...)
	chunks := make([]*ndarray.Dense[T], grid.Len())

	idx := make([]int, len(shape))
	for c := range chunks {
		grid.Data()[c] = c
		chunk := ndarray.New[T](bufShape...)
		g := unravel(c, gridShape)
		b := make([]int, len(bufShape))
		for k := range chunk.Data() {
			copy(idx, b)
			copy(idx[len(bufShape):], g)
			chunk.Data()[k] = src.At(idx...)
			next(b, bufShape)
		}
		chunks[c] = chunk
	}
	return chunks, grid
}

func unravel(flat int, shape []int) []int {
	idx := make([]int, len(shape))
	for a := len(shape) - 1; a >= 0; a-- {
		idx[a] = flat % shape[a]
		flat /= shape[a]
	}
	return idx
}

func next(idx, shape []int) {
	for a := len(idx) - 1; a >= 0; a-- {
		idx[a]++
		if idx[a] < shape[a] {
			return
		}
		idx[a] = 0
	}
}
