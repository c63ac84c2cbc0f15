package chunkio

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/chunkarray"
	"github.com/hupe1980/chunkarray/blobstore"
	"github.com/hupe1980/chunkarray/manifest"
	"github.com/hupe1980/chunkarray/ndarray"
)

type openOptions struct {
	loaderOpts []LoaderOption
	arrayOpts  []chunkarray.Option
}

// OpenOption configures OpenManifest.
type OpenOption func(*openOptions)

// WithLoaderOptions forwards options to the BlobLoader.
func WithLoaderOptions(opts ...LoaderOption) OpenOption {
	return func(o *openOptions) {
		o.loaderOpts = append(o.loaderOpts, opts...)
	}
}

// WithArrayOptions forwards options to chunkarray.New.
func WithArrayOptions(opts ...chunkarray.Option) OpenOption {
	return func(o *openOptions) {
		o.arrayOpts = append(o.arrayOpts, opts...)
	}
}

// OpenManifest loads the current manifest of ms and returns a lazily loaded
// array over its chunk files.
func OpenManifest[T Numeric](ctx context.Context, ms *manifest.Store, optFns ...OpenOption) (*chunkarray.Array[T, string], *manifest.Manifest, error) {
	var o openOptions
	for _, fn := range optFns {
		fn(&o)
	}

	m, err := ms.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	dt, err := ParseDType(m.DType)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", manifest.ErrInvalidManifest, err)
	}
	if want := DTypeOf[T](); dt != want {
		return nil, nil, &ErrDTypeMismatch{Expected: want, Actual: dt}
	}

	names := make([]string, len(m.Files))
	for i, f := range m.Files {
		names[i] = ms.Path(f)
	}
	grid, err := ndarray.FromSlice(names, m.GridShape...)
	if err != nil {
		return nil, nil, err
	}

	buf := ndarray.New[T](m.ChunkShape...)
	loader := NewBlobLoader[T](ms.Blobs(), o.loaderOpts...)

	arr, err := chunkarray.New(grid, buf, chunkarray.Loader[T, string](loader), o.arrayOpts...)
	if err != nil {
		return nil, nil, err
	}
	return arr, m, nil
}

// PackOptions controls Pack.
type PackOptions struct {
	// Compression applied to every chunk file.
	Compression Compression
	// Prefix of chunk file names. Default "chunk".
	Prefix string
	// Attrs are copied into the manifest.
	Attrs map[string]string
}

// Pack splits src into chunk files and saves a manifest describing them.
// The leading bufDims axes of src form the chunk shape; the remaining axes
// form the grid, so the packed array has the same shape and content as src.
//
// Chunk files are named <prefix>_<g[k-1]>_..._<g[0]>.chnk (last grid axis
// first) so that the pattern "<prefix>_*_..._*.chnk" resolves to the same grid
// through filename.Select.
func Pack[T Numeric](ctx context.Context, ms *manifest.Store, src *ndarray.Dense[T], bufDims int, opts PackOptions) (*manifest.Manifest, error) {
	shape := src.Shape()
	if bufDims < 0 || bufDims > len(shape) {
		return nil, fmt.Errorf("chunkio: buffer dims %d out of range for shape %v", bufDims, shape)
	}
	if opts.Prefix == "" {
		opts.Prefix = "chunk"
	}

	chunkShape := ndarray.Shape(shape[:bufDims])
	gridShape := ndarray.Shape(shape[bufDims:])

	m := &manifest.Manifest{
		Version:     manifest.CurrentVersion,
		DType:       DTypeOf[T]().String(),
		Compression: opts.Compression.String(),
		ChunkShape:  chunkShape.Clone(),
		GridShape:   gridShape.Clone(),
		Attrs:       opts.Attrs,
	}
	// Continue the version sequence of an existing dataset.
	switch prev, err := ms.Load(ctx); {
	case err == nil:
		m.ID = prev.ID
	case !errors.Is(err, blobstore.ErrNotFound):
		return nil, err
	}

	var coords [][]int
	forEachIndex(gridShape, func(g []int) {
		coords = append(coords, slices.Clone(g))
		m.Files = append(m.Files, chunkName(opts.Prefix, g))
	})
	if err := m.Validate(); err != nil {
		return nil, err
	}

	chunk := ndarray.New[T](chunkShape...)
	data := chunk.Data()
	srcData := src.Data()
	srcStrides := src.Strides()
	bufIdx := make([]int, bufDims)

	for i, g := range coords {
		base := 0
		for j, v := range g {
			base += v * srcStrides[bufDims+j]
		}

		clear(bufIdx)
		for k := range data {
			off := base
			for a, v := range bufIdx {
				off += v * srcStrides[a]
			}
			data[k] = srcData[off]
			increment(bufIdx, chunkShape)
		}

		if err := WriteChunk(ctx, ms.Blobs(), ms.Path(m.Files[i]), chunk, opts.Compression); err != nil {
			return nil, err
		}
	}

	if err := ms.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func chunkName(prefix string, g []int) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	for j := len(g) - 1; j >= 0; j-- {
		sb.WriteByte('_')
		sb.WriteString(strconv.Itoa(g[j]))
	}
	sb.WriteString(".chnk")
	return sb.String()
}

// forEachIndex calls fn for every index of shape in row-major order.
// A 0-d shape yields a single empty index. fn must not retain idx.
func forEachIndex(shape ndarray.Shape, fn func(idx []int)) {
	idx := make([]int, len(shape))
	for range shape.NumElements() {
		fn(idx)
		increment(idx, shape)
	}
}

// increment advances idx to the next row-major position (last axis fastest).
func increment(idx []int, shape []int) {
	for a := len(idx) - 1; a >= 0; a-- {
		idx[a]++
		if idx[a] < shape[a] {
			return
		}
		idx[a] = 0
	}
}
