package chunkio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/chunkarray"
	"github.com/hupe1980/chunkarray/blobstore"
	"github.com/hupe1980/chunkarray/ndarray"
	"github.com/hupe1980/chunkarray/resource"
)

var _ chunkarray.Loader[float32, string] = (*BlobLoader[float32])(nil)

type loaderOptions struct {
	rc *resource.Controller
}

// LoaderOption configures a BlobLoader.
type LoaderOption func(*loaderOptions)

// WithResourceController throttles chunk reads through rc's IO budget.
func WithResourceController(rc *resource.Controller) LoaderOption {
	return func(o *loaderOptions) {
		o.rc = rc
	}
}

// BlobLoader loads chunk files from a blob store into array buffers.
// The array's file identifiers are blob names.
type BlobLoader[T Numeric] struct {
	store blobstore.BlobStore
	rc    *resource.Controller
}

// NewBlobLoader creates a loader reading from store.
func NewBlobLoader[T Numeric](store blobstore.BlobStore, optFns ...LoaderOption) *BlobLoader[T] {
	var o loaderOptions
	for _, fn := range optFns {
		fn(&o)
	}
	return &BlobLoader[T]{store: store, rc: o.rc}
}

// Load reads the chunk file name and decodes it into buf.
func (l *BlobLoader[T]) Load(ctx context.Context, buf *ndarray.Dense[T], name string) error {
	blob, err := l.store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("open chunk %s: %w", name, err)
	}
	defer blob.Close()

	if err := l.rc.AcquireIO(ctx, blob.Size()); err != nil {
		return err
	}

	data, err := readBlob(ctx, blob)
	if err != nil {
		return fmt.Errorf("read chunk %s: %w", name, err)
	}
	if err := Decode(data, buf); err != nil {
		return fmt.Errorf("decode chunk %s: %w", name, err)
	}
	return nil
}

// readBlob returns the blob content, without copying when the blob is mapped.
// The result is only valid until the blob is closed.
func readBlob(ctx context.Context, blob blobstore.Blob) ([]byte, error) {
	if m, ok := blob.(blobstore.Mappable); ok {
		return m.Bytes()
	}

	data := make([]byte, blob.Size())
	n, err := blob.ReadAt(ctx, data, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if n != len(data) {
		return nil, io.ErrUnexpectedEOF
	}
	return data, nil
}
