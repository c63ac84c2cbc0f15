// Package chunkarray presents a collection of equally shaped chunk files as
// one lazily loaded N-dimensional array.
//
// An Array is built from two parts: a buffer whose shape is the shape of a
// single chunk, and a grid of chunk identifiers (usually file names). The
// virtual array has the buffer axes first and the grid axes last:
//
//	shape = buffer shape ++ grid shape
//
// Only one chunk is resident at a time. Reading an element whose chunk is
// already in the buffer costs no I/O; otherwise the Loader is called to
// overwrite the buffer with the requested chunk.
//
// # Quick Start
//
// From a filename pattern, each '*' matching a run of digits:
//
//	buf := ndarray.New[float32](512, 512)
//	arr, _ := chunkarray.Open(ctx, "/data/scan/slice_*_t*.chnk", buf, loader)
//	v, _ := arr.At(ctx, 10, 20, 3, 0)
//
// From an explicit grid:
//
//	grid := ndarray.New[int](4)
//	arr, _ := chunkarray.New(grid, buf, chunkarray.LoaderFunc[float32, int](load))
//
// # Bulk Reads
//
// CopyRange copies a rectangular selection, visiting grid cells in row-major
// order and loading each distinct chunk once:
//
//	plane, _ := arr.CopyRange(ctx, nil,
//	    ndarray.All(), ndarray.All(), ndarray.At(3), ndarray.Span(0, 2))
//
// Index selectors drop their axis from the result.
//
// # Storage
//
// The array itself performs no I/O. Package chunkio provides a binary chunk
// format and a Loader over any blobstore.BlobStore (local files, memory, S3,
// MinIO). Package manifest records dataset layout so chunkio.OpenManifest can
// rebuild an array without listing files.
//
// # Concurrency
//
// An Array is not safe for concurrent use: every access may overwrite the
// shared buffer. Use one Array per goroutine.
package chunkarray
