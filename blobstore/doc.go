// Package blobstore provides the storage abstraction chunk files are read from.
//
// BlobStore is the interface for reading and writing immutable chunk blobs and
// manifests. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with mmap support
//   - MemoryStore: In-memory store for tests and small datasets
//   - CachingStore: Block cache in front of any other store
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that live in addressable memory may also implement Mappable so that
// readers can decode them without copying.
package blobstore
