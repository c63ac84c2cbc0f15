// Package cache provides the byte-block cache behind blobstore.CachingStore.
//
// Chunk files are immutable once written, so cached blocks never go stale
// unless a blob is overwritten through the caching store, which invalidates
// that blob's blocks.
package cache
