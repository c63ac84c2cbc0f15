// Package ndarray provides the small row-major containers used by chunkarray:
// a generic Dense N-dimensional array, its Shape, and per-axis Selectors.
//
// Dense is deliberately minimal. It is the buffer a loader fills, the grid of
// file identifiers an array selects from, and the destination of range copies.
// Indices are 0-based and the last axis varies fastest in memory.
package ndarray
