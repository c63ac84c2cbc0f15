// Package chunkio reads and writes chunk files and provides ready-made
// loaders for chunkarray.Array.
//
// A chunk file holds one dense buffer:
//
//	magic "CHNK" | version u8 | dtype u8 | compression u8 | ndims u8 |
//	dims u32 x ndims | raw length u64 | payload length u64 | payload
//
// All integers are little-endian. The payload is the row-major element data
// in little-endian byte order, optionally compressed with LZ4 or ZSTD.
//
// Datasets are described by a manifest.Manifest; Pack writes one from a dense
// array and OpenManifest turns it back into a lazily loaded array.
package chunkio
