// Package testutil provides testing utilities for chunkarray.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	a := testutil.RandomDense(rng, 4, 5, 2, 3)  // uniform [0, 1)
//
// # Counting Loaders
//
//	loader := testutil.NewSliceLoader(chunks)
//	...
//	loader.Calls()  // how often each chunk was loaded
package testutil
