package chunkarray

import (
	"context"
	"regexp"

	"github.com/hupe1980/chunkarray/filename"
	"github.com/hupe1980/chunkarray/ndarray"
)

// Open resolves pattern into a grid of file names (see filename.Compile and
// filename.Select) and builds an Array over it.
//
// Each '*' in the base name of pattern matches a run of digits. One capture
// yields a 1-d grid; several captures that form a complete cross product
// yield one grid axis per capture, last capture first.
func Open[T any](ctx context.Context, pattern string, buf *ndarray.Dense[T], loader Loader[T, string], optFns ...Option) (*Array[T, string], error) {
	p, err := filename.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return openPattern(ctx, p, buf, loader, optFns)
}

// OpenRegexp is like Open for a precompiled pattern over the entries of dir.
// Every capture group of re must match a decimal integer.
func OpenRegexp[T any](ctx context.Context, dir string, re *regexp.Regexp, buf *ndarray.Dense[T], loader Loader[T, string], optFns ...Option) (*Array[T, string], error) {
	p, err := filename.FromRegexp(dir, re)
	if err != nil {
		return nil, err
	}
	return openPattern(ctx, p, buf, loader, optFns)
}

func openPattern[T any](ctx context.Context, p *filename.Pattern, buf *ndarray.Dense[T], loader Loader[T, string], optFns []Option) (*Array[T, string], error) {
	o := applyOptions(optFns)

	var selectOpts []filename.Option
	if o.loggerSet {
		selectOpts = append(selectOpts, filename.WithLogger(o.logger.Logger))
	}
	selectOpts = append(selectOpts, o.selectOptions...)

	grid, err := filename.Select(ctx, p, selectOpts...)
	if err != nil {
		return nil, err
	}
	return New(grid, buf, loader, optFns...)
}
