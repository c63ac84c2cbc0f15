package filename

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/hupe1980/chunkarray/ndarray"
)

var (
	// ErrNoFilesMatched is returned when a pattern matches no entry.
	ErrNoFilesMatched = errors.New("filename: no files matched")
	// ErrNonNumericCapture is returned when a capture group of a matching
	// name is not a base-10 integer.
	ErrNonNumericCapture = errors.New("filename: capture is not numeric")
)

type config struct {
	lister Lister
	logger *slog.Logger
}

// Option configures Select.
type Option func(*config)

// WithLister sets the directory lister. The default lists the local
// filesystem.
func WithLister(l Lister) Option {
	return func(c *config) {
		c.lister = l
	}
}

// WithLogger sets the logger used for the non-grid warning.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// match is one matching entry with its parsed captures.
type match struct {
	name string
	keys []int64
}

// Select lists p.Dir and returns the matching names (joined with p.Dir),
// ordered by their numeric captures and reshaped into a grid when possible.
func Select(ctx context.Context, p *Pattern, optFns ...Option) (*ndarray.Dense[string], error) {
	c := config{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&c)
		}
	}
	if c.lister == nil {
		c.lister = newLocalLister()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	entries, err := c.lister.List(ctx, p.Dir)
	if err != nil {
		return nil, err
	}

	matches, err := p.matchAll(entries)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: pattern %q in %q", ErrNoFilesMatched, p.source, p.Dir)
	}

	k := p.NumCaptures()
	if k > 1 {
		if grid, ok := reshape(p, matches, k); ok {
			return grid, nil
		}
		c.logger.WarnContext(ctx, "matches do not form a complete grid, returning a flat list",
			"pattern", p.source,
			"dir", p.Dir,
			"matches", len(matches),
		)
	}

	sortMatches(matches)
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = p.join(m.name)
	}
	return ndarray.FromSlice(names, len(names))
}

// SelectPattern compiles pattern and selects it.
func SelectPattern(ctx context.Context, pattern string, optFns ...Option) (*ndarray.Dense[string], error) {
	p, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	return Select(ctx, p, optFns...)
}

func (p *Pattern) matchAll(entries []string) ([]match, error) {
	var matches []match
	for _, name := range entries {
		sub := p.Regexp.FindStringSubmatch(name)
		if sub == nil || sub[0] != name {
			continue
		}
		keys := make([]int64, len(sub)-1)
		for i, s := range sub[1:] {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q in %q: %w", ErrNonNumericCapture, s, name, err)
			}
			keys[i] = v
		}
		matches = append(matches, match{name: name, keys: keys})
	}
	return matches, nil
}

// sortMatches orders by the capture tuple read from the last capture to the
// first, which is the row-major order of the reshaped grid. Ties fall back to
// the name.
func sortMatches(matches []match) {
	slices.SortFunc(matches, func(a, b match) int {
		for i := len(a.keys) - 1; i >= 0; i-- {
			if c := cmp.Compare(a.keys[i], b.keys[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.name, b.name)
	})
}

// reshape places every match in a grid whose axis j enumerates the distinct
// values of capture k-1-j. It fails unless the matches cover every cell of
// the cross product exactly once.
func reshape(p *Pattern, matches []match, k int) (*ndarray.Dense[string], bool) {
	positions := make([]map[int64]int, k)
	shape := make([]int, k)
	for c := 0; c < k; c++ {
		values := make([]int64, 0, len(matches))
		for _, m := range matches {
			values = append(values, m.keys[c])
		}
		slices.Sort(values)
		values = slices.Compact(values)

		pos := make(map[int64]int, len(values))
		for i, v := range values {
			pos[v] = i
		}
		positions[c] = pos
		shape[k-1-c] = len(values)
	}

	if ndarray.Shape(shape).NumElements() != len(matches) {
		return nil, false
	}

	grid := ndarray.New[string](shape...)
	filled := make([]bool, grid.Len())
	idx := make([]int, k)
	for _, m := range matches {
		for c := 0; c < k; c++ {
			idx[k-1-c] = positions[c][m.keys[c]]
		}
		off := grid.Offset(idx...)
		if filled[off] {
			return nil, false
		}
		filled[off] = true
		grid.Data()[off] = p.join(m.name)
	}
	return grid, true
}
