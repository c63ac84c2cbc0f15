package ndarray

import (
	"fmt"
	"strconv"
	"strings"
)

type selectorKind uint8

const (
	selectAll selectorKind = iota
	selectIndex
	selectSpan
)

// Selector picks indices on one axis for a range copy.
//
// An index selector (At) collapses its axis: the axis contributes no
// dimension to the output. Span and All keep the axis.
type Selector struct {
	kind  selectorKind
	start int
	stop  int
}

// At selects the single index i and squeezes the axis out of the result.
func At(i int) Selector { return Selector{kind: selectIndex, start: i, stop: i + 1} }

// Span selects the half-open range [start, stop).
func Span(start, stop int) Selector { return Selector{kind: selectSpan, start: start, stop: stop} }

// All selects the whole axis.
func All() Selector { return Selector{kind: selectAll} }

// AllOf returns n All selectors.
func AllOf(n int) []Selector {
	sels := make([]Selector, n)
	for i := range sels {
		sels[i] = All()
	}
	return sels
}

// Collapsed reports whether the selector removes its axis from the output.
func (s Selector) Collapsed() bool { return s.kind == selectIndex }

// Resolve validates the selector against an axis of length n and returns the
// first index, the number of selected indices and whether the axis collapses.
func (s Selector) Resolve(n int) (start, count int, collapsed bool, err error) {
	switch s.kind {
	case selectAll:
		return 0, n, false, nil
	case selectIndex:
		if s.start < 0 || s.start >= n {
			return 0, 0, true, &IndexError{Index: s.start, Len: n}
		}
		return s.start, 1, true, nil
	default:
		if s.start < 0 || s.start > n {
			return 0, 0, false, &IndexError{Index: s.start, Len: n}
		}
		if s.stop < s.start || s.stop > n {
			return 0, 0, false, &IndexError{Index: s.stop, Len: n}
		}
		return s.start, s.stop - s.start, false, nil
	}
}

func (s Selector) String() string {
	switch s.kind {
	case selectAll:
		return ":"
	case selectIndex:
		return strconv.Itoa(s.start)
	default:
		return fmt.Sprintf("%d:%d", s.start, s.stop)
	}
}

// ParseSelector parses "i", "a:b" or ":" into a Selector.
func ParseSelector(text string) (Selector, error) {
	text = strings.TrimSpace(text)
	if text == ":" {
		return All(), nil
	}
	lo, hi, isSpan := strings.Cut(text, ":")
	if !isSpan {
		i, err := strconv.Atoi(lo)
		if err != nil {
			return Selector{}, fmt.Errorf("ndarray: invalid selector %q: %w", text, err)
		}
		return At(i), nil
	}
	start, err := strconv.Atoi(lo)
	if err != nil {
		return Selector{}, fmt.Errorf("ndarray: invalid selector start %q: %w", text, err)
	}
	stop, err := strconv.Atoi(hi)
	if err != nil {
		return Selector{}, fmt.Errorf("ndarray: invalid selector stop %q: %w", text, err)
	}
	return Span(start, stop), nil
}
