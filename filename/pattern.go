package filename

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrInvalidPattern is returned for patterns that cannot be compiled.
var ErrInvalidPattern = errors.New("filename: invalid pattern")

// Pattern is a compiled filename pattern: a directory to list and an
// anchored regular expression that base names must match.
type Pattern struct {
	Dir    string
	Regexp *regexp.Regexp
	// source is the user-facing pattern text, used in error messages.
	source string
}

// Compile turns a glob-like pattern into a Pattern. Each "*" becomes a
// "(\d+)" capture group; everything else matches literally. A directory part
// (absolute or relative) is split off and becomes Pattern.Dir.
func Compile(pattern string) (*Pattern, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	dir, base := filepath.Split(pattern)
	if base == "" {
		return nil, fmt.Errorf("%w: %q has no file part", ErrInvalidPattern, pattern)
	}
	if strings.Contains(dir, "*") {
		return nil, fmt.Errorf("%w: wildcards are only allowed in the file part of %q", ErrInvalidPattern, pattern)
	}

	parts := strings.Split(base, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile("^" + strings.Join(parts, `(\d+)`) + "$")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	return &Pattern{Dir: cleanDir(dir), Regexp: re, source: pattern}, nil
}

// FromRegexp wraps a precompiled expression. Its capture groups must match
// base-10 integers. The expression is matched against whole base names, so
// callers usually anchor it.
func FromRegexp(dir string, re *regexp.Regexp) (*Pattern, error) {
	if re == nil {
		return nil, fmt.Errorf("%w: nil regexp", ErrInvalidPattern)
	}
	return &Pattern{Dir: cleanDir(dir), Regexp: re, source: re.String()}, nil
}

// NumCaptures returns the number of capture groups.
func (p *Pattern) NumCaptures() int { return p.Regexp.NumSubexp() }

// String returns the pattern text.
func (p *Pattern) String() string { return p.source }

// join returns the name as seen from outside the directory.
func (p *Pattern) join(name string) string {
	if p.Dir == "" {
		return name
	}
	return path.Join(p.Dir, name)
}

func cleanDir(dir string) string {
	if dir == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(dir))
}
