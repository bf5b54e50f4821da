package graph

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludePatterns cover dependency and build output directories.
var DefaultExcludePatterns = []string{"node_modules", "dist", "build", ".git"}

// excludeMatcher decides whether a discovered path is skipped.
//
// Plain patterns are substrings of the path ("dist" also skips
// "src/distance.ts"). Patterns containing glob metacharacters are matched
// with doublestar against both the entry name and the full path, so
// "*.test.*" skips "src/a.test.ts" and "src/**/fixtures" skips that subtree.
type excludeMatcher struct {
	substrings []string
	globs      []string
}

func newExcludeMatcher(patterns []string) (*excludeMatcher, error) {
	m := &excludeMatcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.ContainsAny(p, "*?[{") {
			m.substrings = append(m.substrings, p)
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
		m.globs = append(m.globs, p)
	}
	return m, nil
}

func (m *excludeMatcher) excluded(path string) bool {
	for _, s := range m.substrings {
		if strings.Contains(path, s) {
			return true
		}
	}
	if len(m.globs) == 0 {
		return false
	}
	name := FileName(path)
	for _, g := range m.globs {
		if ok, _ := doublestar.Match(g, name); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, path); ok {
			return true
		}
	}
	return false
}
