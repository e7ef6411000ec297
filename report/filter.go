package report

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Filter removes ignored paths from a Change.
type Filter struct {
	patterns []glob.Glob
}

// NewFilter compiles patterns. A pattern without a slash matches the file
// name in any directory, other patterns must match the full path. "**"
// matches across directories.
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if !strings.Contains(pattern, "/") {
			pattern = "**/" + pattern
		}

		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}

		f.patterns = append(f.patterns, g)
	}

	return f, nil
}

// Ignored reports whether filename matches one of the patterns.
func (f *Filter) Ignored(filename string) bool {
	for _, g := range f.patterns {
		if g.Match(filename) {
			return true
		}
	}

	return false
}

func (f *Filter) keep(files []string) []string {
	var res []string

	for _, file := range files {
		if !f.Ignored(file) {
			res = append(res, file)
		}
	}

	return res
}

// Apply returns c without the ignored files.
func (f *Filter) Apply(c Change) Change {
	if f == nil || len(f.patterns) == 0 {
		return c
	}

	return Change{
		Modified: f.keep(c.Modified),
		Deleted:  f.keep(c.Deleted),
	}
}
