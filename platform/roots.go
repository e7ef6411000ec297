package platform

import (
	"path/filepath"
	"strings"
)

// root is a watched path in the form it was configured together with the
// forms the backends may report it in.
type root struct {
	given    string
	prefixes []string
}

type roots []root

// resolveRoots computes the absolute and symlink-free forms of paths. Native
// APIs report absolute, resolved paths (e.g. /private/tmp on macOS).
func resolveRoots(paths []string) roots {
	rs := make(roots, 0, len(paths))

	for _, p := range paths {
		r := root{given: p, prefixes: []string{filepath.Clean(p)}}

		abs, err := filepath.Abs(p)
		if err == nil {
			r.prefixes = append(r.prefixes, abs)

			real, err := filepath.EvalSymlinks(abs)
			if err == nil && real != abs {
				r.prefixes = append(r.prefixes, real)
			}
		}

		rs = append(rs, r)
	}

	return rs
}

// paths returns the roots in the form they were configured.
func (rs roots) paths() []string {
	paths := make([]string, 0, len(rs))
	for _, r := range rs {
		paths = append(paths, r.given)
	}

	return paths
}

// absolute returns the absolute form of each root.
func (rs roots) absolute() []string {
	paths := make([]string, 0, len(rs))
	for _, r := range rs {
		paths = append(paths, r.prefixes[len(r.prefixes)-1])
	}

	return paths
}

// translate expresses p relative to the configured root it belongs to. Paths
// outside all roots are returned unchanged.
func (rs roots) translate(p string) (string, bool) {
	for _, r := range rs {
		for _, prefix := range r.prefixes {
			if p == prefix {
				return r.given, true
			}

			sep := prefix + string(filepath.Separator)
			if prefix == string(filepath.Separator) {
				sep = prefix
			}

			if strings.HasPrefix(p, sep) {
				return filepath.Join(r.given, p[len(sep):]), true
			}
		}
	}

	return p, false
}

// dirOf returns the directory containing the changed path p, in the form of
// the configured roots. A change to a root itself is reported for the root.
func (rs roots) dirOf(p string) string {
	t, ok := rs.translate(p)
	if ok && rs.isRoot(t) {
		return t
	}

	return filepath.Dir(t)
}

func (rs roots) isRoot(p string) bool {
	for _, r := range rs {
		if r.given == p {
			return true
		}
	}

	return false
}
