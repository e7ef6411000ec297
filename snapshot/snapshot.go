// Package snapshot records the modification time and size of every entry
// below a set of directories.
package snapshot

import (
	"fmt"
	"sort"
	"time"

	"github.com/fd0/changewatch/fsys"
)

// Entry is the metadata cached for a single directory entry.
type Entry struct {
	ModTime time.Time
	Size    int64
}

// Equal reports whether e and other describe the same file state. Both the
// size and the modification time must match.
func (e Entry) Equal(other Entry) bool {
	return e.Size == other.Size && e.ModTime.Equal(other.ModTime)
}

// Dir maps the full path of each child of a directory to its Entry.
type Dir map[string]Entry

// Paths returns the cached child paths in lexical order.
func (d Dir) Paths() []string {
	paths := make([]string, 0, len(d))
	for p := range d {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	return paths
}

// Snapshot maps directory paths to the cached contents of that directory.
// A snapshot is never modified after Refresh returned it.
type Snapshot map[string]Dir

// Lookup returns the cached contents of dir. The second return value is false
// if dir was never cached, which is different from a cached empty directory.
func (s Snapshot) Lookup(dir string) (Dir, bool) {
	d, ok := s[dir]

	return d, ok
}

// Refresh walks roots and all directories below them and returns a new
// snapshot. Each directory found during the walk is cached under its own key.
// Roots which do not exist and entries removed concurrently are skipped.
func Refresh(fs fsys.FS, roots []string) (Snapshot, error) {
	snap := make(Snapshot, len(roots))

	worklist := make([]string, len(roots))
	copy(worklist, roots)

	for len(worklist) > 0 {
		dir := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		// overlapping roots or a subdir listed as a root
		if _, ok := snap[dir]; ok {
			continue
		}

		children, err := fs.List(dir)
		if fsys.IsNotExist(err) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("list %v failed: %w", dir, err)
		}

		entries := make(Dir, len(children))

		for _, child := range children {
			fi, err := fs.Stat(child)
			if fsys.IsNotExist(err) {
				continue
			}

			if err != nil {
				return nil, fmt.Errorf("stat %v failed: %w", child, err)
			}

			entries[child] = Entry{ModTime: fi.ModTime, Size: fi.Size}

			if fi.IsDir {
				worklist = append(worklist, child)
			}
		}

		snap[dir] = entries
	}

	return snap, nil
}
