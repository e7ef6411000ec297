package stream

import (
	"fmt"
	"time"

	"github.com/fd0/changewatch/fsys"
	"github.com/fd0/changewatch/platform"
	"github.com/fd0/changewatch/snapshot"
)

// Baseline is the state the files of a batch are compared against. A new
// Baseline is created after every batch, existing ones are never modified.
type Baseline struct {
	Mode Mode

	// LastEvent is the time of the previous refresh (timestamp mode).
	LastEvent time.Time

	// Snapshot holds the cached directories (cache mode).
	Snapshot snapshot.Snapshot
}

// Event reports a change somewhere in the directory Path.
type Event struct {
	ID   platform.EventID
	Path string

	base *Baseline
	fs   fsys.FS
}

// NewEvent returns an event for path, compared against base. Trailing
// separators are removed from path.
func NewEvent(id platform.EventID, path string, base *Baseline, fs fsys.FS) *Event {
	if fs == nil {
		fs = fsys.OS{}
	}

	return &Event{
		ID:   id,
		Path: Normalize(path),
		base: base,
		fs:   fs,
	}
}

// Baseline returns the baseline the event is compared against.
func (e *Event) Baseline() *Baseline {
	return e.base
}

func (e *Event) String() string {
	return fmt.Sprintf("<Event %v for %v>", e.ID, e.Path)
}

// Files returns the current children of the event's directory. A directory
// which does not exist any more has no files.
func (e *Event) Files() ([]string, error) {
	files, err := e.fs.List(e.Path)
	if fsys.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("list files failed: %w", err)
	}

	return files, nil
}

// ModifiedFiles returns the files which were modified since the baseline was
// recorded. In timestamp mode, these are the files with a modification time at
// or after the last event. In cache mode, these are the files which are new or
// differ in size or modification time from the cached entry.
func (e *Event) ModifiedFiles() ([]string, error) {
	files, err := e.Files()
	if err != nil {
		return nil, err
	}

	var cached snapshot.Dir
	if e.base.Mode == ModeCache {
		cached, _ = e.base.Snapshot.Lookup(e.Path)
	}

	var modified []string

	for _, file := range files {
		fi, err := e.fs.Stat(file)
		if fsys.IsNotExist(err) {
			// removed after listing
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("stat failed: %w", err)
		}

		if e.changed(file, fi, cached) {
			modified = append(modified, file)
		}
	}

	return modified, nil
}

func (e *Event) changed(file string, fi fsys.Info, cached snapshot.Dir) bool {
	if e.base.Mode == ModeTimestamp {
		return !fi.ModTime.Before(e.base.LastEvent)
	}

	entry, ok := cached[file]
	if !ok {
		return true
	}

	return !entry.Equal(snapshot.Entry{ModTime: fi.ModTime, Size: fi.Size})
}

// DeletedFiles returns the cached files which do not exist any more. If the
// directory was never cached, no files are returned. In timestamp mode,
// ErrUnsupported is returned.
func (e *Event) DeletedFiles() ([]string, error) {
	if e.base.Mode != ModeCache {
		return nil, &Error{Kind: ErrUnsupported, Op: "deleted files"}
	}

	cached, ok := e.base.Snapshot.Lookup(e.Path)
	if !ok {
		return nil, nil
	}

	files, err := e.Files()
	if err != nil {
		return nil, err
	}

	current := make(map[string]struct{}, len(files))
	for _, file := range files {
		current[file] = struct{}{}
	}

	var deleted []string

	for _, file := range cached.Paths() {
		if _, ok := current[file]; !ok {
			deleted = append(deleted, file)
		}
	}

	return deleted, nil
}
