package fsys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Info is the metadata recorded for a directory entry.
type Info struct {
	ModTime time.Time
	Size    int64
	IsDir   bool
}

// FS lists directories and stats entries. Paths returned by List are full
// paths which can be passed to Stat and List again.
type FS interface {
	// List returns the immediate children of dir in lexical order.
	List(dir string) ([]string, error)

	// Stat returns the metadata for name without following symlinks.
	Stat(name string) (Info, error)
}

// IsNotExist reports whether err means that a path vanished or never existed.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// OS accesses the local filesystem.
type OS struct{}

// statically ensure that OS implements FS.
var _ FS = OS{}

// List returns the children of dir, joined with dir.
func (OS) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("readdir %v: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, filepath.Join(dir, entry.Name()))
	}

	return names, nil
}

// Stat returns the metadata for name.
func (OS) Stat(name string) (Info, error) {
	fi, err := os.Lstat(name)
	if err != nil {
		return Info{}, fmt.Errorf("lstat %v: %w", name, err)
	}

	return infoFrom(fi), nil
}

func infoFrom(fi fs.FileInfo) Info {
	return Info{
		ModTime: fi.ModTime(),
		Size:    fi.Size(),
		IsDir:   fi.IsDir(),
	}
}

// IOFS adapts an fs.FS. Paths use the io/fs conventions (slash separated,
// unrooted, "." for the top directory).
type IOFS struct {
	FS fs.FS
}

var _ FS = IOFS{}

// List returns the children of dir, joined with dir.
func (f IOFS) List(dir string) ([]string, error) {
	entries, err := fs.ReadDir(f.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("readdir %v: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, path.Join(dir, entry.Name()))
	}

	return names, nil
}

// Stat returns the metadata for name.
func (f IOFS) Stat(name string) (Info, error) {
	fi, err := fs.Stat(f.FS, name)
	if err != nil {
		return Info{}, fmt.Errorf("stat %v: %w", name, err)
	}

	return infoFrom(fi), nil
}
