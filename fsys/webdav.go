package fsys

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/net/webdav"
)

// WebDAV returns an FS backed by a webdav.FileSystem, e.g. webdav.Dir or
// webdav.NewMemFS(). Paths follow the io/fs conventions.
func WebDAV(fsys webdav.FileSystem) FS {
	return IOFS{FS: newWebDAVFS(fsys)}
}

// webDAVFS adapts a webdav.FileSystem to fs.FS.
type webDAVFS struct {
	fs webdav.FileSystem
}

// statically ensure that webDAVFS implements fs.StatFS.
var _ fs.StatFS = &webDAVFS{}

func newWebDAVFS(fs webdav.FileSystem) *webDAVFS {
	return &webDAVFS{fs}
}

// rooted converts an io/fs name to the rooted form webdav expects.
func rooted(op, name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}

	if name == "." {
		return "/", nil
	}

	return "/" + name, nil
}

// Open opens the named file.
func (fs *webDAVFS) Open(name string) (fs.File, error) {
	p, err := rooted("open", name)
	if err != nil {
		return nil, err
	}

	f, err := fs.fs.OpenFile(context.Background(), p, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	return &webDAVFile{f}, nil
}

// Stat returns a FileInfo describing the file.
func (fs *webDAVFS) Stat(name string) (fs.FileInfo, error) {
	p, err := rooted("stat", name)
	if err != nil {
		return nil, err
	}

	return fs.fs.Stat(context.Background(), p)
}

// webDAVFile adapts webdav.File to fs.File (different name for ReadDir() vs. Readdir()).
type webDAVFile struct {
	webdav.File
}

var _ fs.ReadDirFile = &webDAVFile{}

// ReadDir reads the contents of the directory. For n <= 0 all entries are
// returned in a single slice.
func (f *webDAVFile) ReadDir(n int) ([]fs.DirEntry, error) {
	entries, err := f.File.Readdir(n)
	if err != nil {
		return nil, fmt.Errorf("ReadDir: %w", err)
	}

	list := make([]fs.DirEntry, 0, len(entries))
	for _, entry := range entries {
		list = append(list, fs.FileInfoToDirEntry(entry))
	}

	return list, nil
}
