package platform

import (
	"path/filepath"
	"testing"
)

func TestRootsDirOf(t *testing.T) {
	t.Parallel()

	tempdir := t.TempDir()
	real, err := filepath.EvalSymlinks(tempdir)
	if err != nil {
		t.Fatal(err)
	}

	rs := resolveRoots([]string{tempdir})

	tests := []struct {
		path string
		dir  string
	}{
		{filepath.Join(real, "file"), tempdir},
		{filepath.Join(real, "sub", "file"), filepath.Join(tempdir, "sub")},
		{filepath.Join(real, "sub"), tempdir},
		{real, tempdir},
		{"/elsewhere/file", "/elsewhere"},
	}

	for _, test := range tests {
		dir := rs.dirOf(test.path)
		if dir != test.dir {
			t.Errorf("dirOf(%v): want %v, got %v", test.path, test.dir, dir)
		}
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "notify", "fsnotify"} {
		_, err := Open(name)
		if err != nil {
			t.Errorf("Open(%q): %v", name, err)
		}
	}

	_, err := Open("carrier-pigeon")
	if err == nil {
		t.Errorf("unknown backend accepted")
	}
}
