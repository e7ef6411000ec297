package snapshot

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
	"testing/fstest"
	"time"

	"github.com/fd0/changewatch/fsys"
)

var t0 = time.Date(2008, 4, 1, 12, 0, 0, 0, time.UTC)

func TestRefreshRecursive(t *testing.T) {
	t.Parallel()

	fs := fsys.IOFS{FS: fstest.MapFS{
		"root/a":           {Data: make([]byte, 10), ModTime: t0},
		"root/sub/b":       {Data: make([]byte, 20), ModTime: t0},
		"root/sub/deep/c":  {Data: make([]byte, 30), ModTime: t0},
		"other/unrelated":  {Data: []byte("x"), ModTime: t0},
		"root/empty":       {Mode: os.ModeDir | 0755, ModTime: t0},
		"root/sub/deep/d":  {Data: nil, ModTime: t0},
		"root/sub/deep/.x": {Data: []byte("hidden"), ModTime: t0},
	}}

	snap, err := Refresh(fs, []string{"root"})
	if err != nil {
		t.Fatal(err)
	}

	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	want := []string{"root", "root/empty", "root/sub", "root/sub/deep"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("wrong cached dirs, want %v, got %v", want, keys)
	}

	if e := snap["root"]["root/a"]; e.Size != 10 || !e.ModTime.Equal(t0) {
		t.Errorf("wrong entry for root/a: %+v", e)
	}

	if e := snap["root/sub/deep"]["root/sub/deep/c"]; e.Size != 30 {
		t.Errorf("wrong entry for root/sub/deep/c: %+v", e)
	}

	if _, ok := snap["root/sub/deep"]["root/sub/deep/.x"]; !ok {
		t.Errorf("hidden file not cached")
	}

	// directories are entries of their parent as well
	if _, ok := snap["root"]["root/sub"]; !ok {
		t.Errorf("subdir missing from parent entry map")
	}

	d, ok := snap.Lookup("root/empty")
	if !ok {
		t.Fatalf("empty dir was not cached")
	}

	if len(d) != 0 {
		t.Errorf("empty dir has entries: %v", d)
	}

	if _, ok := snap.Lookup("other"); ok {
		t.Errorf("directory outside of the roots was cached")
	}
}

func TestRefreshMissingRoot(t *testing.T) {
	t.Parallel()

	tempdir := t.TempDir()
	missing := filepath.Join(tempdir, "missing")

	err := os.WriteFile(filepath.Join(tempdir, "file"), []byte("data"), 0600)
	if err != nil {
		t.Fatal(err)
	}

	snap, err := Refresh(fsys.OS{}, []string{missing, tempdir})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := snap.Lookup(missing); ok {
		t.Errorf("missing root is present in the snapshot")
	}

	d, ok := snap.Lookup(tempdir)
	if !ok {
		t.Fatalf("tempdir not cached")
	}

	e, ok := d[filepath.Join(tempdir, "file")]
	if !ok {
		t.Fatalf("file not cached, entries: %v", d)
	}

	if e.Size != 4 {
		t.Errorf("wrong size, want 4, got %v", e.Size)
	}
}

func TestRefreshReplacesWholesale(t *testing.T) {
	t.Parallel()

	tempdir := t.TempDir()
	a := filepath.Join(tempdir, "a")

	err := os.WriteFile(a, []byte("a"), 0600)
	if err != nil {
		t.Fatal(err)
	}

	first, err := Refresh(fsys.OS{}, []string{tempdir})
	if err != nil {
		t.Fatal(err)
	}

	err = os.Remove(a)
	if err != nil {
		t.Fatal(err)
	}

	second, err := Refresh(fsys.OS{}, []string{tempdir})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := first[tempdir][a]; !ok {
		t.Errorf("previous snapshot was modified by refresh")
	}

	if _, ok := second[tempdir][a]; ok {
		t.Errorf("removed file still present in new snapshot")
	}
}

func TestEntryEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b  Entry
		equal bool
	}{
		{Entry{t0, 10}, Entry{t0, 10}, true},
		{Entry{t0, 10}, Entry{t0, 11}, false},
		{Entry{t0, 10}, Entry{t0.Add(time.Second), 10}, false},
		{Entry{t0, 10}, Entry{t0.In(time.FixedZone("x", 3600)), 10}, true},
	}

	for _, test := range tests {
		if test.a.Equal(test.b) != test.equal {
			t.Errorf("%+v.Equal(%+v) != %v", test.a, test.b, test.equal)
		}
	}
}
