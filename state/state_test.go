package state

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/fd0/changewatch/platform"
)

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	st, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(st, State{}) {
		t.Errorf("want empty state, got %+v", st)
	}

	if st.Since([]string{"/tmp"}) != platform.SinceNow {
		t.Errorf("empty state does not resume from now")
	}
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	filename := filepath.Join(t.TempDir(), "state.json")

	want := State{
		LastEventID: 4711,
		Paths:       []string{"/tmp", "/var/tmp"},
		UpdatedAt:   time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	err := want.Save(filename)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}

	if got.LastEventID != want.LastEventID || !reflect.DeepEqual(got.Paths, want.Paths) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("wrong state loaded, want %+v, got %+v", want, got)
	}

	// overwrite
	want.LastEventID = 4712

	err = want.Save(filename)
	if err != nil {
		t.Fatal(err)
	}

	got, err = Load(filename)
	if err != nil {
		t.Fatal(err)
	}

	if got.LastEventID != 4712 {
		t.Errorf("state not overwritten, got %v", got.LastEventID)
	}

	entries, err := os.ReadDir(filepath.Dir(filename))
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	filename := filepath.Join(t.TempDir(), "state.json")

	err := os.WriteFile(filename, []byte("{invalid"), 0600)
	if err != nil {
		t.Fatalf("write %v failed: %v", filename, err)
	}

	_, err = Load(filename)
	if err == nil {
		t.Fatal("expected error not found")
	}
}

func TestSince(t *testing.T) {
	t.Parallel()

	st := State{LastEventID: 23, Paths: []string{"/a", "/b"}}

	var tests = []struct {
		paths []string
		want  platform.EventID
	}{
		{[]string{"/a", "/b"}, 23},
		{[]string{"/a"}, platform.SinceNow},
		{[]string{"/b", "/a"}, platform.SinceNow},
		{nil, platform.SinceNow},
	}

	for _, test := range tests {
		got := st.Since(test.paths)
		if got != test.want {
			t.Errorf("paths %v: want %v, got %v", test.paths, test.want, got)
		}
	}
}
