package report

import (
	"reflect"
	"testing"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		patterns []string
		filename string
		ignored  bool
	}{
		{[]string{"*.swp"}, "/home/user/.file.txt.swp", true},
		{[]string{"*.swp"}, "/home/user/file.txt", false},
		{[]string{".git"}, "/src/project/.git", true},
		{[]string{"/src/**/build/*"}, "/src/project/build/main.o", true},
		{[]string{"/src/*/build/*"}, "/src/a/b/build/main.o", false},
		{[]string{"", "  "}, "/foo", false},
		{[]string{"*.tmp", "*~"}, "/foo/bar~", true},
	}

	for _, test := range tests {
		f, err := NewFilter(test.patterns)
		if err != nil {
			t.Fatal(err)
		}

		if f.Ignored(test.filename) != test.ignored {
			t.Errorf("patterns %q, file %v: want ignored=%v", test.patterns, test.filename, test.ignored)
		}
	}
}

func TestFilterInvalid(t *testing.T) {
	t.Parallel()

	_, err := NewFilter([]string{"[a-"})
	if err == nil {
		t.Fatal("expected error not found")
	}
}

func TestFilterApply(t *testing.T) {
	t.Parallel()

	f, err := NewFilter([]string{"*.o"})
	if err != nil {
		t.Fatal(err)
	}

	got := f.Apply(Change{
		Modified: []string{"/src/main.go", "/src/main.o"},
		Deleted:  []string{"/src/old.o"},
	})

	want := Change{Modified: []string{"/src/main.go"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("wrong change, want %+v, got %+v", want, got)
	}

	var nilFilter *Filter

	c := Change{Modified: []string{"x"}}
	if !reflect.DeepEqual(nilFilter.Apply(c), c) {
		t.Errorf("nil filter modified the change")
	}
}
