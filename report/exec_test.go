//go:build !windows
// +build !windows

package report

import (
	"bytes"
	"context"
	"testing"
)

func TestExec(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}

	e := &Exec{
		Command: "sh",
		Args:    []string{"-c", `printf "%s|" "$@"; printf "$CHANGEWATCH_DELETED"`, "sh"},
		Stdout:  buf,
	}

	err := e.Report(context.Background(), Change{
		Modified: []string{"/tmp/b", "/tmp/c"},
		Deleted:  []string{"/tmp/a"},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "/tmp/b|/tmp/c|/tmp/a"
	if buf.String() != want {
		t.Errorf("wrong output, want %q, got %q", want, buf.String())
	}
}

func TestExecEmptyChange(t *testing.T) {
	t.Parallel()

	e := &Exec{Command: "/nonexistent/command"}

	err := e.Report(context.Background(), Change{})
	if err != nil {
		t.Fatalf("command run for empty change: %v", err)
	}

	err = e.Report(context.Background(), Change{Modified: []string{"x"}})
	if err == nil {
		t.Fatal("expected error not found")
	}
}

func TestParseExec(t *testing.T) {
	t.Parallel()

	e, err := ParseExec("  make -C build  ")
	if err != nil {
		t.Fatal(err)
	}

	if e.Command != "make" || len(e.Args) != 2 || e.Args[0] != "-C" || e.Args[1] != "build" {
		t.Errorf("wrong command %q %q", e.Command, e.Args)
	}

	_, err = ParseExec("   ")
	if err == nil {
		t.Fatal("expected error not found")
	}
}
