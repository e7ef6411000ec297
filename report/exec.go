package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Exec runs a command for every change. The modified files are appended to
// the arguments, the deleted files are passed newline separated in the
// environment variable CHANGEWATCH_DELETED.
type Exec struct {
	Command string
	Args    []string

	Stdout, Stderr io.Writer

	log logrus.FieldLogger
}

// ParseExec splits cmdline into the command and its arguments.
func ParseExec(cmdline string) (*Exec, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	return &Exec{Command: fields[0], Args: fields[1:]}, nil
}

// SetLogger updates the logger to use.
func (e *Exec) SetLogger(logger logrus.FieldLogger) {
	e.log = logger.WithField("component", "exec")
}

// Report runs the command and waits for it to finish.
func (e *Exec) Report(ctx context.Context, c Change) error {
	if c.Empty() {
		return nil
	}

	args := append(append([]string(nil), e.Args...), c.Modified...)

	cmd := exec.CommandContext(ctx, e.Command, args...)
	cmd.Env = append(os.Environ(), "CHANGEWATCH_DELETED="+strings.Join(c.Deleted, "\n"))

	cmd.Stdout = os.Stdout
	if e.Stdout != nil {
		cmd.Stdout = e.Stdout
	}

	cmd.Stderr = os.Stderr
	if e.Stderr != nil {
		cmd.Stderr = e.Stderr
	}

	if e.log != nil {
		e.log.WithField("command", e.Command).Debugf("run for %v", c)
	}

	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("run %v: %w", e.Command, err)
	}

	return nil
}
