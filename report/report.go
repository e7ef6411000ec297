// Package report passes the changes of a batch on to the user.
package report

import (
	"context"
	"fmt"

	"github.com/fd0/changewatch/stream"
)

// Change lists the files changed in one batch.
type Change struct {
	Modified []string
	Deleted  []string
}

// Empty reports whether no file changed.
func (c Change) Empty() bool {
	return len(c.Modified) == 0 && len(c.Deleted) == 0
}

func (c Change) String() string {
	return fmt.Sprintf("<Change %d modified, %d deleted>", len(c.Modified), len(c.Deleted))
}

// FromEvents returns the change described by events. Deleted files are only
// known in cache mode.
func FromEvents(events stream.EventCollection) (Change, error) {
	if len(events) == 0 {
		return Change{}, nil
	}

	modified, err := events.ModifiedFiles()
	if err != nil {
		return Change{}, fmt.Errorf("modified files: %w", err)
	}

	c := Change{Modified: modified}

	if events[0].Baseline().Mode != stream.ModeCache {
		return c, nil
	}

	c.Deleted, err = events.DeletedFiles()
	if err != nil {
		return Change{}, fmt.Errorf("deleted files: %w", err)
	}

	return c, nil
}

// Reporter is notified about changes.
type Reporter interface {
	Report(ctx context.Context, c Change) error
}
