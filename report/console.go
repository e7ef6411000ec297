package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/fd0/changewatch/fsys"
)

// Console prints one line per changed file.
type Console struct {
	Out io.Writer
	FS  fsys.FS

	// Now is used to print the age of modified files, time.Now if nil.
	Now func() time.Time
}

// Report prints c to Out.
func (c *Console) Report(_ context.Context, change Change) error {
	out := c.Out
	if out == nil {
		out = color.Output
	}

	fs := c.FS
	if fs == nil {
		fs = fsys.OS{}
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	for _, file := range change.Modified {
		fi, err := fs.Stat(file)
		if err != nil {
			// gone again
			_, err = fmt.Fprintf(out, "%v %v\n", color.YellowString("M"), file)
		} else {
			_, err = fmt.Fprintf(out, "%v %v (%v, %v)\n", color.GreenString("M"), file,
				humanize.Bytes(uint64(fi.Size)), humanize.RelTime(fi.ModTime, now(), "ago", "from now"))
		}

		if err != nil {
			return fmt.Errorf("write failed: %w", err)
		}
	}

	for _, file := range change.Deleted {
		_, err := fmt.Fprintf(out, "%v %v\n", color.RedString("D"), file)
		if err != nil {
			return fmt.Errorf("write failed: %w", err)
		}
	}

	return nil
}
