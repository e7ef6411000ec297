package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fd0/changewatch/report"
	"github.com/fd0/changewatch/stream"
	"github.com/sirupsen/logrus"
)

// CheckWatchDir ensures that dir exists and is a directory.
func CheckWatchDir(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("accessing watch dir %v: %w", dir, err)
	}

	if !fi.IsDir() {
		return fmt.Errorf("watch dir %v is not a directory", dir)
	}

	return nil
}

// Watcher passes the changes of each batch through Filter to all reporters.
type Watcher struct {
	Filter    *report.Filter
	Reporters []report.Reporter

	log logrus.FieldLogger
}

// SetLogger updates the logger to use.
func (w *Watcher) SetLogger(logger logrus.FieldLogger) {
	w.log = logger.WithField("component", "watcher")
}

// Callback returns the stream callback. Reporters run with ctx.
func (w *Watcher) Callback(ctx context.Context) stream.Callback {
	return func(events stream.EventCollection) {
		w.handle(ctx, events)
	}
}

func (w *Watcher) handle(ctx context.Context, events stream.EventCollection) {
	log := w.log
	if log == nil {
		log = logrus.StandardLogger()
	}

	log.WithField("paths", events.Paths()).Debugf("received %d events", len(events))

	change, err := report.FromEvents(events)
	if err != nil {
		log.Warnf("determine changes failed: %v", err)

		return
	}

	change = w.Filter.Apply(change)
	if change.Empty() {
		return
	}

	for _, r := range w.Reporters {
		err := r.Report(ctx, change)
		if err != nil {
			log.Warnf("report %v failed: %v", change, err)
		}
	}
}
