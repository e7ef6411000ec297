package platform

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rjeczalik/notify"
	"github.com/sirupsen/logrus"
)

const defaultNotifyChanBuf = 200

// NotifyBackend watches directory trees recursively using
// github.com/rjeczalik/notify (inotify, FSEvents, kqueue or
// ReadDirectoryChangesW depending on the platform).
type NotifyBackend struct {
	log logrus.FieldLogger
}

// SetLogger updates the logger to use.
func (b *NotifyBackend) SetLogger(logger logrus.FieldLogger) {
	b.log = logger.WithField("component", "notify-backend")
}

func (b *NotifyBackend) logger() logrus.FieldLogger {
	if b.log == nil {
		return logrus.StandardLogger().WithField("component", "notify-backend")
	}

	return b.log
}

// Create returns a new handle for cfg. Watching starts with Start.
func (b *NotifyBackend) Create(cfg Config) (Handle, error) {
	err := checkConfig(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Since != SinceNow {
		b.logger().Warnf("notify cannot replay events since %v, delivering new events only", cfg.Since)
	}

	return &notifyHandle{
		dispatcher: newDispatcher(cfg),
		roots:      resolveRoots(cfg.Paths),
		log:        b.logger(),
	}, nil
}

func checkConfig(cfg Config) error {
	if cfg.Deliver == nil {
		return errors.New("no deliver function")
	}

	if len(cfg.Paths) == 0 {
		return errors.New("no paths to watch")
	}

	return nil
}

type notifyHandle struct {
	*dispatcher

	roots roots
	log   logrus.FieldLogger

	ch   chan notify.EventInfo
	stop chan struct{}
	done chan struct{}
}

// Start establishes the recursive watches.
func (h *notifyHandle) Start() error {
	if h.isReleased() {
		return ErrReleased
	}

	if h.ch != nil {
		return nil
	}

	// symlinks may have changed since the handle was created
	h.roots = resolveRoots(h.roots.paths())

	ch := make(chan notify.EventInfo, defaultNotifyChanBuf)

	for _, dir := range h.roots.absolute() {
		err := notify.Watch(filepath.Join(dir, "..."), ch, notify.All)
		if err != nil {
			notify.Stop(ch)

			return fmt.Errorf("watch %v failed: %w", dir, err)
		}
	}

	err := h.activate()
	if err != nil {
		notify.Stop(ch)

		return err
	}

	h.ch = ch
	h.stop = make(chan struct{})
	h.done = make(chan struct{})

	go h.run(ch, h.stop, h.done)

	h.log.Debugf("watch %v", h.roots.absolute())

	return nil
}

func (h *notifyHandle) run(ch <-chan notify.EventInfo, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case evinfo := <-ch:
			h.log.WithFields(eventFields(evinfo)).Debugf("event for path %v", evinfo.Path())
			h.add(h.roots.dirOf(evinfo.Path()))
		}
	}
}

// Stop removes the watches. The handle can be started again.
func (h *notifyHandle) Stop() {
	h.deactivate(false)

	if h.ch == nil {
		return
	}

	notify.Stop(h.ch)
	close(h.stop)
	<-h.done

	h.ch = nil
}

// Release stops the handle for good.
func (h *notifyHandle) Release() {
	h.Stop()
	h.deactivate(true)
}
