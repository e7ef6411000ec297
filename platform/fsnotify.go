package platform

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// FSNotifyBackend watches directory trees with github.com/fsnotify/fsnotify.
// fsnotify only watches single directories, so every directory below the
// roots is added, including directories created while the handle runs.
type FSNotifyBackend struct {
	log logrus.FieldLogger
}

// SetLogger updates the logger to use.
func (b *FSNotifyBackend) SetLogger(logger logrus.FieldLogger) {
	b.log = logger.WithField("component", "fsnotify-backend")
}

// Create returns a new handle for cfg. Watching starts with Start.
func (b *FSNotifyBackend) Create(cfg Config) (Handle, error) {
	err := checkConfig(cfg)
	if err != nil {
		return nil, err
	}

	log := b.log
	if log == nil {
		log = logrus.StandardLogger().WithField("component", "fsnotify-backend")
	}

	if cfg.Since != SinceNow {
		log.Warnf("fsnotify cannot replay events since %v, delivering new events only", cfg.Since)
	}

	return &fsnotifyHandle{
		dispatcher: newDispatcher(cfg),
		roots:      resolveRoots(cfg.Paths),
		log:        log,
	}, nil
}

type fsnotifyHandle struct {
	*dispatcher

	roots roots
	log   logrus.FieldLogger

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// addTree adds watches for dir and all directories below it.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// removed while walking
			if path != dir && errorIsNotExist(err) {
				return nil
			}

			return err
		}

		if !d.IsDir() {
			return nil
		}

		return watcher.Add(path)
	})
}

// Start creates the watcher and adds all directories.
func (h *fsnotifyHandle) Start() error {
	if h.isReleased() {
		return ErrReleased
	}

	if h.watcher != nil {
		return nil
	}

	// symlinks may have changed since the handle was created
	h.roots = resolveRoots(h.roots.paths())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher failed: %w", err)
	}

	for _, dir := range h.roots.absolute() {
		err = addTree(watcher, dir)
		if err != nil {
			_ = watcher.Close()

			return fmt.Errorf("watch %v failed: %w", dir, err)
		}
	}

	err = h.activate()
	if err != nil {
		_ = watcher.Close()

		return err
	}

	h.watcher = watcher
	h.done = make(chan struct{})

	go h.run(watcher, h.done)

	return nil
}

func (h *fsnotifyHandle) run(watcher *fsnotify.Watcher, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}

			h.log.Debugf("event %v for path %v", ev.Op, ev.Name)

			if ev.Has(fsnotify.Create) {
				err := addTree(watcher, ev.Name)
				if err != nil && !errorIsNotExist(err) {
					h.log.Debugf("add watch for %v: %v", ev.Name, err)
				}
			}

			h.add(h.roots.dirOf(ev.Name))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			h.log.Warnf("watch error: %v", err)
		}
	}
}

// Stop closes the watcher. The handle can be started again.
func (h *fsnotifyHandle) Stop() {
	h.deactivate(false)

	if h.watcher == nil {
		return
	}

	err := h.watcher.Close()
	if err != nil {
		h.log.Warnf("close watcher: %v", err)
	}

	<-h.done

	h.watcher = nil
}

// Release stops the handle for good.
func (h *fsnotifyHandle) Release() {
	h.Stop()
	h.deactivate(true)
}
