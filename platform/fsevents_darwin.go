//go:build darwin && cgo
// +build darwin,cgo

package platform

import (
	"fmt"
	"os"
	"strings"

	"github.com/mutagen-io/fsevents"
	"github.com/sirupsen/logrus"
)

const fseventsChannelCapacity = 50

// FSEventsBackend uses the native FSEvents API. Coalescing, flags and the
// since cursor are handled by FSEvents itself.
type FSEventsBackend struct {
	log logrus.FieldLogger
}

func newFSEventsBackend() (Backend, error) {
	return &FSEventsBackend{}, nil
}

// SetLogger updates the logger to use.
func (b *FSEventsBackend) SetLogger(logger logrus.FieldLogger) {
	b.log = logger.WithField("component", "fsevents-backend")
}

// Create returns a new handle for cfg. The event stream is created on Start.
func (b *FSEventsBackend) Create(cfg Config) (Handle, error) {
	err := checkConfig(cfg)
	if err != nil {
		return nil, err
	}

	log := b.log
	if log == nil {
		log = logrus.StandardLogger().WithField("component", "fsevents-backend")
	}

	return &fseventsHandle{
		dispatcher: newDispatcher(cfg),
		cfg:        cfg,
		roots:      resolveRoots(cfg.Paths),
		log:        log,
		since:      cfg.Since,
	}, nil
}

type fseventsHandle struct {
	*dispatcher

	cfg   Config
	roots roots
	log   logrus.FieldLogger

	// since is advanced to the last forwarded event so that a restarted
	// stream resumes where the previous one stopped.
	since EventID

	stream *fsevents.EventStream
	stop   chan struct{}
	done   chan struct{}
}

// Start creates and starts the event stream.
func (h *fseventsHandle) Start() error {
	if h.isReleased() {
		return ErrReleased
	}

	if h.stream != nil {
		return nil
	}

	h.roots = resolveRoots(h.roots.paths())

	paths := h.roots.absolute()
	for _, p := range paths {
		_, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("watch %v failed: %w", p, err)
		}
	}

	err := h.activate()
	if err != nil {
		return err
	}

	h.mu.Lock()
	since := h.since
	h.mu.Unlock()

	stream := &fsevents.EventStream{
		Events:  make(chan []fsevents.Event, fseventsChannelCapacity),
		Paths:   paths,
		Latency: h.cfg.Latency,
		Flags:   fsevents.CreateFlags(h.cfg.Flags),
		EventID: uint64(since),
		Resume:  since != SinceNow,
	}
	stream.Start()

	h.stream = stream
	h.stop = make(chan struct{})
	h.done = make(chan struct{})

	go h.run(stream.Events, h.stop, h.done)

	return nil
}

func (h *fseventsHandle) run(events <-chan []fsevents.Event, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case batch, ok := <-events:
			if !ok {
				return
			}

			ids := make([]EventID, 0, len(batch))
			paths := make([]string, 0, len(batch))

			for _, ev := range batch {
				p := ev.Path
				if !strings.HasPrefix(p, "/") {
					p = "/" + p
				}

				if len(p) > 1 {
					p = strings.TrimRight(p, "/")
				}

				if h.cfg.Flags&FlagFileEvents != 0 {
					p = h.roots.dirOf(p)
				} else {
					p, _ = h.roots.translate(p)
				}

				ids = append(ids, EventID(ev.ID))
				paths = append(paths, p)
			}

			if len(ids) > 0 {
				h.mu.Lock()
				h.since = ids[len(ids)-1]
				h.mu.Unlock()
			}

			h.log.Debugf("forward %d events", len(ids))
			h.post(ids, paths)
		}
	}
}

// Stop stops the event stream. The handle can be started again.
func (h *fseventsHandle) Stop() {
	h.deactivate(false)

	if h.stream == nil {
		return
	}

	h.stream.Stop()
	close(h.stop)
	<-h.done

	h.stream = nil
}

// Release stops the handle for good.
func (h *fseventsHandle) Release() {
	h.Stop()
	h.deactivate(true)
}
