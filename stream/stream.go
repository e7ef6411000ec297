// Package stream watches directories and determines which files changed for
// every directory the platform reports, either by comparing modification
// times or against a cached snapshot of the watched trees.
package stream

import (
	"fmt"
	"sync"

	"github.com/fd0/changewatch/platform"
	"github.com/fd0/changewatch/snapshot"
	"github.com/sirupsen/logrus"
)

// State is the lifecycle state of a Stream.
type State int

const (
	Uncreated State = iota
	Created
	Scheduled
	Running
	Stopped
	Invalidated
	Released
)

func (s State) String() string {
	switch s {
	case Uncreated:
		return "uncreated"
	case Created:
		return "created"
	case Scheduled:
		return "scheduled"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Invalidated:
		return "invalidated"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stream owns a platform watch handle and turns the batches it delivers into
// EventCollections passed to the configured callback.
//
// Lifecycle methods are meant to be called from a single goroutine, batches
// are delivered on the goroutine running the loop the stream is scheduled on.
type Stream struct {
	cfg     Config
	backend platform.Backend

	log logrus.FieldLogger

	mu     sync.Mutex
	state  State
	handle platform.Handle
	base   *Baseline
	lastID platform.EventID
}

// New validates cfg and creates the watch handle using backend.
func New(backend platform.Backend, cfg Config) (*Stream, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	s := &Stream{
		cfg:     cfg,
		backend: backend,
		log:     logrus.StandardLogger().WithField("component", "stream"),
		state:   Uncreated,
		base:    &Baseline{Mode: cfg.Mode},
	}

	err = s.create()
	if err != nil {
		return nil, err
	}

	return s, nil
}

// SetLogger updates the logger to use.
func (s *Stream) SetLogger(logger logrus.FieldLogger) {
	s.log = logger.WithField("component", "stream")
}

func (s *Stream) create() error {
	handle, err := s.backend.Create(platform.Config{
		Paths:   s.cfg.Paths,
		Since:   s.cfg.Since,
		Latency: s.cfg.Latency,
		Flags:   s.cfg.Flags,
		Deliver: s.handleBatch,
	})
	if err != nil {
		return &Error{Kind: ErrCreate, Op: "create", Err: err}
	}

	if handle == nil {
		return &Error{Kind: ErrCreate, Op: "create"}
	}

	s.handle = handle
	s.state = Created

	s.log.Debugf("created %v stream for %v", s.cfg.Mode, s.cfg.Paths)

	return nil
}

// Config returns the configuration with all defaults applied.
func (s *Stream) Config() Config {
	cfg := s.cfg
	cfg.Paths = append([]string(nil), s.cfg.Paths...)

	return cfg
}

// Mode returns the change detection mode.
func (s *Stream) Mode() Mode {
	return s.cfg.Mode
}

// State returns the current lifecycle state.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Handle returns the watch handle, nil after Release.
func (s *Stream) Handle() platform.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.handle
}

// Baseline returns the baseline the next batch is compared against.
func (s *Stream) Baseline() *Baseline {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.base
}

// LastEventID returns the highest event ID delivered so far, or the
// configured Since value if no batch has been delivered yet.
func (s *Stream) LastEventID() platform.EventID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastID == 0 {
		return s.cfg.Since
	}

	return s.lastID
}

// Schedule attaches the stream to loop. Batches are delivered on the
// goroutine running loop.
func (s *Stream) Schedule(loop *platform.Loop) error {
	s.mu.Lock()
	handle := s.handle
	s.mu.Unlock()

	if handle == nil {
		return &Error{Kind: ErrReleased, Op: "schedule"}
	}

	handle.Schedule(loop)
	s.setState(Scheduled)

	return nil
}

// Start establishes the baseline and starts delivery. When the backend fails
// to start, the stream is left unchanged and Start can be retried.
func (s *Stream) Start() error {
	s.mu.Lock()
	handle := s.handle
	s.mu.Unlock()

	if handle == nil {
		return &Error{Kind: ErrReleased, Op: "start"}
	}

	base, err := s.refresh()
	if err != nil {
		return &Error{Kind: ErrStart, Op: "start", Err: err}
	}

	err = handle.Start()
	if err != nil {
		return &Error{Kind: ErrStart, Op: "start", Err: err}
	}

	s.mu.Lock()
	s.base = base
	s.state = Running
	s.mu.Unlock()

	s.log.Debugf("started stream for %v", s.cfg.Paths)

	return nil
}

// Startup schedules the stream on loop and starts it.
func (s *Stream) Startup(loop *platform.Loop) error {
	err := s.Schedule(loop)
	if err != nil {
		return err
	}

	return s.Start()
}

// Stop halts delivery. The handle stays valid.
func (s *Stream) Stop() {
	handle := s.Handle()
	if handle == nil {
		return
	}

	handle.Stop()
	s.setState(Stopped)
}

// Invalidate detaches the stream from its loop. It must follow Stop.
func (s *Stream) Invalidate() {
	handle := s.Handle()
	if handle == nil {
		return
	}

	handle.Invalidate()
	s.setState(Invalidated)
}

// Release frees the watch handle. Calling Release again has no effect.
func (s *Stream) Release() {
	s.mu.Lock()
	handle := s.handle
	s.handle = nil
	s.mu.Unlock()

	if handle == nil {
		return
	}

	handle.Release()
	s.setState(Released)

	s.log.Debugf("released stream for %v", s.cfg.Paths)
}

// Shutdown stops, invalidates and releases the stream.
func (s *Stream) Shutdown() {
	s.Stop()
	s.Invalidate()
	s.Release()
}

func (s *Stream) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// refresh computes a new baseline: the current time in timestamp mode, a
// complete snapshot of all watched trees in cache mode.
func (s *Stream) refresh() (*Baseline, error) {
	base := &Baseline{Mode: s.cfg.Mode}

	switch s.cfg.Mode {
	case ModeTimestamp:
		base.LastEvent = s.cfg.Now()
	case ModeCache:
		snap, err := snapshot.Refresh(s.cfg.FS, s.cfg.Paths)
		if err != nil {
			return nil, fmt.Errorf("snapshot failed: %w", err)
		}

		base.Snapshot = snap
	}

	return base, nil
}
