// Package platform contains the watch primitives a stream is built on: a
// backend creates handles which deliver coalesced batches of changed
// directories onto a dispatch loop.
package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"time"
)

// EventID identifies a notification. IDs increase monotonically.
type EventID uint64

// SinceNow requests notifications for changes after the handle is started.
const SinceNow EventID = math.MaxUint64

// Flags are passed to the backend when a handle is created. The values match
// the FSEvents stream creation flags; backends ignore flags they do not know.
type Flags uint32

const (
	FlagUseCFTypes Flags = 1 << iota
	FlagNoDefer
	FlagWatchRoot
	FlagIgnoreSelf
	FlagFileEvents
)

// DeliverFunc is called with a batch of notifications. ids and paths are
// parallel slices.
type DeliverFunc func(ids []EventID, paths []string)

// Config describes the handle to create.
type Config struct {
	Paths   []string
	Since   EventID
	Latency time.Duration
	Flags   Flags

	// Deliver is called on the loop the handle is scheduled on.
	Deliver DeliverFunc
}

// Backend creates watch handles.
type Backend interface {
	Create(cfg Config) (Handle, error)
}

// Handle is a watch resource created by a Backend.
type Handle interface {
	// Schedule attaches the handle to loop, batches are delivered there.
	Schedule(loop *Loop)

	// Start begins delivery. It fails immediately if the watch cannot be
	// established, the handle can be started again later.
	Start() error

	// Stop halts delivery.
	Stop()

	// Invalidate detaches the handle from its loop.
	Invalidate()

	// Release frees all resources, the handle must not be used afterwards.
	Release()
}

// ErrReleased is returned when a released handle is started.
var ErrReleased = errors.New("handle has been released")

// ErrUnknownBackend is returned by Open for unsupported backend names.
var ErrUnknownBackend = errors.New("unknown backend")

// Open returns the backend with the given name.
func Open(name string) (Backend, error) {
	switch name {
	case "notify", "":
		return &NotifyBackend{}, nil
	case "fsnotify":
		return &FSNotifyBackend{}, nil
	case "fsevents":
		return newFSEventsBackend()
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownBackend, name)
	}
}

func errorIsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
