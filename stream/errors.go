package stream

import (
	"errors"
	"fmt"
)

var (
	// ErrCreate is returned when the backend yields no watch handle.
	ErrCreate = errors.New("unable to create stream")

	// ErrStart is returned when the backend fails to start the handle. The
	// stream can be started again.
	ErrStart = errors.New("unable to start stream")

	// ErrUnsupported is returned by DeletedFiles in timestamp mode, which
	// does not remember which files existed before.
	ErrUnsupported = errors.New("operation not supported in timestamp mode")

	// ErrInvalidConfig is returned by New for an invalid Config.
	ErrInvalidConfig = errors.New("invalid stream config")

	// ErrReleased is returned when a released stream is scheduled or started.
	ErrReleased = errors.New("stream has been released")
)

// Error describes a failed operation. Kind is one of the sentinel errors
// above, errors.Is matches both Kind and the underlying cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %v", e.Op, e.Kind)
	}

	return fmt.Sprintf("%v: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}
