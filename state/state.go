// Package state persists the event ID a stream stopped at, so that the next
// run can resume from there.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fd0/changewatch/platform"
)

// State is the serialized cursor of a stream.
type State struct {
	LastEventID platform.EventID `json:"last_event_id"`
	Paths       []string         `json:"paths"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Load loads the state from filename. If the file does not exist, an empty
// State is returned.
func Load(filename string) (State, error) {
	f, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return State{}, nil
	}

	if err != nil {
		return State{}, fmt.Errorf("open state failed: %w", err)
	}

	var st State

	err = json.NewDecoder(f).Decode(&st)
	if err != nil {
		_ = f.Close()

		return State{}, fmt.Errorf("decode state %v failed: %w", filename, err)
	}

	err = f.Close()
	if err != nil {
		return State{}, fmt.Errorf("close state %v failed: %w", filename, err)
	}

	return st, nil
}

// Since returns the event ID to resume from. If the state was recorded for
// different paths or holds no event ID, platform.SinceNow is returned.
func (st State) Since(paths []string) platform.EventID {
	if st.LastEventID == 0 || st.LastEventID == platform.SinceNow {
		return platform.SinceNow
	}

	if len(paths) != len(st.Paths) {
		return platform.SinceNow
	}

	for i := range paths {
		if paths[i] != st.Paths[i] {
			return platform.SinceNow
		}
	}

	return st.LastEventID
}

// Save writes the state to filename. The file is replaced atomically.
func (st State) Save(filename string) error {
	f, err := os.CreateTemp(filepath.Dir(filename), ".state-")
	if err != nil {
		return fmt.Errorf("save state %v failed: %w", filename, err)
	}

	err = json.NewEncoder(f).Encode(st)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())

		return fmt.Errorf("serialize state to JSON failed: %w", err)
	}

	err = f.Close()
	if err != nil {
		_ = os.Remove(f.Name())

		return fmt.Errorf("close state failed: %w", err)
	}

	err = os.Rename(f.Name(), filename)
	if err != nil {
		_ = os.Remove(f.Name())

		return fmt.Errorf("rename state failed: %w", err)
	}

	return nil
}
