package stream

import (
	"github.com/fd0/changewatch/platform"
)

// handleBatch is called by the handle on the loop goroutine. It builds the
// events of one batch, passes them to the callback and refreshes the baseline
// once the callback has returned.
func (s *Stream) handleBatch(ids []platform.EventID, paths []string) {
	s.mu.Lock()
	state := s.state
	base := s.base
	s.mu.Unlock()

	if state != Running {
		s.log.Debugf("drop batch of %d events, stream is %v", len(paths), state)

		return
	}

	n := len(ids)
	if len(paths) != n {
		s.log.Warnf("batch has %d IDs but %d paths", len(ids), len(paths))

		if len(paths) < n {
			n = len(paths)
		}
	}

	events := make(EventCollection, 0, n)
	last := platform.EventID(0)

	for i := 0; i < n; i++ {
		events = append(events, NewEvent(ids[i], paths[i], base, s.cfg.FS))

		if ids[i] > last {
			last = ids[i]
		}
	}

	s.log.Debugf("deliver %d events", len(events))

	s.cfg.Callback(events)

	next, err := s.refresh()
	if err != nil {
		s.log.Warnf("refresh failed, keeping the previous baseline: %v", err)
	}

	s.mu.Lock()
	if next != nil {
		s.base = next
	}

	if last > s.lastID {
		s.lastID = last
	}
	s.mu.Unlock()
}
