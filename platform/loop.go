package platform

import (
	"context"
	"sync"
)

const defaultLoopQueueSize = 20

// Loop runs posted functions one after another on the goroutine which calls
// Run. All batches of the handles scheduled on a loop are delivered there.
type Loop struct {
	queue chan func()

	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop returns a new loop. It does nothing until Run is called.
func NewLoop() *Loop {
	return &Loop{
		queue: make(chan func(), defaultLoopQueueSize),
		done:  make(chan struct{}),
	}
}

// Post queues fn. It blocks while the queue is full and returns false if the
// loop has been stopped before fn could be queued.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run executes posted functions until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.done:
			return nil
		case fn := <-l.queue:
			fn()
		}
	}
}

// Stop makes Run return. Functions still queued are discarded.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}
