package platform

import (
	"sync"
	"time"
)

// dispatcher coalesces changed directories for the configured latency and
// posts them as one batch to the loop the handle is scheduled on. It holds
// the delivery state shared by the channel based backends.
type dispatcher struct {
	deliver DeliverFunc
	latency time.Duration

	mu       sync.Mutex
	loop     *Loop
	active   bool
	released bool
	nextID   EventID

	pending []string
	seen    map[string]struct{}
	timer   *time.Timer
}

func newDispatcher(cfg Config) *dispatcher {
	next := EventID(1)
	if cfg.Since != SinceNow {
		// history cannot be replayed, but IDs continue after the cursor
		next = cfg.Since + 1
	}

	return &dispatcher{
		deliver: cfg.Deliver,
		latency: cfg.Latency,
		nextID:  next,
		seen:    make(map[string]struct{}),
	}
}

// Schedule attaches the dispatcher to loop.
func (d *dispatcher) Schedule(loop *Loop) {
	d.mu.Lock()
	d.loop = loop
	d.mu.Unlock()
}

// Invalidate detaches the dispatcher from its loop.
func (d *dispatcher) Invalidate() {
	d.mu.Lock()
	d.loop = nil
	d.mu.Unlock()
}

// activate enables delivery. It fails if the handle has been released.
func (d *dispatcher) activate() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return ErrReleased
	}

	d.active = true

	return nil
}

func (d *dispatcher) isReleased() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.released
}

// deactivate disables delivery and drops pending paths. When release is set,
// the dispatcher cannot be activated again.
func (d *dispatcher) deactivate(release bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.active = false
	if release {
		d.released = true
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.pending = nil
	d.seen = make(map[string]struct{})
}

// add records that dir changed. The first path after a flush arms the
// latency timer.
func (d *dispatcher) add(dir string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return
	}

	if _, ok := d.seen[dir]; ok {
		return
	}

	d.seen[dir] = struct{}{}
	d.pending = append(d.pending, dir)

	if d.timer == nil {
		d.timer = time.AfterFunc(d.latency, d.flush)
	}
}

// flush posts all pending paths as one batch.
func (d *dispatcher) flush() {
	d.mu.Lock()

	paths := d.pending
	d.pending = nil
	d.seen = make(map[string]struct{})
	d.timer = nil

	ids := make([]EventID, len(paths))
	for i := range ids {
		ids[i] = d.nextID
		d.nextID++
	}

	d.mu.Unlock()

	d.post(ids, paths)
}

// post queues a batch on the loop if the handle is active and scheduled.
func (d *dispatcher) post(ids []EventID, paths []string) {
	d.mu.Lock()
	loop := d.loop
	active := d.active
	d.mu.Unlock()

	if !active || loop == nil || len(paths) == 0 {
		return
	}

	loop.Post(func() {
		// the handle may have been stopped while the batch was queued
		if !d.deliverable(loop) {
			return
		}

		d.deliver(ids, paths)
	})
}

func (d *dispatcher) deliverable(loop *Loop) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.active && d.loop == loop
}
