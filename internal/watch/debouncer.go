package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events per path. An event is delivered on C
// once its path has been quiet for the configured interval; only the last
// event of a burst is delivered.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	pending  map[string]*pendingEvent
	out      chan Event
	done     chan struct{}
	stopped  bool
}

type pendingEvent struct {
	timer *time.Timer
	event Event
}

// NewDebouncer creates a debouncer with the given quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		pending:  make(map[string]*pendingEvent),
		out:      make(chan Event),
		done:     make(chan struct{}),
	}
}

// C returns the channel settled events are delivered on.
func (d *Debouncer) C() <-chan Event {
	return d.out
}

// Trigger records ev and restarts the quiet period for its path.
func (d *Debouncer) Trigger(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if p, ok := d.pending[ev.Path]; ok {
		p.timer.Stop()
	}

	p := &pendingEvent{event: ev}
	p.timer = time.AfterFunc(d.interval, func() { d.fire(ev.Path, p) })
	d.pending[ev.Path] = p
}

// Pending returns the number of paths waiting for their quiet period.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.pending)
}

func (d *Debouncer) fire(path string, p *pendingEvent) {
	d.mu.Lock()

	// A timer that lost the race with Stop or a newer Trigger is stale.
	if d.stopped || d.pending[path] != p {
		d.mu.Unlock()
		return
	}

	delete(d.pending, path)
	d.mu.Unlock()

	select {
	case d.out <- p.event:
	case <-d.done:
	}
}

// Stop cancels all pending events. Events not yet delivered are dropped.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.stopped = true

	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}

	close(d.done)
}
