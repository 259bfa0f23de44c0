package converter

import (
	"sync"
	"time"
)

// Debouncer runs fn once input has been quiet for a fixed window. Each Trigger
// cancels the pending timer and arms a new one.
type Debouncer struct {
	window time.Duration
	fn     func()

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// NewDebouncer returns a Debouncer that calls fn after window of quiet.
func NewDebouncer(window time.Duration, fn func()) *Debouncer {
	return &Debouncer{window: window, fn: fn}
}

// Trigger records a change and re-arms the timer.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.fire(gen) })
}

// fire runs fn unless a later Trigger, Flush or Stop superseded gen.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}

// Flush runs fn now if a timer is pending and reports whether it did.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.stopped || d.timer == nil {
		d.mu.Unlock()
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	d.mu.Unlock()
	d.fn()
	return true
}

// Pending reports whether a timer is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop disarms the timer permanently. Later Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
