// Package debounce collapses bursts of calls into one deferred call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds at most one pending call. Scheduling a new call cancels
// the pending one and restarts the quiet period.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	gen     uint64
	stopped bool
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule arms fn to run after the quiet period.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// a newer Schedule, Flush or Cancel superseded this timer
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	fn()
}

// Pending reports whether a call is waiting.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Flush runs the pending call now, on the caller's goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Cancel drops the pending call without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels the pending call and ignores later schedules.
func (d *Debouncer) Stop() {
	d.Cancel()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
