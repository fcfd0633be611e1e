package view

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// search is committed.
const DefaultDebounce = 250 * time.Millisecond

// Debouncer runs a callback once its trigger has been quiet for a delay.
// At most one timer is pending; each trigger cancels and replaces it, so
// the last trigger wins. Callbacks are posted to the loop rather than run
// on the timer goroutine.
type Debouncer struct {
	clock clock.WithDelayedExecution
	delay time.Duration
	post  func(func())

	mu    sync.Mutex
	timer clock.Timer
	gen   uint64
}

// NewDebouncer returns a debouncer that posts through post.
func NewDebouncer(c clock.WithDelayedExecution, delay time.Duration, post func(func())) *Debouncer {
	return &Debouncer{clock: c, delay: delay, post: post}
}

// Trigger schedules fn, replacing any pending callback.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.post(func() {
			// A timer that fired just before being replaced still
			// posts; the generation check drops it.
			if d.fire(gen) {
				fn()
			}
		})
	})
}

func (d *Debouncer) fire(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen || d.timer == nil {
		return false
	}
	d.timer = nil
	return true
}

// Cancel drops the pending callback, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether a callback is waiting.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
