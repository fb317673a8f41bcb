// Package debounce provides a trailing-edge debouncer: the wrapped function
// runs once after a quiet period, and any call arriving before the period
// elapses cancels the pending run and restarts the wait.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiet period used when none is configured. It matches
// the interactive-input coalescing window the catalog UI expects.
const DefaultWindow = 300 * time.Millisecond

// Func debounces calls to a function. Safe for concurrent use.
type Func struct {
	window time.Duration
	fn     func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// New returns a debouncer that runs fn once per quiet period. A non-positive
// window falls back to DefaultWindow.
func New(window time.Duration, fn func()) *Func {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Func{window: window, fn: fn}
}

// Call schedules fn to run after the quiet period, cancelling any pending
// run. fn executes on a timer goroutine.
func (d *Func) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fn)
}

// Stop cancels any pending run and rejects further calls. It does not wait
// for an in-flight fn to return.
func (d *Func) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
