// Package debounce coalesces bursts of triggers per key.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs fn for a key on the first trigger of a burst (leading edge)
// and once more after the burst settles if further triggers arrived during
// the window (trailing edge). Every key has its own timer.
//
// The leading call runs on the triggering goroutine, the trailing call on a
// timer goroutine.
type Debouncer struct {
	window time.Duration
	fn     func(key string)

	mu      sync.Mutex
	keys    map[string]*entry
	stopped bool
}

type entry struct {
	timer   *time.Timer
	gen     uint64
	pending bool
}

// New creates a Debouncer. A window <= 0 disables debouncing: every trigger
// calls fn directly.
func New(window time.Duration, fn func(key string)) *Debouncer {
	return &Debouncer{
		window: window,
		fn:     fn,
		keys:   make(map[string]*entry),
	}
}

// Trigger records a change for key.
func (d *Debouncer) Trigger(key string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.window <= 0 {
		d.mu.Unlock()
		d.fn(key)
		return
	}

	e, ok := d.keys[key]
	if !ok {
		e = &entry{}
		d.keys[key] = e
		d.schedule(key, e)
		d.mu.Unlock()
		d.fn(key)
		return
	}

	// Inside the window: reset the timer rather than stacking another one.
	e.pending = true
	d.schedule(key, e)
	d.mu.Unlock()
}

// schedule (re)arms the timer of e. d.mu must be held.
func (d *Debouncer) schedule(key string, e *entry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	e.timer = time.AfterFunc(d.window, func() {
		d.expire(key, e, gen)
	})
}

func (d *Debouncer) expire(key string, e *entry, gen uint64) {
	d.mu.Lock()
	if d.stopped || d.keys[key] != e || e.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.keys, key)
	pending := e.pending
	d.mu.Unlock()

	if pending {
		d.fn(key)
	}
}

// Cancel drops any scheduled trailing call for key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.keys[key]; ok {
		e.timer.Stop()
		delete(d.keys, key)
	}
}

// Pending reports whether key has a trailing call scheduled.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.keys[key]
	return ok && e.pending
}

// Flush runs every scheduled trailing call now.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	var due []string
	for key, e := range d.keys {
		e.timer.Stop()
		if e.pending {
			due = append(due, key)
		}
		delete(d.keys, key)
	}
	d.mu.Unlock()

	for _, key := range due {
		d.fn(key)
	}
}

// Stop cancels all timers. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for key, e := range d.keys {
		e.timer.Stop()
		delete(d.keys, key)
	}
}
