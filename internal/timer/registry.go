// Package timer provides named, cancelable delayed and repeating callbacks.
//
// A Registry never runs callbacks on the clock's goroutine. When a timer
// expires the registry posts a Fired value; the owner of the event loop hands
// it back to Fire, which runs the callback only if the handle is still the
// live one for its key. Scheduling under a key that already has a live timer
// cancels that timer first, so a key never has more than one pending callback.
package timer

import "time"

// Handle identifies one scheduled callback. The zero Handle refers to nothing.
type Handle struct {
	Key string
	ID  uint64
}

// IsZero reports whether h refers to no timer.
func (h Handle) IsZero() bool { return h.ID == 0 }

// Fired is posted to the event loop when a timer expires.
type Fired struct {
	Handle Handle
}

type entry struct {
	handle   Handle
	interval time.Duration
	callback func()
	stop     func() bool
}

// Registry tracks at most one live timer per key.
type Registry struct {
	clock   Clock
	post    func(Fired)
	seq     uint64
	entries map[string]*entry
}

// NewRegistry builds a registry on clock. post delivers expirations to the
// event loop; when nil, expirations are fired synchronously from the clock's
// callback, which is only appropriate with a ManualClock.
func NewRegistry(clock Clock, post func(Fired)) *Registry {
	if clock == nil {
		clock = SystemClock{}
	}
	r := &Registry{clock: clock, entries: make(map[string]*entry)}
	if post == nil {
		post = func(f Fired) { r.Fire(f) }
	}
	r.post = post
	return r
}

// Now returns the registry clock's current time.
func (r *Registry) Now() time.Time { return r.clock.Now() }

// Schedule runs callback once after delay, replacing any live timer for key.
func (r *Registry) Schedule(key string, delay time.Duration, callback func()) Handle {
	return r.schedule(key, delay, 0, callback)
}

// RescheduleRepeating runs callback after initialDelay and then every interval
// until the handle is canceled or the key is scheduled again.
func (r *Registry) RescheduleRepeating(key string, initialDelay, interval time.Duration, callback func()) Handle {
	if interval <= 0 {
		return r.schedule(key, initialDelay, 0, callback)
	}
	return r.schedule(key, initialDelay, interval, callback)
}

func (r *Registry) schedule(key string, delay, interval time.Duration, callback func()) Handle {
	r.CancelKey(key)
	if callback == nil {
		return Handle{}
	}
	r.seq++
	e := &entry{
		handle:   Handle{Key: key, ID: r.seq},
		interval: interval,
		callback: callback,
	}
	r.entries[key] = e
	r.arm(e, delay)
	return e.handle
}

func (r *Registry) arm(e *entry, delay time.Duration) {
	h := e.handle
	e.stop = r.clock.AfterFunc(delay, func() { r.post(Fired{Handle: h}) })
}

// Cancel stops the timer identified by h. Canceling a stale or zero handle is a no-op.
func (r *Registry) Cancel(h Handle) {
	if h.IsZero() {
		return
	}
	e, ok := r.entries[h.Key]
	if !ok || e.handle != h {
		return
	}
	r.drop(e)
}

// CancelKey stops whatever timer is live for key.
func (r *Registry) CancelKey(key string) {
	if e, ok := r.entries[key]; ok {
		r.drop(e)
	}
}

// CancelAll stops every live timer.
func (r *Registry) CancelAll() {
	for _, e := range r.entries {
		r.drop(e)
	}
}

func (r *Registry) drop(e *entry) {
	if e.stop != nil {
		e.stop()
	}
	delete(r.entries, e.handle.Key)
}

// Pending reports whether key has a live timer.
func (r *Registry) Pending(key string) bool {
	_, ok := r.entries[key]
	return ok
}

// Live reports whether h is still the live timer for its key.
func (r *Registry) Live(h Handle) bool {
	if h.IsZero() {
		return false
	}
	e, ok := r.entries[h.Key]
	return ok && e.handle == h
}

// Fire runs the callback for f when its handle is still live. It must be
// called from the event loop. It reports whether a callback ran.
func (r *Registry) Fire(f Fired) bool {
	e, ok := r.entries[f.Handle.Key]
	if !ok || e.handle != f.Handle {
		return false
	}
	if e.interval > 0 {
		r.arm(e, e.interval)
	} else {
		delete(r.entries, e.handle.Key)
	}
	e.callback()
	return true
}
