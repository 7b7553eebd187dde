package engine

import "sync"

// Owner is something that can hold the outside-listener slot.
type Owner interface {
	// Evict is called when another owner takes the slot.
	Evict()
}

// Arbiter is a one-slot lock deciding which popup listens for outside
// pointer activity. Taking the slot evicts the previous holder.
type Arbiter struct {
	mu    sync.Mutex
	owner Owner
}

// DefaultArbiter is shared by engines that do not bring their own.
var DefaultArbiter = &Arbiter{}

// Acquire makes o the owner. The previous owner, if different, is evicted
// after the slot has changed hands.
func (a *Arbiter) Acquire(o Owner) {
	a.mu.Lock()
	prev := a.owner
	a.owner = o
	a.mu.Unlock()
	if prev != nil && prev != o {
		prev.Evict()
	}
}

// Release empties the slot if o holds it.
func (a *Arbiter) Release(o Owner) {
	a.mu.Lock()
	if a.owner == o {
		a.owner = nil
	}
	a.mu.Unlock()
}

// Owns reports whether o holds the slot.
func (a *Arbiter) Owns(o Owner) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return o != nil && a.owner == o
}

// Owner returns the current holder, or nil.
func (a *Arbiter) Owner() Owner {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.owner
}
