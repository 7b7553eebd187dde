package timer

import (
	"sort"
	"time"
)

// Clock abstracts wall time so the registry can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	// AfterFunc arranges for f to be called once d has elapsed. The returned
	// function cancels the call and reports whether it was still pending.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// SystemClock is backed by the runtime timers.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, f func()) func() bool {
	t := time.AfterFunc(d, f)
	return t.Stop
}

// ManualClock only moves when Advance is called. Due callbacks run on the
// caller's goroutine in due-time order.
type ManualClock struct {
	now     time.Time
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	due     time.Time
	seq     uint64
	f       func()
	stopped bool
}

// NewManualClock returns a manual clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time { return c.now }

func (c *ManualClock) AfterFunc(d time.Duration, f func()) func() bool {
	if d < 0 {
		d = 0
	}
	c.seq++
	mt := &manualTimer{due: c.now.Add(d), seq: c.seq, f: f}
	c.pending = append(c.pending, mt)
	return func() bool {
		if mt.stopped {
			return false
		}
		mt.stopped = true
		return true
	}
}

// Advance moves the clock forward by d, running every callback that falls due
// on the way. Callbacks scheduled by other callbacks are honoured when they
// fall inside the window.
func (c *ManualClock) Advance(d time.Duration) {
	target := c.now.Add(d)
	for {
		next := c.nextDue(target)
		if next == nil {
			break
		}
		next.stopped = true
		if next.due.After(c.now) {
			c.now = next.due
		}
		next.f()
	}
	c.now = target
	c.compact()
}

// PendingCount reports how many callbacks are still waiting.
func (c *ManualClock) PendingCount() int {
	n := 0
	for _, mt := range c.pending {
		if !mt.stopped {
			n++
		}
	}
	return n
}

func (c *ManualClock) nextDue(limit time.Time) *manualTimer {
	live := make([]*manualTimer, 0, len(c.pending))
	for _, mt := range c.pending {
		if !mt.stopped && !mt.due.After(limit) {
			live = append(live, mt)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].due.Equal(live[j].due) {
			return live[i].seq < live[j].seq
		}
		return live[i].due.Before(live[j].due)
	})
	return live[0]
}

func (c *ManualClock) compact() {
	kept := c.pending[:0]
	for _, mt := range c.pending {
		if !mt.stopped {
			kept = append(kept, mt)
		}
	}
	c.pending = kept
}
