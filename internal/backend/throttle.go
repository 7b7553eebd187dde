package backend

import (
	"context"
	"sync"
	"time"
)

// throttle spaces out tmux queries so a burst of ticks cannot flood the
// control-mode connection.
type throttle struct {
	gap time.Duration
	now func() time.Time

	mu   sync.Mutex
	last time.Time
}

func newThrottle(gap time.Duration) *throttle {
	return &throttle{gap: gap, now: time.Now}
}

// reserve claims the next slot and returns how long the caller must wait
// for it.
func (t *throttle) reserve() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	slot := now
	if !t.last.IsZero() {
		if earliest := t.last.Add(t.gap); earliest.After(now) {
			slot = earliest
		}
	}
	t.last = slot
	return slot.Sub(now)
}

// wait blocks until the caller's slot arrives. It returns false when ctx
// ends first.
func (t *throttle) wait(ctx context.Context) bool {
	if t == nil || t.gap <= 0 {
		return ctx.Err() == nil
	}
	d := t.reserve()
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
