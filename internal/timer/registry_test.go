package timer

import (
	"testing"
	"time"
)

func newTestRegistry() (*Registry, *ManualClock) {
	clk := NewManualClock(time.Unix(0, 0))
	return NewRegistry(clk, nil), clk
}

func TestScheduleFiresOnceAfterDelay(t *testing.T) {
	r, clk := newTestRegistry()
	calls := 0
	r.Schedule("close", 700*time.Millisecond, func() { calls++ })

	clk.Advance(699 * time.Millisecond)
	if calls != 0 {
		t.Fatalf("expected no call before delay, got %d", calls)
	}
	clk.Advance(time.Millisecond)
	if calls != 1 {
		t.Fatalf("expected one call at delay, got %d", calls)
	}
	clk.Advance(time.Second)
	if calls != 1 {
		t.Fatalf("expected single shot, got %d", calls)
	}
	if r.Pending("close") {
		t.Fatalf("expected key cleared after firing")
	}
}

func TestNilPostFiresFromClockCallback(t *testing.T) {
	clk := NewManualClock(time.Unix(0, 0))
	r := NewRegistry(clk, nil)
	calls := 0
	h := r.Schedule("collapse", 100*time.Millisecond, func() { calls++ })
	clk.Advance(100 * time.Millisecond)
	if calls != 1 {
		t.Fatalf("expected synchronous fire without a post func, got %d calls", calls)
	}
	if r.Live(h) {
		t.Fatalf("expected handle spent after firing")
	}
}

func TestScheduleSameKeyReplacesPrevious(t *testing.T) {
	r, clk := newTestRegistry()
	var fired []string
	first := r.Schedule("close", 100*time.Millisecond, func() { fired = append(fired, "first") })
	second := r.Schedule("close", 300*time.Millisecond, func() { fired = append(fired, "second") })
	if r.Live(first) {
		t.Fatalf("expected first handle to be stale")
	}
	if !r.Live(second) {
		t.Fatalf("expected second handle to be live")
	}
	clk.Advance(time.Second)
	if len(fired) != 1 || fired[0] != "second" {
		t.Fatalf("expected only second callback, got %v", fired)
	}
}

func TestCancelStopsCallback(t *testing.T) {
	r, clk := newTestRegistry()
	calls := 0
	h := r.Schedule("collapse", 100*time.Millisecond, func() { calls++ })
	r.Cancel(h)
	clk.Advance(time.Second)
	if calls != 0 {
		t.Fatalf("expected canceled callback not to run, got %d", calls)
	}
	r.Cancel(h)
	r.Cancel(Handle{})
}

func TestCancelStaleHandleKeepsNewerTimer(t *testing.T) {
	r, clk := newTestRegistry()
	calls := 0
	old := r.Schedule("k", 50*time.Millisecond, func() {})
	r.Schedule("k", 50*time.Millisecond, func() { calls++ })
	r.Cancel(old)
	clk.Advance(50 * time.Millisecond)
	if calls != 1 {
		t.Fatalf("expected newer timer to survive stale cancel, got %d calls", calls)
	}
}

func TestStaleFiredIsDropped(t *testing.T) {
	clk := NewManualClock(time.Unix(0, 0))
	var queued []Fired
	r := NewRegistry(clk, func(f Fired) { queued = append(queued, f) })
	calls := 0
	r.Schedule("k", 10*time.Millisecond, func() { calls++ })
	clk.Advance(10 * time.Millisecond)
	if len(queued) != 1 {
		t.Fatalf("expected one posted expiry, got %d", len(queued))
	}
	r.Schedule("k", 10*time.Millisecond, func() { calls += 10 })
	if r.Fire(queued[0]) {
		t.Fatalf("expected stale expiry to be dropped")
	}
	if calls != 0 {
		t.Fatalf("expected no callback from stale expiry, got %d", calls)
	}
}

func TestRescheduleRepeating(t *testing.T) {
	r, clk := newTestRegistry()
	calls := 0
	h := r.RescheduleRepeating("poll", 100*time.Millisecond, 50*time.Millisecond, func() { calls++ })
	clk.Advance(100 * time.Millisecond)
	if calls != 1 {
		t.Fatalf("expected first call after initial delay, got %d", calls)
	}
	clk.Advance(150 * time.Millisecond)
	if calls != 4 {
		t.Fatalf("expected three interval calls, got %d", calls)
	}
	r.Cancel(h)
	clk.Advance(time.Second)
	if calls != 4 {
		t.Fatalf("expected no calls after cancel, got %d", calls)
	}
}

func TestCallbackMayRescheduleItsOwnKey(t *testing.T) {
	r, clk := newTestRegistry()
	calls := 0
	var tick func()
	tick = func() {
		calls++
		if calls < 3 {
			r.Schedule("again", 10*time.Millisecond, tick)
		}
	}
	r.Schedule("again", 10*time.Millisecond, tick)
	clk.Advance(100 * time.Millisecond)
	if calls != 3 {
		t.Fatalf("expected chained callbacks to run 3 times, got %d", calls)
	}
}

func TestCancelAll(t *testing.T) {
	r, clk := newTestRegistry()
	calls := 0
	r.Schedule("a", time.Millisecond, func() { calls++ })
	r.Schedule("b", time.Millisecond, func() { calls++ })
	r.CancelAll()
	clk.Advance(time.Second)
	if calls != 0 {
		t.Fatalf("expected no callbacks, got %d", calls)
	}
	if clk.PendingCount() != 0 {
		t.Fatalf("expected clock drained, got %d pending", clk.PendingCount())
	}
}
