package engine

import (
	"testing"
	"time"

	"github.com/atomicstack/tmux-popup-menu/internal/input"
	"github.com/atomicstack/tmux-popup-menu/internal/menu"
	"github.com/atomicstack/tmux-popup-menu/internal/timer"
)

type recorder struct {
	root     menu.Entry
	err      error
	selected []string
	expanded []string
	focused  []string
}

func (r *recorder) Tree() (menu.Entry, error) { return r.root, r.err }

func (r *recorder) OnSelect(n *menu.Node) { r.selected = append(r.selected, n.ID) }

func (r *recorder) OnExpand(n *menu.Node) { r.expanded = append(r.expanded, n.ID) }

func (r *recorder) OnFocusChange(n *menu.Node) {
	id := ""
	if n != nil {
		id = n.ID
	}
	r.focused = append(r.focused, id)
}

// fileEditMenu is File > {New, Open, Exit}, Edit > {Copy, Paste}.
func fileEditMenu() menu.Entry {
	return menu.Entry{Items: []menu.Entry{
		{Label: "&File", Items: []menu.Entry{
			{Label: "&New", Command: []string{"new-window"}},
			{Label: "&Open", Command: []string{"choose-tree"}},
			{Label: "E&xit", Command: []string{"detach-client"}},
		}},
		{Label: "&Edit", Items: []menu.Entry{
			{Label: "&Copy", Command: []string{"copy-mode"}},
			{Label: "&Paste", Command: []string{"paste-buffer"}},
		}},
	}}
}

type fixture struct {
	t     *testing.T
	e     *Engine
	host  *recorder
	clock *timer.ManualClock
	arb   *Arbiter
}

func newFixture(t *testing.T, root menu.Entry) *fixture {
	t.Helper()
	return newFixtureWithArbiter(t, root, &Arbiter{})
}

func newFixtureWithArbiter(t *testing.T, root menu.Entry, arb *Arbiter) *fixture {
	t.Helper()
	host := &recorder{root: root}
	clock := timer.NewManualClock(time.Unix(0, 0))
	e := New(host, Options{Clock: clock, Arbiter: arb})
	if err := e.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return &fixture{t: t, e: e, host: host, clock: clock, arb: arb}
}

func (f *fixture) node(id string) *menu.Node {
	f.t.Helper()
	n, ok := f.e.Tree().Find(id)
	if !ok {
		f.t.Fatalf("expected node %q", id)
	}
	return n
}

func (f *fixture) open() {
	f.e.Open(Position{X: 1, Y: 1})
}

func (f *fixture) advance(d time.Duration) {
	f.clock.Advance(d)
}

func (f *fixture) hoverEnter(id string) {
	f.e.Dispatch(Event{Command: CmdHoverEnter, Node: f.node(id), Input: input.KindPointerMove})
}

func (f *fixture) hoverLeave(id string, related *menu.Node) {
	f.e.Dispatch(Event{Command: CmdHoverLeave, Node: f.node(id), Related: related, Input: input.KindPointerMove})
}

func (f *fixture) press(id string) {
	f.e.Dispatch(Event{Command: CmdPress, Node: f.node(id)})
}

func (f *fixture) release(id string) {
	f.e.Dispatch(Event{Command: CmdRelease, Node: f.node(id)})
}

func (f *fixture) click(id string) {
	f.e.Dispatch(Event{Command: CmdClick, Node: f.node(id)})
}

func (f *fixture) key(d Direction) {
	f.e.Dispatch(Event{Command: CmdNavigate, Direction: d})
}

func (f *fixture) clickOutside() {
	f.e.Dispatch(Event{Command: CmdClickOutside, Input: input.KindPointerDown})
}

func (f *fixture) expectActive(id string) {
	f.t.Helper()
	got := nodeID(f.e.Active())
	if got != id {
		f.t.Fatalf("expected active %q, got %q", id, got)
	}
}

func (f *fixture) expectScope(id string) {
	f.t.Helper()
	got := nodeID(f.e.Scope())
	if got != id {
		f.t.Fatalf("expected scope %q, got %q", id, got)
	}
}

func (f *fixture) expectSelected(ids ...string) {
	f.t.Helper()
	if len(f.host.selected) != len(ids) {
		f.t.Fatalf("expected selections %v, got %v", ids, f.host.selected)
	}
	for i := range ids {
		if f.host.selected[i] != ids[i] {
			f.t.Fatalf("expected selections %v, got %v", ids, f.host.selected)
		}
	}
}
