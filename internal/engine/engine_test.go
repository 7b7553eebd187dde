package engine

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/atomicstack/tmux-popup-menu/internal/input"
	"github.com/atomicstack/tmux-popup-menu/internal/menu"
)

func TestOpenStartsWithoutFocus(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	if f.e.State() != StateClosed {
		t.Fatalf("expected closed before open, got %s", f.e.State())
	}
	f.open()
	if f.e.State() != StateOpenNoFocus {
		t.Fatalf("expected open-no-focus, got %s", f.e.State())
	}
	if !f.e.Tree().Root().IsOpen() || f.e.Mode() != input.ModeUnknown {
		t.Fatalf("expected open root and unknown mode")
	}
	f.expectScope("root")
	if pos := f.e.Session().Position(); pos != (Position{X: 1, Y: 1}) {
		t.Fatalf("expected position to be kept, got %+v", pos)
	}
}

func TestHoverFileThenClickExitSelectsAndCollapses(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()

	f.hoverEnter("root:file")
	if f.e.Mode() != input.ModePointer {
		t.Fatalf("expected pointer mode, got %s", f.e.Mode())
	}
	if !f.node("root:file").IsOpen() {
		t.Fatalf("expected File submenu open")
	}
	f.expectScope("root:file")
	if f.e.State() != StateOpenSubmenuExpanded {
		t.Fatalf("expected submenu-expanded, got %s", f.e.State())
	}

	f.click("root:file:exit")
	f.expectSelected("root:file:exit")
	if f.e.Closed() {
		t.Fatalf("expected collapse to wait for the debounce")
	}
	f.advance(CollapseDelay)
	if !f.e.Closed() || f.e.State() != StateClosed {
		t.Fatalf("expected tree collapsed after selection")
	}
	if panels := f.e.OpenPanels(); len(panels) != 0 {
		t.Fatalf("expected no open panels, got %d", len(panels))
	}
	if f.e.Active() != nil {
		t.Fatalf("expected no active node")
	}
	if last := f.host.focused[len(f.host.focused)-1]; last != "" {
		t.Fatalf("expected final focus change to nil, got %q", last)
	}
}

func TestHoverReenterCancelsPendingClose(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.hoverEnter("root:file")
	f.hoverLeave("root:file", nil)
	if !f.e.Pending(keyClose) {
		t.Fatalf("expected close timer after leaving the tree")
	}
	f.advance(CloseDelay / 2)
	if !f.node("root:file").IsOpen() {
		t.Fatalf("expected submenu still open during close delay")
	}
	f.hoverEnter("root:file")
	if f.e.Pending(keyClose) {
		t.Fatalf("expected re-enter to cancel the close timer")
	}
	f.advance(2 * CloseDelay)
	if f.e.Closed() || !f.node("root:file").IsOpen() {
		t.Fatalf("expected submenu to stay open")
	}
	if len(f.host.expanded) != 1 {
		t.Fatalf("expected a single expansion, got %v", f.host.expanded)
	}
}

func TestHoverLeaveOutsideCollapsesAfterDelays(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.hoverEnter("root:file")
	f.hoverLeave("root:file", nil)

	f.advance(CloseDelay - time.Millisecond)
	if f.e.Closed() {
		t.Fatalf("expected still open before close delay")
	}
	f.advance(time.Millisecond)
	if f.e.Closed() {
		t.Fatalf("expected collapse to be debounced")
	}
	f.advance(CollapseDelay)
	if !f.e.Closed() {
		t.Fatalf("expected closed after close delay and debounce")
	}
}

func TestHoverLeaveInsideTreeOrHelperKeepsOpen(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.hoverEnter("root:file")
	f.hoverLeave("root:file", f.node("root:file:new"))
	if f.e.Pending(keyClose) {
		t.Fatalf("expected no close timer when moving inside the tree")
	}
	f.e.Dispatch(Event{Command: CmdHoverLeave, Node: f.node("root:file"), RelatedHelper: true})
	if f.e.Pending(keyClose) {
		t.Fatalf("expected no close timer when moving onto a helper")
	}
}

func TestHoverOnPanelBackgroundCancelsClose(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.hoverEnter("root:file")
	f.hoverLeave("root:file", nil)
	f.e.Dispatch(Event{Command: CmdHoverEnter, Input: input.KindPointerMove})
	if f.e.Pending(keyClose) {
		t.Fatalf("expected background hover to cancel close")
	}
	f.expectActive("root:file")
}

func TestHoverSequencesConvergeAfterCollapseAll(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		f := newFixture(t, fileEditMenu())
		var nodes []*menu.Node
		f.e.Tree().Walk(func(n *menu.Node) bool {
			nodes = append(nodes, n)
			return true
		})
		rng := rand.New(rand.NewSource(seed))
		f.open()
		for i := 0; i < 50; i++ {
			n := nodes[rng.Intn(len(nodes))]
			if rng.Intn(2) == 0 {
				f.e.Dispatch(Event{Command: CmdHoverEnter, Node: n, Input: input.KindPointerOver})
			} else {
				var related *menu.Node
				if rng.Intn(3) > 0 {
					related = nodes[rng.Intn(len(nodes))]
				}
				f.e.Dispatch(Event{Command: CmdHoverLeave, Node: n, Related: related, Input: input.KindPointerMove})
			}
			f.advance(time.Duration(rng.Intn(300)) * time.Millisecond)
		}
		f.e.Close()
		f.advance(CollapseDelay)
		if !f.e.Closed() || len(f.e.OpenPanels()) != 0 {
			t.Fatalf("seed %d: expected every panel closed within one debounce", seed)
		}
	}
}

func TestPressReleaseOnDifferentNodesNeverSelects(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.hoverEnter("root:file")

	f.press("root:file:new")
	f.release("root:file:open")
	f.expectSelected()
	if f.e.Session().Pressed() != nil {
		t.Fatalf("expected press candidate cleared by release")
	}
	f.release("root:file:new")
	f.expectSelected()

	f.press("root:file:new")
	f.release("root:file:new")
	f.expectSelected("root:file:new")
}

func TestSyntheticPointerClickAfterReleaseIsDropped(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.hoverEnter("root:file")
	f.press("root:file:new")
	f.release("root:file:new")
	f.e.Dispatch(Event{Command: CmdClick, Node: f.node("root:file:new"), Input: input.KindPointerUp})
	f.expectSelected("root:file:new")

	f.click("root:file:new")
	f.expectSelected("root:file:new", "root:file:new")
}

func TestTouchModeNeverAutoExpandsOnHover(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.press("root:edit")
	if f.e.Mode() != input.ModeTouch {
		t.Fatalf("expected touch mode after a press with no prior hover, got %s", f.e.Mode())
	}
	if f.node("root:edit").IsOpen() {
		t.Fatalf("expected press alone not to expand")
	}
	f.release("root:edit")
	if !f.node("root:edit").IsOpen() {
		t.Fatalf("expected tap to expand the submenu")
	}

	f.e.Dispatch(Event{Command: CmdHoverEnter, Node: f.node("root:file")})
	f.e.Dispatch(Event{Command: CmdHoverEnter, Node: f.node("root:file"), Input: input.KindPointerDown})
	if f.node("root:file").IsOpen() {
		t.Fatalf("expected no hover expansion in touch mode")
	}
	f.expectActive("root:file")
	f.expectScope("root")
	if f.e.Mode() != input.ModeTouch {
		t.Fatalf("expected mode to stay touch, got %s", f.e.Mode())
	}
}

func TestTouchSelectionKeepsTreeOpen(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.press("root:file")
	f.release("root:file")
	f.press("root:file:new")
	f.release("root:file:new")
	f.expectSelected("root:file:new")
	f.advance(time.Second)
	if f.e.Closed() {
		t.Fatalf("expected touch selection to leave the tree open")
	}
}

func TestDisabledAndSeparatorTargetsAreIgnored(t *testing.T) {
	f := newFixture(t, menu.Entry{Items: []menu.Entry{
		{Label: "Alpha"},
		{Separator: true},
		{Label: "Gone", Disabled: true},
		{Label: "Sub", Disabled: true, Items: []menu.Entry{{Label: "x"}}},
	}})
	f.open()
	f.hoverEnter("root:sep1")
	f.hoverEnter("root:gone")
	f.hoverEnter("root:sub")
	if f.e.Active() != nil {
		t.Fatalf("expected nothing active, got %s", f.e.Active().ID)
	}
	f.press("root:gone")
	if f.e.Session().Pressed() != nil {
		t.Fatalf("expected disabled node never recorded as pressed")
	}
	f.click("root:gone")
	f.click("root:sub")
	f.expectSelected()
	if f.node("root:sub").IsOpen() {
		t.Fatalf("expected disabled submenu to stay closed")
	}
}

func TestCommandsAfterCloseAreIgnoredUntilOpen(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.hoverEnter("root:file")
	f.e.Close()
	f.advance(CollapseDelay)

	f.hoverEnter("root:edit")
	f.click("root:edit:copy")
	f.key(DirNext)
	if f.e.Active() != nil || f.node("root:edit").IsOpen() {
		t.Fatalf("expected closed session to ignore input")
	}
	f.expectSelected()

	f.open()
	if f.e.Mode() != input.ModeUnknown || f.e.State() != StateOpenNoFocus {
		t.Fatalf("expected a fresh session, got %s/%s", f.e.Mode(), f.e.State())
	}
}

func TestCollapseIsSkippedWhenGestureExpandsSubmenu(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.e.Close()
	f.click("root:file")
	f.advance(CollapseDelay)
	if f.e.Closed() || !f.node("root:file").IsOpen() {
		t.Fatalf("expected the pending collapse to be skipped")
	}
	if f.e.Session().Suppressed() {
		t.Fatalf("expected the skipped collapse to spend the suppression")
	}
}

func TestCloseTimerAfterSubmenuClickStillCollapses(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.hoverEnter("root:file")
	f.hoverLeave("root:file", nil)
	f.click("root:edit")
	if !f.e.Session().Suppressed() {
		t.Fatalf("expected click on a submenu to suppress click-outside")
	}
	f.advance(CloseDelay + 2*CollapseDelay)
	if !f.e.Closed() {
		t.Fatalf("expected the expired close timer to collapse the tree")
	}
	if f.e.Session().Suppressed() {
		t.Fatalf("expected suppression spent once the tree closed")
	}
}

func TestRefreshTwiceKeepsSessionReferences(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.hoverEnter("root:file")
	f.key(DirNext)
	active := f.e.Active()
	children := append([]*menu.Node(nil), f.e.Tree().Root().Children()...)

	for i := 0; i < 2; i++ {
		if err := f.e.Refresh(); err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	if f.e.Active() != active {
		t.Fatalf("expected active node identity to survive refresh")
	}
	for i, c := range f.e.Tree().Root().Children() {
		if c != children[i] {
			t.Fatalf("expected child %d identity to be stable", i)
		}
	}
	if !f.node("root:file").IsOpen() {
		t.Fatalf("expected open state to survive refresh")
	}
}

func TestRefreshDropsRemovedReferences(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.hoverEnter("root:file")
	f.key(DirNext)
	stale := f.node("root:file:new")
	f.expectActive("root:file:new")

	root := fileEditMenu()
	root.Items[0].Items = root.Items[0].Items[1:]
	f.host.root = root
	if err := f.e.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if f.e.Active() != nil {
		t.Fatalf("expected removed active node to be dropped")
	}
	f.expectScope("root:file")
	f.click("root:file:open")
	f.e.Dispatch(Event{Command: CmdClick, Node: stale})
	f.expectSelected("root:file:open")

	f.host.root = menu.Entry{Items: fileEditMenu().Items[1:]}
	f.open()
	f.hoverEnter("root:file")
	if err := f.e.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	f.expectScope("root")
}

func TestRefreshErrorKeepsTree(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.host.err = errors.New("no menu")
	if err := f.e.Refresh(); err == nil {
		t.Fatalf("expected refresh error")
	}
	if _, ok := f.e.Tree().Find("root:file"); !ok {
		t.Fatalf("expected previous tree kept")
	}
}

func TestFocusAndBlur(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.e.Dispatch(Event{Command: CmdFocus})
	f.expectActive("root:file")

	f.e.Dispatch(Event{Command: CmdBlur})
	f.advance(BlurDelay - time.Millisecond)
	f.e.Dispatch(Event{Command: CmdFocus})
	f.advance(time.Second)
	if f.e.Closed() {
		t.Fatalf("expected returning focus to cancel the blur close")
	}

	f.e.Dispatch(Event{Command: CmdBlur})
	f.advance(BlurDelay + CollapseDelay)
	if !f.e.Closed() {
		t.Fatalf("expected blur to collapse the tree")
	}
}

func TestRevealOpensChain(t *testing.T) {
	f := newFixture(t, menu.Entry{Items: []menu.Entry{
		{Label: "File", Items: []menu.Entry{
			{Label: "New"},
			{Label: "Recent", Items: []menu.Entry{{Label: "a"}, {Label: "b"}}},
		}},
		{Label: "Edit", Items: []menu.Entry{{Label: "Copy"}}},
	}})
	f.open()
	if !f.e.Reveal(f.node("root:file:recent")) {
		t.Fatalf("expected reveal to succeed")
	}
	if !f.node("root:file").IsOpen() || !f.node("root:file:recent").IsOpen() {
		t.Fatalf("expected chain open")
	}
	f.expectActive("root:file:recent:a")
	f.expectScope("root:file:recent")

	if !f.e.Reveal(f.node("root:edit:copy")) {
		t.Fatalf("expected reveal of an item to succeed")
	}
	f.expectActive("root:edit:copy")
	if f.node("root:file").IsOpen() {
		t.Fatalf("expected sibling chain closed")
	}
}

func TestDisposeCancelsEverything(t *testing.T) {
	f := newFixture(t, fileEditMenu())
	f.open()
	f.hoverEnter("root:file")
	f.hoverLeave("root:file", nil)
	f.e.Dispatch(Event{Command: CmdBlur})
	focusChanges := len(f.host.focused)

	f.e.Dispose()
	if f.clock.PendingCount() != 0 {
		t.Fatalf("expected no pending timers, got %d", f.clock.PendingCount())
	}
	if f.arb.Owner() != nil {
		t.Fatalf("expected outside-listener slot released")
	}
	f.advance(time.Minute)
	if len(f.host.focused) != focusChanges {
		t.Fatalf("expected no callbacks after dispose")
	}
	if !f.e.Closed() || f.e.Session() != nil {
		t.Fatalf("expected no session after dispose")
	}
}

func TestTransitionTable(t *testing.T) {
	if Accepts(StateClosed, CmdHoverEnter) || !Accepts(StateClosed, CmdOpen) {
		t.Fatalf("expected closed state to accept only open")
	}
	if Accepts(StateOpenNoFocus, CmdExpand) {
		t.Fatalf("expected expand to need an active node")
	}
	for _, s := range []State{StateOpenNoFocus, StateOpenFocused, StateOpenSubmenuExpanded} {
		for cmd := CmdHoverEnter; cmd <= CmdClickOutside; cmd++ {
			if cmd == CmdExpand && s == StateOpenNoFocus {
				continue
			}
			if !Accepts(s, cmd) {
				t.Fatalf("expected %s to accept %s", s, cmd)
			}
		}
	}
}
