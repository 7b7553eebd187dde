package ui

import (
	"github.com/atomicstack/tmux-popup-menu/internal/engine"
	"github.com/atomicstack/tmux-popup-menu/internal/input"
	"github.com/atomicstack/tmux-popup-menu/internal/logging/events"
	"github.com/atomicstack/tmux-popup-menu/internal/menu"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	barZone        = "bar"
	itemZonePrefix = "item:"
)

func itemZone(id string) string { return itemZonePrefix + id }

// panelArea is the screen rectangle of one rendered panel, border included.
type panelArea struct {
	id     string
	x0, y0 int
	x1, y1 int
}

func (a panelArea) contains(x, y int) bool {
	return x >= a.x0 && x < a.x1 && y >= a.y0 && y < a.y1
}

// hit is what lies under the pointer.
type hit struct {
	node  *menu.Node
	panel *menu.Node
	bar   bool
}

func (h hit) inside() bool {
	return h.node != nil || h.panel != nil
}

func (h hit) zone() string {
	switch {
	case h.node != nil:
		return itemZone(h.node.ID)
	case h.panel != nil:
		return "panel:" + h.panel.ID
	case h.bar:
		return barZone
	default:
		return ""
	}
}

// hitTest resolves a mouse position against the last rendered frame.
func (m *Model) hitTest(msg tea.MouseMsg) hit {
	tree := m.engine.Tree()
	var h hit
	for _, id := range m.targets {
		if !m.zones.Get(itemZone(id)).InBounds(msg) {
			continue
		}
		if n, ok := tree.Find(id); ok {
			h.node = n
		}
		break
	}
	for i := len(m.areas) - 1; i >= 0; i-- {
		a := m.areas[i]
		if !a.contains(msg.X, msg.Y) {
			continue
		}
		if n, ok := tree.Find(a.id); ok {
			h.panel = n
		}
		break
	}
	if !h.inside() {
		h.bar = m.zones.Get(barZone).InBounds(msg)
	}
	return h
}

func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	mouse, ok := msg.(tea.MouseMsg)
	if !ok {
		return nil
	}
	h := m.hitTest(mouse)
	events.UI.Mouse(mouseActionName(mouse.Action), mouseButtonName(mouse.Button), mouse.X, mouse.Y, h.zone())
	switch {
	case mouse.Button == tea.MouseButtonWheelUp:
		m.dispatch(engine.Event{Command: engine.CmdNavigate, Direction: engine.DirPrevious})
	case mouse.Button == tea.MouseButtonWheelDown:
		m.dispatch(engine.Event{Command: engine.CmdNavigate, Direction: engine.DirNext})
	case mouse.Action == tea.MouseActionMotion:
		m.pointerMoved(h)
	case mouse.Action == tea.MouseActionPress && mouse.Button == tea.MouseButtonLeft:
		m.pointerDown(h)
	case mouse.Action == tea.MouseActionRelease:
		m.pointerUp(h)
	}
	return nil
}

// pointerMoved turns motion into hover-leave and hover-enter pairs whenever
// the node under the pointer changes.
func (m *Model) pointerMoved(h hit) {
	prev := m.hovered
	if prev != nil && !m.engine.Tree().Contains(prev) {
		prev = nil
	}
	next := h.node
	if prev == next && m.inside == h.inside() {
		return
	}
	switch {
	case prev != nil && prev != next:
		related := next
		if related == nil {
			related = h.panel
		}
		m.dispatch(engine.Event{
			Command:       engine.CmdHoverLeave,
			Node:          prev,
			Related:       related,
			RelatedHelper: h.bar,
			Input:         input.KindPointerMove,
		})
	case prev == nil && m.inside && !h.inside():
		m.dispatch(engine.Event{
			Command:       engine.CmdHoverLeave,
			RelatedHelper: h.bar,
			Input:         input.KindPointerMove,
		})
	}
	switch {
	case next != nil && next != prev:
		m.dispatch(engine.Event{Command: engine.CmdHoverEnter, Node: next, Input: input.KindPointerMove})
	case next == nil && h.panel != nil && !m.inside:
		m.dispatch(engine.Event{Command: engine.CmdHoverEnter, Input: input.KindPointerMove})
	}
	m.hovered = next
	m.inside = h.inside()
}

func (m *Model) pointerDown(h hit) {
	switch {
	case h.node != nil:
		m.dispatch(engine.Event{Command: engine.CmdPress, Node: h.node, Input: input.KindPointerDown})
	case h.panel != nil:
	default:
		m.dispatch(engine.Event{Command: engine.CmdClickOutside, InMenuBar: h.bar, Input: input.KindPointerDown})
	}
}

func (m *Model) pointerUp(h hit) {
	if h.node == nil {
		return
	}
	m.dispatch(engine.Event{Command: engine.CmdRelease, Node: h.node, Input: input.KindPointerUp})
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	events.UI.Key(keyMsg.String())
	if key.Matches(keyMsg, keys.Quit) {
		m.engine.Dispose()
		return nil
	}
	if dir, ok := directionFor(keyMsg); ok {
		m.dispatch(engine.Event{Command: engine.CmdNavigate, Direction: dir, Input: input.KindKey})
		return nil
	}
	if r, ok := mnemonicRune(keyMsg); ok {
		m.dispatch(engine.Event{Command: engine.CmdMnemonic, Rune: r, Input: input.KindKey})
	}
	return nil
}

func (m *Model) handleFocusMsg(tea.Msg) tea.Cmd {
	m.dispatch(engine.Event{Command: engine.CmdFocus, Input: input.KindFocus})
	return nil
}

func (m *Model) handleBlurMsg(tea.Msg) tea.Cmd {
	m.dispatch(engine.Event{Command: engine.CmdBlur, Input: input.KindFocus})
	return nil
}

func mouseActionName(a tea.MouseAction) string {
	switch a {
	case tea.MouseActionPress:
		return "press"
	case tea.MouseActionRelease:
		return "release"
	case tea.MouseActionMotion:
		return "motion"
	default:
		return "unknown"
	}
}

func mouseButtonName(b tea.MouseButton) string {
	switch b {
	case tea.MouseButtonNone:
		return "none"
	case tea.MouseButtonLeft:
		return "left"
	case tea.MouseButtonMiddle:
		return "middle"
	case tea.MouseButtonRight:
		return "right"
	case tea.MouseButtonWheelUp:
		return "wheel-up"
	case tea.MouseButtonWheelDown:
		return "wheel-down"
	default:
		return "other"
	}
}
