package engine

import (
	"unicode"

	"github.com/atomicstack/tmux-popup-menu/internal/input"
	"github.com/atomicstack/tmux-popup-menu/internal/logging/events"
	"github.com/atomicstack/tmux-popup-menu/internal/menu"
	"github.com/atomicstack/tmux-popup-menu/internal/timer"
)

func (e *Engine) hoverEnter(s *Session, ev Event) {
	s.classifier.Observe(ev.Input)
	e.cancelClose(s)
	if ev.Node == nil || ev.Node.Kind == menu.KindPopupRoot {
		return
	}
	item := e.target(ev.Node)
	if item == nil {
		e.ignore(ev, "invalid target")
		return
	}
	e.focus(s, item)
	if item.Kind == menu.KindSubmenu && s.classifier.Mode() != input.ModeTouch {
		e.openSubmenu(s, item, false)
	}
}

func (e *Engine) hoverLeave(s *Session, ev Event) {
	s.classifier.Observe(ev.Input)
	if ev.RelatedHelper || (ev.Related != nil && e.tree.Contains(ev.Related)) {
		return
	}
	s.closeTimer = e.schedule(keyClose, e.opts.CloseDelay, func() {
		s.closeTimer = timer.Handle{}
		if e.session != s {
			return
		}
		e.collapseAll(s, "pointer left")
	})
}

func (e *Engine) press(s *Session, ev Event) {
	s.classifier.Observe(kindOr(ev.Input, input.KindPointerDown))
	s.pressed = nil
	item := e.target(ev.Node)
	if item == nil {
		e.ignore(ev, "invalid target")
		return
	}
	e.cancelClose(s)
	e.focus(s, item)
	s.pressed = item
}

func (e *Engine) release(s *Session, ev Event) {
	s.classifier.Observe(kindOr(ev.Input, input.KindPointerUp))
	pressed := s.pressed
	s.pressed = nil
	item := e.target(ev.Node)
	if pressed == nil || item == nil || item != pressed {
		e.ignore(ev, "release without matching press")
		return
	}
	e.click(s, item)
	s.clicked = item
}

// clickCommand handles an explicit click. A pointer click on the node a
// release just clicked is the same gesture reported twice and is dropped.
func (e *Engine) clickCommand(s *Session, ev Event) {
	item := e.target(ev.Node)
	if item == nil {
		e.ignore(ev, "invalid target")
		return
	}
	if ev.Input.IsPointer() && s.clicked == item {
		s.clicked = nil
		e.ignore(ev, "duplicate click")
		return
	}
	s.clicked = nil
	e.click(s, item)
}

func (e *Engine) click(s *Session, item *menu.Node) {
	switch item.Kind {
	case menu.KindSubmenu:
		e.focus(s, item)
		e.openSubmenu(s, item, false)
		s.suppressed = true
	case menu.KindItem:
		if !item.Selectable() {
			return
		}
		e.focus(s, item)
		events.Menu.Select(item.ID, string(item.Action))
		e.host.OnSelect(item)
		if s.classifier.Mode() != input.ModeTouch {
			e.collapseAll(s, "selected")
		}
	}
}

func (e *Engine) expandCommand(s *Session, ev Event) {
	e.expandActive(s, ev)
}

func (e *Engine) expandActive(s *Session, ev Event) {
	a := s.active
	if a == nil || a.Kind != menu.KindSubmenu || !e.tree.Contains(a) {
		e.ignore(ev, "nothing to expand")
		return
	}
	if !e.openSubmenu(s, a, true) {
		e.ignore(ev, "disabled")
	}
}

func (e *Engine) collapseCommand(s *Session, ev Event) {
	e.collapse(s)
}

// collapse closes the innermost open submenu and focuses the item that
// opened it. At the root level it collapses everything.
func (e *Engine) collapse(s *Session) {
	panels := e.tree.OpenPanels()
	if len(panels) <= 1 {
		e.collapseAll(s, "collapse at root")
		return
	}
	inner := panels[len(panels)-1]
	e.tree.CloseSubmenu(inner)
	s.scope = menu.ClosestScope(inner)
	e.setActive(s, inner)
	events.Menu.Collapse(inner.ID, nodeID(s.scope))
}

func (e *Engine) collapseAllCommand(s *Session, ev Event) {
	e.collapseAll(s, "command")
}

// collapseAll schedules closing the whole tree. The delay lets the rest of a
// touch gesture arrive; if that gesture expanded a submenu in the meantime
// the collapse is skipped. A request made after the expanding click, such as
// an expired close timer, spends the suppression and goes ahead. Requests
// made while one is pending join it rather than pushing the deadline back.
func (e *Engine) collapseAll(s *Session, reason string) {
	if e.timers.Live(s.collapseTimer) {
		return
	}
	s.suppressed = false
	s.collapseTimer = e.schedule(keyCollapse, e.opts.CollapseDelay, func() {
		s.collapseTimer = timer.Handle{}
		if e.session != s || s.closed {
			return
		}
		if s.suppressed {
			s.suppressed = false
			events.Menu.Ignored(e.State().String(), CmdCollapseAll.String(), "click-outside suppressed")
			return
		}
		e.closeNow(s, reason)
	})
}

func (e *Engine) closeNow(s *Session, reason string) {
	e.tree.CloseAll()
	s.closed = true
	s.pressed = nil
	s.clicked = nil
	s.suppressed = false
	e.setActive(s, nil)
	s.scope = e.tree.Root()
	e.cancel(s.closeTimer)
	e.cancel(s.blurTimer)
	e.cancel(s.collapseTimer)
	s.closeTimer = timer.Handle{}
	s.blurTimer = timer.Handle{}
	s.collapseTimer = timer.Handle{}
	e.disarmMonitor(s)
	events.Menu.CollapseAll(reason)
}

func (e *Engine) navigate(s *Session, ev Event) {
	e.cancelClose(s)
	switch ev.Direction {
	case DirExpand:
		e.expandActive(s, ev)
		return
	case DirCollapse, DirEscape:
		e.collapse(s)
		return
	case DirActivate:
		e.activate(s, ev)
		return
	}

	scope := s.scope
	if scope == nil {
		scope = e.tree.Root()
	}
	items := scope.FocusableChildren()
	if len(items) == 0 {
		e.ignore(ev, "empty scope")
		return
	}
	last := len(items) - 1
	idx := -1
	for i, n := range items {
		if n == s.active {
			idx = i
			break
		}
	}

	next := idx
	switch ev.Direction {
	case DirNext:
		switch {
		case idx < 0:
			next = 0
		case idx < last:
			next = idx + 1
		}
	case DirPrevious:
		switch {
		case idx < 0:
			next = last
		case idx > 0:
			next = idx - 1
		}
	case DirFirst:
		next = 0
	case DirLast:
		next = last
	case DirPageDown:
		if idx < 0 {
			next = 0
		} else {
			next = min(idx+e.opts.PageSize, last)
		}
	case DirPageUp:
		if idx < 0 {
			next = last
		} else {
			next = max(idx-e.opts.PageSize, 0)
		}
	default:
		e.ignore(ev, "unknown direction")
		return
	}
	if next < 0 || next == idx {
		return
	}
	e.focus(s, items[next])
}

func (e *Engine) activate(s *Session, ev Event) {
	a := s.active
	if a == nil || !e.tree.Contains(a) {
		e.ignore(ev, "nothing active")
		return
	}
	if a.Kind == menu.KindSubmenu && len(a.Children()) > 0 {
		e.expandActive(s, ev)
		return
	}
	e.click(s, a)
}

// mnemonic resolves an accelerator. The open submenu's own items are tried
// first, then the top-level items. One match is expanded or selected, no
// match clicks the active node and several matches are ignored.
func (e *Engine) mnemonic(s *Session, ev Event) {
	e.cancelClose(s)
	r := unicode.ToLower(ev.Rune)
	root := e.tree.Root()
	var matches []*menu.Node
	if scope := s.scope; scope != nil && scope != root && e.tree.Contains(scope) {
		matches = mnemonicMatches(scope, r)
	}
	if len(matches) == 0 {
		matches = mnemonicMatches(root, r)
	}
	events.Menu.Mnemonic(r, len(matches))
	switch len(matches) {
	case 0:
		if a := s.active; a != nil && e.tree.Contains(a) {
			e.click(s, a)
		}
	case 1:
		m := matches[0]
		e.focus(s, m)
		if m.Kind == menu.KindSubmenu {
			e.openSubmenu(s, m, true)
			return
		}
		e.click(s, m)
	default:
		e.ignore(ev, "ambiguous mnemonic")
	}
}

func mnemonicMatches(panel *menu.Node, r rune) []*menu.Node {
	var matches []*menu.Node
	for _, n := range panel.FocusableChildren() {
		if n.Mnemonic != 0 && n.Mnemonic == r {
			matches = append(matches, n)
		}
	}
	return matches
}

func (e *Engine) focusIn(s *Session, ev Event) {
	e.cancel(s.blurTimer)
	s.blurTimer = timer.Handle{}
	if s.active != nil {
		return
	}
	scope := s.scope
	if scope == nil {
		scope = e.tree.Root()
	}
	if items := scope.FocusableChildren(); len(items) > 0 {
		e.focus(s, items[0])
	}
}

func (e *Engine) blur(s *Session, ev Event) {
	s.blurTimer = e.schedule(keyBlur, e.opts.BlurDelay, func() {
		s.blurTimer = timer.Handle{}
		if e.session != s {
			return
		}
		e.collapseAll(s, "blur")
	})
}

// focus makes item the active node, closing any submenu open beside it.
func (e *Engine) focus(s *Session, item *menu.Node) {
	e.tree.CloseSiblings(item)
	s.scope = menu.ClosestScope(item)
	e.setActive(s, item)
}

func (e *Engine) setActive(s *Session, n *menu.Node) {
	if s.active == n {
		return
	}
	s.active = n
	events.Menu.Focus(nodeID(n), nodeID(s.scope))
	e.host.OnFocusChange(n)
}

// openSubmenu expands sub, moves the scope into it and optionally focuses
// its first enabled item.
func (e *Engine) openSubmenu(s *Session, sub *menu.Node, focusFirst bool) bool {
	wasOpen := sub.IsOpen()
	if !e.tree.OpenSubmenu(sub) {
		return false
	}
	e.tree.CloseSiblings(sub)
	s.scope = sub
	if !wasOpen {
		events.Menu.Expand(sub.ID)
		e.host.OnExpand(sub)
	}
	e.armMonitor(s)
	if focusFirst {
		if items := sub.FocusableChildren(); len(items) > 0 {
			e.focus(s, items[0])
		}
	}
	return true
}

func (e *Engine) cancelClose(s *Session) {
	e.cancel(s.closeTimer)
	s.closeTimer = timer.Handle{}
}

// target resolves an event node to the menu item it belongs to, or nil when
// the node is stale, disabled or sits in a panel that is not open.
func (e *Engine) target(n *menu.Node) *menu.Node {
	if n == nil || n.Kind == menu.KindSeparator {
		return nil
	}
	item := menu.ClosestMenuItem(n)
	if item == nil || !e.activatable(item) {
		return nil
	}
	return item
}

func (e *Engine) activatable(n *menu.Node) bool {
	if !e.tree.Contains(n) || !n.Focusable() {
		return false
	}
	scope := menu.ClosestScope(n)
	return scope != nil && scope.IsOpen()
}

func (e *Engine) ignore(ev Event, reason string) {
	events.Menu.Ignored(e.State().String(), ev.Command.String(), reason)
}

func kindOr(k, fallback input.Kind) input.Kind {
	if k == input.KindNone {
		return fallback
	}
	return k
}
