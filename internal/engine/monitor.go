package engine

import (
	"github.com/atomicstack/tmux-popup-menu/internal/logging/events"
	"github.com/atomicstack/tmux-popup-menu/internal/timer"
)

// monitor is the outside-click listener of one session. It becomes active
// only after the click-out delay so the gesture that opened the popup is not
// read as an outside click.
type monitor struct {
	installed bool
	pending   timer.Handle
}

func (e *Engine) armMonitor(s *Session) {
	if s.monitor.installed || e.timers.Live(s.monitor.pending) {
		return
	}
	s.monitor.pending = e.schedule(keyClickOut, e.opts.ClickOutDelay, func() {
		s.monitor.pending = timer.Handle{}
		if e.session != s || s.closed || !e.tree.AnyOpen() {
			return
		}
		s.monitor.installed = true
		events.Menu.Monitor(true)
	})
}

func (e *Engine) disarmMonitor(s *Session) {
	e.cancel(s.monitor.pending)
	s.monitor.pending = timer.Handle{}
	if s.monitor.installed {
		s.monitor.installed = false
		events.Menu.Monitor(false)
	}
	e.opts.Arbiter.Release(e)
}

// clickOutside handles pointer activity that landed outside every panel.
func (e *Engine) clickOutside(s *Session, ev Event) {
	switch {
	case !s.monitor.installed:
		events.Menu.ClickOutside(false, "monitor not installed")
	case !e.opts.Arbiter.Owns(e):
		events.Menu.ClickOutside(false, "slot owned elsewhere")
	case s.suppressed:
		s.suppressed = false
		events.Menu.ClickOutside(false, "suppressed")
	case ev.InMenuBar:
		events.Menu.ClickOutside(false, "menu bar")
	default:
		events.Menu.ClickOutside(true, "")
		e.collapseAll(s, "click-outside")
	}
}

// MonitorInstalled reports whether outside clicks currently collapse the popup.
func (e *Engine) MonitorInstalled() bool {
	return e.session != nil && e.session.monitor.installed
}
