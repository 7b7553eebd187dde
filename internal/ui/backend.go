package ui

import (
	"github.com/atomicstack/tmux-popup-menu/internal/backend"
	"github.com/atomicstack/tmux-popup-menu/internal/logging"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

// applyBackendEvent updates the session store and rebuilds the tree when
// its inputs changed. Menu file edits often arrive as bursts of writes, so
// those are debounced.
func (m *Model) applyBackendEvent(evt backend.Event) {
	res := m.dispatcher.Handle(evt)
	if res.Err != nil {
		m.backendErr = res.Err.Error()
		return
	}
	m.backendErr = ""
	if res.SessionsUpdated {
		m.refreshMenu()
	}
	if res.MenuChanged {
		m.timers.Schedule(refreshKey, refreshDelay, m.refreshMenu)
	}
}

// refreshMenu rebuilds the tree. On failure the previous tree stays in place.
func (m *Model) refreshMenu() {
	if err := m.engine.Refresh(); err != nil {
		logging.Error(err)
		m.menuErr = err.Error()
		return
	}
	m.menuErr = ""
	if m.hovered != nil && !m.engine.Tree().Contains(m.hovered) {
		m.hovered = nil
	}
	m.ensureVisible(m.engine.Active())
}
