package ui

import (
	"github.com/atomicstack/tmux-popup-menu/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) commandContext() command.Context {
	return command.Context{
		SocketPath: m.socketPath,
		ClientID:   m.sessions.ClientID(),
		Session:    m.sessions.Current(),
	}
}

// runQueued hands the selections made during the last dispatch to the bus.
func (m *Model) runQueued() []tea.Cmd {
	if len(m.queued) == 0 {
		return nil
	}
	ctx := m.commandContext()
	cmds := make([]tea.Cmd, 0, len(m.queued))
	for _, req := range m.queued {
		if cmd := m.bus.Execute(ctx, req); cmd != nil {
			m.inFlight++
			cmds = append(cmds, cmd)
		}
	}
	m.queued = nil
	return cmds
}

func (m *Model) handleActionResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(command.Result)
	if !ok {
		return nil
	}
	if m.inFlight > 0 {
		m.inFlight--
	}
	if result.Err != nil {
		m.errMsg = result.Err.Error()
		m.actionErr = result.Err
		m.infoMsg = ""
		return nil
	}
	m.errMsg = ""
	if result.Info != "" && m.verbose {
		m.infoMsg = result.Info
	}
	if m.quitting {
		return nil
	}
	m.quitting = true
	return tea.Quit
}
