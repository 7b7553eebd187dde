package ui

import (
	"time"

	"github.com/atomicstack/tmux-popup-menu/internal/timer"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	firedBuffer  = 16
	refreshKey   = "refresh"
	refreshDelay = 150 * time.Millisecond
)

type timerFiredMsg struct {
	fired timer.Fired
}

// clockAdvancedMsg is sent by the harness after moving a manual clock so the
// model re-evaluates whether it should quit.
type clockAdvancedMsg struct{}

// postTimer runs on the clock's goroutine.
func (m *Model) postTimer(f timer.Fired) {
	m.fired <- f
}

func waitForTimer(ch <-chan timer.Fired) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return nil
		}
		return timerFiredMsg{fired: f}
	}
}

func (m *Model) handleTimerFiredMsg(msg tea.Msg) tea.Cmd {
	fired, ok := msg.(timerFiredMsg)
	if !ok {
		return nil
	}
	if fired.fired.Handle.Key == refreshKey {
		m.timers.Fire(fired.fired)
	} else {
		m.engine.Fire(fired.fired)
	}
	if m.fired == nil {
		return nil
	}
	return waitForTimer(m.fired)
}

func (m *Model) handleClockAdvancedMsg(tea.Msg) tea.Cmd {
	return nil
}
