package events

import "github.com/atomicstack/tmux-popup-menu/internal/logging"

type SessionTracer struct{}

var Session = SessionTracer{}

func (SessionTracer) Switch(target string) {
	logging.Trace("session.switch", map[string]interface{}{"target": target})
}

func (SessionTracer) Copy(length int) {
	logging.Trace("session.copy", map[string]interface{}{"length": length})
}

func (SessionTracer) Run(argv []string) {
	logging.Trace("session.run", map[string]interface{}{"argv": argv})
}
