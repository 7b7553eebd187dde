package events

import "github.com/atomicstack/tmux-popup-menu/internal/logging"

type BackendTracer struct{}

var Backend = BackendTracer{}

func (BackendTracer) Sessions(count int) {
	logging.Trace("backend.sessions", map[string]interface{}{"count": count})
}

func (BackendTracer) MenuFile(path, op string) {
	logging.Trace("backend.menu-file", map[string]interface{}{"path": path, "op": op})
}

func (BackendTracer) Error(kind string, err error) {
	if err == nil {
		return
	}
	logging.Trace("backend.error", map[string]interface{}{"kind": kind, "error": err.Error()})
}

func (BackendTracer) Stop() {
	logging.Trace("backend.stop", nil)
}
