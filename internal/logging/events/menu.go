package events

import "github.com/atomicstack/tmux-popup-menu/internal/logging"

type MenuTracer struct{}

type TimerTracer struct{}

var (
	Menu  = MenuTracer{}
	Timer = TimerTracer{}
)

func (MenuTracer) Open(x, y int) {
	logging.Trace("menu.open", map[string]interface{}{"x": x, "y": y})
}

func (MenuTracer) Dispatch(state, command, node, mode string) {
	logging.Trace("menu.dispatch", map[string]interface{}{
		"state":   state,
		"command": command,
		"node":    node,
		"mode":    mode,
	})
}

func (MenuTracer) Ignored(state, command, reason string) {
	logging.Trace("menu.ignored", map[string]interface{}{"state": state, "command": command, "reason": reason})
}

func (MenuTracer) Focus(node, scope string) {
	logging.Trace("menu.focus", map[string]interface{}{"node": node, "scope": scope})
}

func (MenuTracer) Expand(node string) {
	logging.Trace("menu.expand", map[string]interface{}{"node": node})
}

func (MenuTracer) Collapse(node, scope string) {
	logging.Trace("menu.collapse", map[string]interface{}{"node": node, "scope": scope})
}

func (MenuTracer) CollapseAll(reason string) {
	logging.Trace("menu.collapse-all", map[string]interface{}{"reason": reason})
}

func (MenuTracer) Select(node, action string) {
	logging.Trace("menu.select", map[string]interface{}{"node": node, "action": action})
}

func (MenuTracer) Mnemonic(r rune, matches int) {
	logging.Trace("menu.mnemonic", map[string]interface{}{"rune": string(r), "matches": matches})
}

func (MenuTracer) ClickOutside(accepted bool, reason string) {
	logging.Trace("menu.click-outside", map[string]interface{}{"accepted": accepted, "reason": reason})
}

func (MenuTracer) Monitor(installed bool) {
	logging.Trace("menu.monitor", map[string]interface{}{"installed": installed})
}

func (MenuTracer) Refresh(nodes int, dropped []string) {
	logging.Trace("menu.refresh", map[string]interface{}{"nodes": nodes, "dropped": dropped})
}

func (MenuTracer) Evicted() {
	logging.Trace("menu.evicted", nil)
}

func (MenuTracer) Dispose() {
	logging.Trace("menu.dispose", nil)
}

func (TimerTracer) Schedule(key string, id uint64, delayMS int64) {
	logging.Trace("timer.schedule", map[string]interface{}{"key": key, "id": id, "delay_ms": delayMS})
}

func (TimerTracer) Cancel(key string) {
	logging.Trace("timer.cancel", map[string]interface{}{"key": key})
}

func (TimerTracer) Fire(key string, id uint64, ran bool) {
	logging.Trace("timer.fire", map[string]interface{}{"key": key, "id": id, "ran": ran})
}
