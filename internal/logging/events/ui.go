package events

import "github.com/atomicstack/tmux-popup-menu/internal/logging"

type UITracer struct{}

type ActionTracer struct{}

type CommandTracer struct{}

var (
	UI      = UITracer{}
	Action  = ActionTracer{}
	Command = CommandTracer{}
)

func (UITracer) Key(key string) {
	logging.Trace("ui.key", map[string]interface{}{"key": key})
}

func (UITracer) Mouse(action, button string, x, y int, zone string) {
	logging.Trace("ui.mouse", map[string]interface{}{
		"action": action,
		"button": button,
		"x":      x,
		"y":      y,
		"zone":   zone,
	})
}

func (UITracer) Resize(width, height int) {
	logging.Trace("ui.resize", map[string]interface{}{"width": width, "height": height})
}

func (UITracer) Viewport(panel string, offset int) {
	logging.Trace("ui.viewport", map[string]interface{}{"panel": panel, "offset": offset})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) Success(info string) {
	logging.Trace("action.success", map[string]interface{}{"info": info})
}

func (CommandTracer) Queue(id, label string) {
	logging.Trace("command.queue", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Skip(id, label string) {
	logging.Trace("command.skip", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) NoOp(id, label string) {
	logging.Trace("command.noop", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Result(id, label, msgType string) {
	logging.Trace("command.result", map[string]interface{}{"id": id, "label": label, "msg": msgType})
}
