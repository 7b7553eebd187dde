package command

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tmux-popup-menu/internal/logging/events"
	"github.com/atomicstack/tmux-popup-menu/internal/menu"
	"github.com/atomicstack/tmux-popup-menu/internal/tmux"
)

// Context carries what an action needs to know about the tmux side.
type Context struct {
	SocketPath string
	ClientID   string
	Session    string
}

// Request encapsulates an action invocation built from a selected node.
type Request struct {
	ID      string
	Label   string
	Kind    menu.ActionKind
	Command []string
	Target  string
	Text    string
}

// RequestFor captures the action fields of n.
func RequestFor(n *menu.Node) Request {
	return Request{
		ID:      n.ID,
		Label:   n.Label,
		Kind:    n.Action,
		Command: append([]string(nil), n.Command...),
		Target:  n.Target,
		Text:    n.Text,
	}
}

// Result is delivered to the program once an action finishes.
type Result struct {
	ID   string
	Info string
	Err  error
}

// Action performs one kind of request.
type Action func(Context, Request) Result

// Bus coordinates the execution of menu actions.
type Bus struct {
	actions map[menu.ActionKind]Action
}

// New initialises a command bus with the built-in actions.
func New() *Bus {
	b := &Bus{actions: make(map[menu.ActionKind]Action)}
	b.Register(menu.ActionCommand, RunTmux)
	b.Register(menu.ActionSwitchSession, SwitchSession)
	b.Register(menu.ActionCopy, Copy)
	return b
}

// Register replaces the handler for kind.
func (b *Bus) Register(kind menu.ActionKind, action Action) {
	b.actions[kind] = action
}

// Execute wraps a request into a Bubble Tea command while emitting trace logs.
// Requests without a handler produce no message.
func (b *Bus) Execute(ctx Context, req Request) tea.Cmd {
	handler := b.actions[req.Kind]
	if handler == nil {
		if req.Kind == menu.ActionNone || req.Kind == "" {
			events.Command.NoOp(req.ID, req.Label)
		} else {
			events.Command.Skip(req.ID, req.Label)
		}
		return nil
	}
	events.Command.Queue(req.ID, req.Label)
	return func() tea.Msg {
		res := handler(ctx, req)
		res.ID = req.ID
		events.Command.Result(req.ID, req.Label, fmt.Sprintf("%T", res))
		if res.Err != nil {
			events.Action.Error(res.Err)
		} else {
			events.Action.Success(res.Info)
		}
		return res
	}
}

// deferredCommands open UI on the tmux client and have to run once the
// popup is gone.
var deferredCommands = map[string]struct{}{
	"command-prompt": {},
	"confirm-before": {},
	"display-menu":   {},
	"menu":           {},
	"choose-tree":    {},
	"choose-buffer":  {},
	"choose-client":  {},
	"copy-mode":      {},
}

var (
	runCommand   = tmux.RunCommand
	runDeferred  = tmux.RunDeferred
	switchClient = tmux.SwitchClient
	writeAll     = clipboard.WriteAll
)

// RunTmux executes the request's tmux command line.
func RunTmux(ctx Context, req Request) Result {
	argv := Expand(ctx, req.Command)
	if len(argv) == 0 {
		return Result{Err: fmt.Errorf("%s: no command", req.Label)}
	}
	events.Session.Run(argv)
	if _, ok := deferredCommands[argv[0]]; ok {
		if err := runDeferred(ctx.SocketPath, argv); err != nil {
			return Result{Err: err}
		}
		return Result{Info: fmt.Sprintf("Queued %s", argv[0])}
	}
	if _, err := runCommand(ctx.SocketPath, argv); err != nil {
		return Result{Err: err}
	}
	return Result{Info: fmt.Sprintf("Executed %s", strings.Join(argv, " "))}
}

// SwitchSession moves the launching client to the request's target session.
func SwitchSession(ctx Context, req Request) Result {
	target := strings.TrimSpace(req.Target)
	if target == "" {
		return Result{Err: errors.New("invalid session target")}
	}
	events.Session.Switch(target)
	if err := switchClient(ctx.SocketPath, ctx.ClientID, target); err != nil {
		return Result{Err: err}
	}
	return Result{Info: fmt.Sprintf("Switched to %s", target)}
}

// Copy puts the request's expanded text on the system clipboard.
func Copy(ctx Context, req Request) Result {
	text := ExpandString(ctx, req.Text)
	if text == "" {
		return Result{Err: fmt.Errorf("%s: nothing to copy", req.Label)}
	}
	events.Session.Copy(len(text))
	if err := writeAll(text); err != nil {
		return Result{Err: fmt.Errorf("copy to clipboard: %w", err)}
	}
	return Result{Info: fmt.Sprintf("Copied %q", text)}
}

// Expand substitutes ${socket}, ${client} and ${session} in every argument.
// Other ${...} references are left for tmux or the shell.
func Expand(ctx Context, argv []string) []string {
	if len(argv) == 0 {
		return nil
	}
	out := make([]string, len(argv))
	for i, arg := range argv {
		out[i] = ExpandString(ctx, arg)
	}
	return out
}

func ExpandString(ctx Context, s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, func(name string) string {
		switch name {
		case "socket":
			return ctx.SocketPath
		case "client":
			return ctx.ClientID
		case "session":
			return ctx.Session
		default:
			return "${" + name + "}"
		}
	})
}
