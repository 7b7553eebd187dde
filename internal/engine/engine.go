// Package engine is the interaction state machine for a tree of nested menu
// panels. It turns pointer, touch, keyboard and focus input into open, close
// and focus changes on a menu.Tree and reports them to a Host.
//
// An Engine is not safe for concurrent use. Every method, including Fire,
// must be called from the one goroutine that owns the event loop.
package engine

import (
	"time"

	"github.com/atomicstack/tmux-popup-menu/internal/input"
	"github.com/atomicstack/tmux-popup-menu/internal/logging/events"
	"github.com/atomicstack/tmux-popup-menu/internal/menu"
	"github.com/atomicstack/tmux-popup-menu/internal/timer"
)

const (
	// CloseDelay is how long the pointer may be outside the tree before it collapses.
	CloseDelay = 700 * time.Millisecond
	// CollapseDelay debounces CollapseAll.
	CollapseDelay = 100 * time.Millisecond
	// ClickOutDelay separates opening from arming the outside-click monitor.
	ClickOutDelay = 200 * time.Millisecond
	// BlurDelay is how long focus may be away before the tree collapses.
	BlurDelay = 300 * time.Millisecond

	DefaultPageSize = 10
)

const (
	keyClose    = "close"
	keyCollapse = "collapseAll"
	keyClickOut = "clickOut"
	keyBlur     = "blur"
)

// Host owns the menu data and receives notifications.
type Host interface {
	menu.Source
	OnSelect(node *menu.Node)
	OnExpand(node *menu.Node)
	// OnFocusChange receives nil when nothing is active any more.
	OnFocusChange(node *menu.Node)
}

// Options tune an Engine. Zero values select the defaults.
type Options struct {
	Clock     timer.Clock
	Post      func(timer.Fired)
	Providers menu.Providers
	Arbiter   *Arbiter
	PageSize  int

	CloseDelay    time.Duration
	CollapseDelay time.Duration
	ClickOutDelay time.Duration
	BlurDelay     time.Duration
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = timer.SystemClock{}
	}
	if o.Arbiter == nil {
		o.Arbiter = DefaultArbiter
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.CloseDelay <= 0 {
		o.CloseDelay = CloseDelay
	}
	if o.CollapseDelay <= 0 {
		o.CollapseDelay = CollapseDelay
	}
	if o.ClickOutDelay <= 0 {
		o.ClickOutDelay = ClickOutDelay
	}
	if o.BlurDelay <= 0 {
		o.BlurDelay = BlurDelay
	}
	return o
}

// Event is one input delivered to Dispatch. Only the fields relevant to the
// command need to be set.
type Event struct {
	Command Command
	// Node is the target for hover, press, release and click.
	Node *menu.Node
	// Related is where the pointer went on hover-leave; nil means outside
	// every panel.
	Related *menu.Node
	// RelatedHelper marks a hover-leave into decoration that belongs to the
	// popup without being a node, such as a border.
	RelatedHelper bool
	// Input is the raw class of a pointer event, used for classification.
	Input     input.Kind
	Direction Direction
	Rune      rune
	Position  Position
	// InMenuBar marks an outside click that landed on a sibling trigger.
	InMenuBar bool
}

// Engine runs one popup at a time over a single tree.
type Engine struct {
	host    Host
	opts    Options
	tree    *menu.Tree
	timers  *timer.Registry
	session *Session
}

// New builds an engine. The tree starts empty until Refresh is called.
func New(host Host, opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		host:   host,
		opts:   opts,
		tree:   menu.NewTree(opts.Providers),
		timers: timer.NewRegistry(opts.Clock, opts.Post),
	}
}

// Tree exposes the model for rendering. Callers must treat it as read-only.
func (e *Engine) Tree() *menu.Tree { return e.tree }

// Session returns the current session, or nil before the first Open and
// after Dispose.
func (e *Engine) Session() *Session { return e.session }

// Open starts a fresh session showing the root panel. Any previous session
// is discarded without notifications, and other popups sharing the arbiter
// are hidden.
func (e *Engine) Open(pos Position) {
	if prev := e.session; prev != nil {
		e.teardown(prev)
	}
	e.tree.CloseAll()
	s := newSession(pos, e.tree.Root())
	e.session = s
	e.tree.OpenSubmenu(e.tree.Root())
	e.opts.Arbiter.Acquire(e)
	e.armMonitor(s)
	events.Menu.Open(pos.X, pos.Y)
}

// Close collapses the whole tree, like an outside click would.
func (e *Engine) Close() {
	e.Dispatch(Event{Command: CmdCollapseAll})
}

// Dispatch feeds one input event to the state machine. Events the current
// state does not accept are dropped.
func (e *Engine) Dispatch(ev Event) {
	if ev.Command == CmdOpen {
		e.Open(ev.Position)
		return
	}
	state := e.State()
	events.Menu.Dispatch(state.String(), ev.Command.String(), nodeID(ev.Node), e.Mode().String())
	h, ok := transitions[state][ev.Command]
	if !ok {
		events.Menu.Ignored(state.String(), ev.Command.String(), "not accepted")
		return
	}
	s := e.session
	if ev.Command != CmdClickOutside {
		s.suppressed = false
	}
	if ev.Command != CmdClick {
		s.clicked = nil
	}
	h(e, s, ev)
}

// Fire delivers a timer expiry posted through Options.Post.
func (e *Engine) Fire(f timer.Fired) bool {
	ran := e.timers.Fire(f)
	events.Timer.Fire(f.Handle.Key, f.Handle.ID, ran)
	return ran
}

// Refresh rebuilds the tree from the host and drops session references to
// nodes that no longer exist or can no longer be active. On error the tree
// and session are unchanged.
func (e *Engine) Refresh() error {
	if err := e.tree.Refresh(e.host); err != nil {
		return err
	}
	s := e.session
	if s == nil {
		events.Menu.Refresh(e.tree.Len(), nil)
		return nil
	}
	var dropped []string
	if a := s.active; a != nil && !e.activatable(a) {
		dropped = append(dropped, a.ID)
		e.setActive(s, nil)
	}
	if s.pressed != nil && !e.tree.Contains(s.pressed) {
		dropped = append(dropped, s.pressed.ID)
		s.pressed = nil
	}
	if s.clicked != nil && !e.tree.Contains(s.clicked) {
		s.clicked = nil
	}
	if sc := s.scope; sc == nil || !e.tree.Contains(sc) || (!s.closed && !sc.IsOpen()) {
		if sc != nil {
			dropped = append(dropped, sc.ID)
		}
		s.scope = e.innermostPanel()
	}
	events.Menu.Refresh(e.tree.Len(), dropped)
	return nil
}

// Reveal opens every submenu between the root and n and focuses n, or the
// first item of n when n is a submenu.
func (e *Engine) Reveal(n *menu.Node) bool {
	s := e.session
	if s == nil || s.closed || !e.tree.Contains(n) {
		return false
	}
	var chain []*menu.Node
	for cur := n; cur != nil && cur.Kind != menu.KindPopupRoot; cur = cur.Parent() {
		if cur.Kind == menu.KindSubmenu {
			chain = append(chain, cur)
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if !e.openSubmenu(s, chain[i], i == 0 && chain[i] == n) {
			return false
		}
	}
	if n.Kind != menu.KindSubmenu {
		if !n.Focusable() {
			return false
		}
		e.focus(s, n)
	}
	return true
}

// Dispose ends the session, cancels its timers and gives up the
// outside-listener slot. No host callbacks are made.
func (e *Engine) Dispose() {
	if s := e.session; s != nil {
		e.teardown(s)
		e.tree.CloseAll()
		s.closed = true
	}
	e.session = nil
	e.opts.Arbiter.Release(e)
	events.Menu.Dispose()
}

// Evict hides the popup because another one took the outside-listener slot.
func (e *Engine) Evict() {
	s := e.session
	if s == nil || s.closed {
		return
	}
	events.Menu.Evicted()
	e.closeNow(s, "evicted")
}

// State derives the coarse state of the current session.
func (e *Engine) State() State {
	s := e.session
	switch {
	case s == nil || s.closed:
		return StateClosed
	case s.scope != nil && s.scope != e.tree.Root():
		return StateOpenSubmenuExpanded
	case s.active == nil:
		return StateOpenNoFocus
	default:
		return StateOpenFocused
	}
}

// Active returns the focused node, or nil.
func (e *Engine) Active() *menu.Node {
	if e.session == nil {
		return nil
	}
	return e.session.active
}

// Scope returns the panel whose items are eligible for activation.
func (e *Engine) Scope() *menu.Node {
	if e.session == nil {
		return nil
	}
	return e.session.scope
}

// Closed reports whether there is no open popup.
func (e *Engine) Closed() bool {
	return e.session == nil || e.session.closed
}

// Mode returns the session's input classification.
func (e *Engine) Mode() input.Mode {
	if e.session == nil {
		return input.ModeUnknown
	}
	return e.session.Mode()
}

// OpenPanels lists the visible panels from the root down.
func (e *Engine) OpenPanels() []*menu.Node {
	return e.tree.OpenPanels()
}

// Pending reports whether the named engine timer is waiting to fire.
func (e *Engine) Pending(key string) bool {
	return e.timers.Pending(key)
}

func (e *Engine) schedule(key string, d time.Duration, fn func()) timer.Handle {
	h := e.timers.Schedule(key, d, fn)
	events.Timer.Schedule(key, h.ID, d.Milliseconds())
	return h
}

func (e *Engine) cancel(h timer.Handle) {
	if !e.timers.Live(h) {
		return
	}
	e.timers.Cancel(h)
	events.Timer.Cancel(h.Key)
}

func (e *Engine) teardown(s *Session) {
	e.cancel(s.closeTimer)
	e.cancel(s.collapseTimer)
	e.cancel(s.blurTimer)
	s.closeTimer = timer.Handle{}
	s.collapseTimer = timer.Handle{}
	s.blurTimer = timer.Handle{}
	e.disarmMonitor(s)
}

func (e *Engine) innermostPanel() *menu.Node {
	panels := e.tree.OpenPanels()
	if len(panels) == 0 {
		return e.tree.Root()
	}
	return panels[len(panels)-1]
}

func nodeID(n *menu.Node) string {
	if n == nil {
		return ""
	}
	return n.ID
}
