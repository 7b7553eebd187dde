package ui

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/atomicstack/tmux-popup-menu/internal/backend"
	"github.com/atomicstack/tmux-popup-menu/internal/data/dispatcher"
	"github.com/atomicstack/tmux-popup-menu/internal/engine"
	"github.com/atomicstack/tmux-popup-menu/internal/input"
	"github.com/atomicstack/tmux-popup-menu/internal/logging"
	"github.com/atomicstack/tmux-popup-menu/internal/logging/events"
	"github.com/atomicstack/tmux-popup-menu/internal/menu"
	"github.com/atomicstack/tmux-popup-menu/internal/state"
	"github.com/atomicstack/tmux-popup-menu/internal/theme"
	"github.com/atomicstack/tmux-popup-menu/internal/timer"
	"github.com/atomicstack/tmux-popup-menu/internal/ui/command"
	uistate "github.com/atomicstack/tmux-popup-menu/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

const (
	menuHeaderSeparator = "→"
	defaultRootTitle    = "main menu"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model. Zero values select the defaults.
type Options struct {
	// Source supplies the menu description; nil selects the built-in menu.
	Source     menu.Source
	Sessions   state.SessionStore
	Watcher    *backend.Watcher
	Bus        *command.Bus
	SocketPath string
	// RootMenu names a submenu to reveal when the popup opens.
	RootMenu   string
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	PageSize   int
	// Clock drives every timer. A custom clock fires timers synchronously
	// from its own callbacks, which suits timer.ManualClock.
	Clock   timer.Clock
	Arbiter *engine.Arbiter
}

// Model implements the Bubble Tea model for the tmux popup menu. It is also
// the engine's Host.
type Model struct {
	engine     *engine.Engine
	source     menu.Source
	bus        *command.Bus
	sessions   state.SessionStore
	dispatcher *dispatcher.Dispatcher
	backend    *backend.Watcher
	clock      timer.Clock
	timers     *timer.Registry
	fired      chan timer.Fired
	zones      *zone.Manager
	panels     *uistate.Panels

	handlers map[reflect.Type]msgHandler

	socketPath  string
	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	verbose     bool

	hovered *menu.Node
	inside  bool
	areas   []panelArea
	targets []string

	queued   []command.Request
	inFlight int

	errMsg     string
	infoMsg    string
	menuErr    string
	backendErr string
	actionErr  error
	quitting   bool
}

// NewModel builds the model, loads the menu and opens the popup.
func NewModel(opts Options) *Model {
	src := opts.Source
	if src == nil {
		src = menu.DefaultSource()
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = state.NewSessionStore()
	}
	bus := opts.Bus
	if bus == nil {
		bus = command.New()
	}
	m := &Model{
		source:     src,
		bus:        bus,
		sessions:   sessions,
		dispatcher: dispatcher.New(sessions),
		backend:    opts.Watcher,
		zones:      zone.New(),
		panels:     uistate.NewPanels(),
		socketPath: opts.SocketPath,
		showFooter: opts.ShowFooter,
		verbose:    opts.Verbose,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}

	clock := opts.Clock
	var post func(timer.Fired)
	if clock == nil {
		clock = timer.SystemClock{}
		m.fired = make(chan timer.Fired, firedBuffer)
		post = m.postTimer
	}
	m.clock = clock
	m.timers = timer.NewRegistry(clock, post)
	m.engine = engine.New(m, engine.Options{
		Clock:     clock,
		Post:      post,
		Providers: menu.Providers{"sessions": menu.SessionsProvider(sessions)},
		Arbiter:   opts.Arbiter,
		PageSize:  opts.PageSize,
	})
	m.registerHandlers()

	if err := m.engine.Refresh(); err != nil {
		logging.Error(err)
		m.menuErr = err.Error()
	}
	m.engine.Open(engine.Position{})
	m.engine.Dispatch(engine.Event{Command: engine.CmdFocus, Input: input.KindFocus})
	m.applyRootMenu(opts.RootMenu)
	return m
}

func (m *Model) applyRootMenu(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	n, ok := m.engine.Tree().FindSubmenu(query)
	if !ok {
		m.menuErr = fmt.Sprintf("no submenu matches %q", query)
		return
	}
	m.engine.Reveal(n)
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	if m.fired != nil {
		cmds = append(cmds, waitForTimer(m.fired))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.MouseMsg{}):      m.handleMouseMsg,
		reflect.TypeOf(tea.FocusMsg{}):      m.handleFocusMsg,
		reflect.TypeOf(tea.BlurMsg{}):       m.handleBlurMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(command.Result{}):    m.handleActionResultMsg,
		reflect.TypeOf(timerFiredMsg{}):     m.handleTimerFiredMsg,
		reflect.TypeOf(clockAdvancedMsg{}):  m.handleClockAdvancedMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

// finishUpdate starts any actions selected during this update and quits
// once the popup has closed with nothing left running.
func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	cmds = append(cmds, m.runQueued()...)
	if !m.quitting && m.engine.Closed() && m.inFlight == 0 {
		m.quitting = true
		cmds = append(cmds, tea.Quit)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) dispatch(ev engine.Event) {
	if m.quitting {
		return
	}
	m.engine.Dispatch(ev)
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = size.Width
	}
	if !m.fixedHeight {
		m.height = size.Height
	}
	events.UI.Resize(m.width, m.height)
	m.ensureVisible(m.engine.Active())
	return nil
}

// Tree is part of engine.Host.
func (m *Model) Tree() (menu.Entry, error) {
	return m.source.Tree()
}

// OnSelect is part of engine.Host. The request runs after the current
// Dispatch returns.
func (m *Model) OnSelect(n *menu.Node) {
	m.queued = append(m.queued, command.RequestFor(n))
}

// OnExpand is part of engine.Host. A freshly opened panel starts at the top.
func (m *Model) OnExpand(n *menu.Node) {
	m.panels.Get(n.ID).Offset = 0
}

// OnFocusChange is part of engine.Host.
func (m *Model) OnFocusChange(n *menu.Node) {
	m.ensureVisible(n)
}

// Err returns the error of the last failed action, if any.
func (m *Model) Err() error {
	return m.actionErr
}

// Engine exposes the interaction engine, mainly for tests.
func (m *Model) Engine() *engine.Engine {
	return m.engine
}

// Close ends the popup session and cancels outstanding timers.
func (m *Model) Close() {
	m.timers.CancelAll()
	m.engine.Dispose()
	m.zones.Close()
}
