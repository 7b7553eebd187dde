package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/tmux-popup-menu/internal/backend"
	"github.com/atomicstack/tmux-popup-menu/internal/logging"
	"github.com/atomicstack/tmux-popup-menu/internal/logging/events"
	"github.com/atomicstack/tmux-popup-menu/internal/menu"
	"github.com/atomicstack/tmux-popup-menu/internal/state"
	"github.com/atomicstack/tmux-popup-menu/internal/tmux"
	"github.com/atomicstack/tmux-popup-menu/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// Config describes user-provided application options.
type Config struct {
	SocketPath   string
	MenuPath     string
	RootMenu     string
	Width        int
	Height       int
	ShowFooter   bool
	PageSize     int
	PollInterval time.Duration
	Verbose      bool
}

const defaultPollInterval = 1500 * time.Millisecond

var (
	resolveSocketFn = tmux.ResolveSocketPath
	clientIDFn      = tmux.CurrentClientID
	shutdownFn      = tmux.Shutdown
	newWatcherFn    = backend.NewWatcher
	runProgramFn    = runProgram
)

func runProgram(model tea.Model) error {
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	_, err := program.Run()
	return err
}

// Run bootstraps and executes the Bubble Tea program. It returns the error
// of a failed menu action, if the popup closed after one.
func Run(cfg Config) (err error) {
	defer func() { events.App.Exit(err) }()

	socketPath, err := resolveSocketFn(cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("resolve socket path: %w", err)
	}

	source := menu.FileSource{Path: cfg.MenuPath}
	if _, err := source.Tree(); err != nil {
		return fmt.Errorf("load menu: %w", err)
	}

	sessions := state.NewSessionStore()
	sessions.SetClientID(clientIDFn(socketPath))
	defer func() {
		if cerr := shutdownFn(); cerr != nil {
			logging.Errorf("close tmux client: %w", cerr)
		}
	}()

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	watcher := newWatcherFn(socketPath, cfg.MenuPath, interval)
	if watcher != nil {
		defer watcher.Stop()
	}

	model := ui.NewModel(ui.Options{
		Source:     source,
		Sessions:   sessions,
		Watcher:    watcher,
		SocketPath: socketPath,
		RootMenu:   cfg.RootMenu,
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		Verbose:    cfg.Verbose,
		PageSize:   cfg.PageSize,
	})
	defer model.Close()

	if err := runProgramFn(model); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return model.Err()
}
