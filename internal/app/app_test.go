package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/tmux-popup-menu/internal/backend"
	"github.com/atomicstack/tmux-popup-menu/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

type runStubs struct {
	clientSocket string
	watcherArgs  []string
	interval     time.Duration
	shutdowns    int
	model        *ui.Model
}

func stubRun(t *testing.T, run func(*ui.Model) error) *runStubs {
	t.Helper()
	s := &runStubs{}
	origResolve, origClient, origShutdown := resolveSocketFn, clientIDFn, shutdownFn
	origWatcher, origRun := newWatcherFn, runProgramFn
	t.Cleanup(func() {
		resolveSocketFn, clientIDFn, shutdownFn = origResolve, origClient, origShutdown
		newWatcherFn, runProgramFn = origWatcher, origRun
	})
	resolveSocketFn = func(flag string) (string, error) {
		if flag == "" {
			return "/tmp/default.sock", nil
		}
		return flag, nil
	}
	clientIDFn = func(socket string) string {
		s.clientSocket = socket
		return "/dev/pts/1"
	}
	shutdownFn = func() error {
		s.shutdowns++
		return nil
	}
	newWatcherFn = func(socket, menuPath string, interval time.Duration) *backend.Watcher {
		s.watcherArgs = []string{socket, menuPath}
		s.interval = interval
		return nil
	}
	runProgramFn = func(model tea.Model) error {
		m, ok := model.(*ui.Model)
		if !ok {
			t.Fatalf("expected *ui.Model, got %T", model)
		}
		s.model = m
		if run == nil {
			return nil
		}
		return run(m)
	}
	return s
}

func TestRunStartsProgramWithResolvedSocket(t *testing.T) {
	s := stubRun(t, nil)
	if err := Run(Config{SocketPath: "/tmp/custom.sock"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.model == nil {
		t.Fatalf("expected program to run")
	}
	if s.clientSocket != "/tmp/custom.sock" {
		t.Fatalf("expected client lookup on custom socket, got %q", s.clientSocket)
	}
	if len(s.watcherArgs) != 2 || s.watcherArgs[0] != "/tmp/custom.sock" || s.watcherArgs[1] != "" {
		t.Fatalf("unexpected watcher args %v", s.watcherArgs)
	}
	if s.interval != defaultPollInterval {
		t.Fatalf("expected default poll interval, got %s", s.interval)
	}
	if s.shutdowns != 1 {
		t.Fatalf("expected tmux client shutdown once, got %d", s.shutdowns)
	}
}

func TestRunHonoursPollInterval(t *testing.T) {
	s := stubRun(t, nil)
	if err := Run(Config{PollInterval: 3 * time.Second}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.interval != 3*time.Second {
		t.Fatalf("expected 3s poll interval, got %s", s.interval)
	}
}

func TestRunRejectsBrokenMenuFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	if err := os.WriteFile(path, []byte("items: [\n"), 0o644); err != nil {
		t.Fatalf("write menu: %v", err)
	}
	s := stubRun(t, nil)
	err := Run(Config{MenuPath: path})
	if err == nil || !strings.Contains(err.Error(), "load menu") {
		t.Fatalf("expected menu error, got %v", err)
	}
	if s.model != nil {
		t.Fatalf("expected program not to start")
	}
}

func TestRunReportsSocketErrors(t *testing.T) {
	stubRun(t, nil)
	resolveSocketFn = func(string) (string, error) { return "", errors.New("no user") }
	err := Run(Config{})
	if err == nil || !strings.Contains(err.Error(), "resolve socket path") {
		t.Fatalf("expected socket error, got %v", err)
	}
}

func TestRunIgnoresKilledProgram(t *testing.T) {
	stubRun(t, func(*ui.Model) error { return tea.ErrProgramKilled })
	if err := Run(Config{}); err != nil {
		t.Fatalf("expected killed program to be ignored, got %v", err)
	}
}

func TestRunReturnsProgramErrors(t *testing.T) {
	boom := errors.New("boom")
	s := stubRun(t, func(*ui.Model) error { return boom })
	if err := Run(Config{}); !errors.Is(err, boom) {
		t.Fatalf("expected program error, got %v", err)
	}
	if s.shutdowns != 1 {
		t.Fatalf("expected shutdown after failure, got %d", s.shutdowns)
	}
}

func TestRunRevealsRootMenu(t *testing.T) {
	var scope string
	stubRun(t, func(m *ui.Model) error {
		if n := m.Engine().Scope(); n != nil {
			scope = n.ID
		}
		return nil
	})
	if err := Run(Config{RootMenu: "window"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if scope != "root:window" {
		t.Fatalf("expected window submenu revealed, got %q", scope)
	}
}

func TestRunClosesPopupOnExit(t *testing.T) {
	s := stubRun(t, nil)
	if err := Run(Config{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !s.model.Engine().Closed() {
		t.Fatalf("expected popup disposed after the program exits")
	}
}
