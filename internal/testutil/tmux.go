package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

var ErrPaneUnavailable = errors.New("tmux pane unavailable")

// SessionName is the detached session every test server starts with.
const SessionName = "tmux-popup-menu-test"

// Server is a throwaway tmux server bound to its own socket.
type Server struct {
	Socket string
	// LogDir holds the server's -vv logs.
	LogDir string
}

// RequireTmux aborts the calling test when tmux is not present on PATH.
func RequireTmux(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("tmux")
	if err != nil {
		t.Skip("skipping: tmux binary not available")
	}
	return path
}

// StartTmuxServer boots a temporary tmux server. The server is killed and
// its logs checked for crashes when the test ends.
func StartTmuxServer(t *testing.T) *Server {
	t.Helper()
	RequireTmux(t)
	baseDir, err := os.MkdirTemp("/tmp", "tmux-popup-menu-*")
	if err != nil {
		t.Fatalf("failed to create tmux temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(baseDir) })
	srv := &Server{Socket: filepath.Join(baseDir, "tmux-test.sock"), LogDir: baseDir}
	cmd := srv.Command("-f", "/dev/null", "-vv", "new-session", "-d", "-s", SessionName, "sleep", "600")
	cmd.Dir = baseDir
	if err := cmd.Run(); err != nil {
		t.Skipf("skipping: failed to start tmux server: %v", err)
	}
	if out, err := srv.Command("display-message", "-p", "#{pid}").Output(); err == nil {
		if pid := strings.TrimSpace(string(out)); pid != "" {
			t.Logf("started tmux test server pid=%s socket=%s", pid, srv.Socket)
		}
	}
	t.Cleanup(func() {
		srv.kill(t)
		srv.assertNoCrash(t)
	})
	return srv
}

func (s *Server) kill(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := gotmux.NewTmuxWithOptions(s.Socket, gotmux.WithContext(ctx))
	if err == nil {
		defer client.Close()
		err = client.KillServer()
	}
	if err != nil {
		t.Logf("control-mode kill failed for socket %s: %v; falling back to tmux kill-server", s.Socket, err)
		_ = s.Command("kill-server").Run()
	}
}

// assertNoCrash scans the server logs for an unexpected exit.
func (s *Server) assertNoCrash(t *testing.T) {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(s.LogDir, "tmux-server-*.log"))
	if err != nil {
		t.Errorf("failed to glob tmux logs: %v", err)
		return
	}
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("failed to read tmux server log %s: %v", path, err)
			continue
		}
		if bytes.Contains(content, []byte("server exited unexpectedly")) {
			t.Errorf("tmux server reported unexpected exit; see %s", path)
		}
	}
}

// Command builds a tmux invocation against the server, isolated from any
// tmux the test itself runs under.
func (s *Server) Command(extra ...string) *exec.Cmd {
	args := append([]string{"-S", s.Socket}, extra...)
	cmd := exec.Command("tmux", args...)
	env := make([]string, 0, len(os.Environ())+2)
	for _, entry := range os.Environ() {
		if strings.HasPrefix(entry, "TMUX=") || strings.HasPrefix(entry, "TMUX_PANE=") {
			continue
		}
		env = append(env, entry)
	}
	cmd.Env = append(env, "TMUX=", "TMUX_TMPDIR="+filepath.Dir(s.Socket))
	return cmd
}

// CapturePane returns the text of a pane with styling removed.
func (s *Server) CapturePane(target string) (string, error) {
	output, err := s.Command("capture-pane", "-p", "-t", target).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", ErrPaneUnavailable
		}
		return "", fmt.Errorf("capture-pane failed: %w", err)
	}
	return string(output), nil
}

// SendKeys types keys into target using tmux key names.
func (s *Server) SendKeys(target string, keys ...string) error {
	args := append([]string{"send-keys", "-t", target}, keys...)
	if out, err := s.Command(args...).CombinedOutput(); err != nil {
		return fmt.Errorf("send-keys %v: %w (%s)", keys, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Popup is a popup binary running in its own session on a test server.
type Popup struct {
	srv      *Server
	Pane     string
	exitPath string
}

// LaunchPopup runs bin with args in a fresh 80x24 session. The shell wrapper
// records the exit status so tests can assert on it after the popup closes.
func (s *Server) LaunchPopup(t *testing.T, session, bin string, args ...string) *Popup {
	t.Helper()
	dir := t.TempDir()
	p := &Popup{srv: s, Pane: session + ":0.0", exitPath: filepath.Join(dir, "exit-code")}
	quoted := make([]string, 0, len(args)+3)
	quoted = append(quoted, shellQuote(bin), "-socket", shellQuote(s.Socket))
	for _, a := range args {
		quoted = append(quoted, shellQuote(a))
	}
	script := "#!/bin/sh\n" +
		strings.Join(quoted, " ") + " 2>/dev/null\n" +
		"printf '%s' $? > " + shellQuote(p.exitPath) + "\n" +
		"sleep 300\n"
	scriptPath := filepath.Join(dir, "run.sh")
	if err := os.WriteFile(scriptPath, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write launcher script: %v", err)
	}
	if err := s.Command("new-session", "-d", "-x", "80", "-y", "24", "-s", session, scriptPath).Run(); err != nil {
		t.Fatalf("failed to launch popup: %v", err)
	}
	if err := s.Command("has-session", "-t", session).Run(); err != nil {
		t.Skipf("skipping: unable to create tmux session: %v", err)
	}
	t.Cleanup(func() { _ = s.Command("kill-session", "-t", session).Run() })
	return p
}

// ExitCode returns the popup's exit status once it has exited.
func (p *Popup) ExitCode() (string, bool) {
	data, err := os.ReadFile(p.exitPath)
	if err != nil {
		return "", false
	}
	code := strings.TrimSpace(string(data))
	return code, code != ""
}

// WaitForText polls the popup's pane until want shows up and returns the
// capture. It fails fast when the popup exits with a non-zero status.
func (p *Popup) WaitForText(t *testing.T, timeout time.Duration, want string) string {
	t.Helper()
	return p.waitFor(t, timeout, want, func(out string) bool { return strings.Contains(out, want) })
}

// WaitForExit waits until the popup process has exited and returns its
// status.
func (p *Popup) WaitForExit(t *testing.T, timeout time.Duration) string {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if code, ok := p.ExitCode(); ok {
			return code
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for popup to exit")
	return ""
}

func (p *Popup) waitFor(t *testing.T, timeout time.Duration, desc string, done func(string) bool) string {
	t.Helper()
	deadline := time.Now().Add(timeout)
	loggedMissing := false
	last := ""
	for time.Now().Before(deadline) {
		if code, ok := p.ExitCode(); ok && code != "0" {
			t.Fatalf("tmux-popup-menu exited early with code %s", code)
		}
		out, err := p.srv.CapturePane(p.Pane)
		switch {
		case errors.Is(err, ErrPaneUnavailable):
			if !loggedMissing {
				t.Logf("waiting for pane %s to become available", p.Pane)
				loggedMissing = true
			}
		case err != nil:
			t.Fatalf("capture-pane error: %v", err)
		default:
			last = out
			if done(out) {
				return out
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %q, last capture:\n%s", desc, last)
	return ""
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
