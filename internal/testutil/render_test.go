package testutil

import (
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func buildBinary(t *testing.T) string {
	t.Helper()
	RequireTmux(t)
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("skipping: go toolchain not available")
	}
	bin := filepath.Join(t.TempDir(), "tmux-popup-menu")
	cmd := exec.Command("go", "build", "-o", bin, ".")
	cmd.Dir = repoRoot(t)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, out)
	}
	return bin
}

func repoRoot(t *testing.T) string {
	t.Helper()
	out, err := exec.Command("go", "env", "GOMOD").Output()
	if err != nil {
		t.Fatalf("go env GOMOD: %v", err)
	}
	return filepath.Dir(strings.TrimSpace(string(out)))
}

func launch(t *testing.T, session string) (*Server, *Popup) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping: builds the binary")
	}
	bin := buildBinary(t)
	srv := StartTmuxServer(t)
	logFile := filepath.Join(t.TempDir(), "popup.log")
	return srv, srv.LaunchPopup(t, session, bin, "-width", "80", "-height", "24", "-log-file", logFile)
}

func TestPopupRendersRootMenu(t *testing.T) {
	srv, popup := launch(t, "rootmenu")
	output := popup.WaitForText(t, 5*time.Second, "Window")
	for _, want := range []string{"main menu", "Session", "Pane", "Copy socket path"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in rendered menu:\n%s", want, output)
		}
	}
	if err := srv.SendKeys(popup.Pane, "Escape"); err != nil {
		t.Fatalf("%v", err)
	}
	if code := popup.WaitForExit(t, 5*time.Second); code != "0" {
		t.Fatalf("expected clean exit, got %s", code)
	}
}

func TestPopupOpensSubmenuByMnemonic(t *testing.T) {
	srv, popup := launch(t, "mnemonic")
	popup.WaitForText(t, 5*time.Second, "Window")
	if err := srv.SendKeys(popup.Pane, "w"); err != nil {
		t.Fatalf("%v", err)
	}
	output := popup.WaitForText(t, 5*time.Second, "Move left")
	if !strings.Contains(output, "main menu→Window") {
		t.Fatalf("expected breadcrumb for the window submenu:\n%s", output)
	}
	if err := srv.SendKeys(popup.Pane, "C-c"); err != nil {
		t.Fatalf("%v", err)
	}
	if code := popup.WaitForExit(t, 5*time.Second); code != "0" {
		t.Fatalf("expected clean exit, got %s", code)
	}
}
