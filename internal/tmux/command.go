package tmux

import (
	"errors"
	"fmt"
	"strings"
)

func baseArgs(socketPath string) []string {
	if strings.TrimSpace(socketPath) == "" {
		return []string{}
	}
	return []string{"-S", socketPath}
}

// RunCommand executes one tmux command through the tmux binary rather than the
// control connection, so commands that need the launching client (prompts,
// detach, copy mode) resolve it from the environment.
func RunCommand(socketPath string, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("empty tmux command")
	}
	args := append(baseArgs(socketPath), argv...)
	out, err := runExecCommand("tmux", args...).CombinedOutput()
	text := strings.TrimSpace(string(out))
	if err != nil {
		if text != "" {
			return "", fmt.Errorf("tmux %s: %s: %w", argv[0], text, err)
		}
		return "", fmt.Errorf("tmux %s: %w", argv[0], err)
	}
	return text, nil
}

// RunDeferred queues argv on the server with run-shell -b so it executes
// after the popup has closed. Prompts and menus opened while the popup is
// still on screen would otherwise be dismissed with it.
func RunDeferred(socketPath string, argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty tmux command")
	}
	parts := []string{"tmux"}
	for _, arg := range append(baseArgs(socketPath), argv...) {
		parts = append(parts, shellQuote(arg))
	}
	script := "sleep 0.03; " + strings.Join(parts, " ")
	_, err := RunCommand(socketPath, []string{"run-shell", "-b", script})
	return err
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`#&|;<>()*?[]{}~!%") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
