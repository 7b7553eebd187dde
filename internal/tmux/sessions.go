package tmux

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

// SessionFormatEnv customises the session label with a tmux format string.
const SessionFormatEnv = "TMUX_POPUP_MENU_SESSION_FORMAT"

func FetchSessions(socketPath string) (SessionSnapshot, error) {
	c, err := client(socketPath)
	if err != nil {
		return SessionSnapshot{}, err
	}

	sessions, err := c.ListSessions()
	if err != nil {
		invalidate(c)
		return SessionSnapshot{}, fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fallback, err := fetchSessionsFallback(socketPath)
		if err == nil {
			sessions = fallback
		}
	}
	labelMap := fetchSessionLabels(c, os.Getenv(SessionFormatEnv))
	currentName := currentSessionName(c)
	realClients := realAttachedClients(c)
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if s == nil {
			continue
		}
		clients := realClients[s.Name]
		out = append(out, Session{
			Name:     s.Name,
			Label:    labelMap[s.Name],
			Attached: len(clients) > 0,
			Clients:  clients,
			Current:  s.Name == currentName,
			Windows:  s.Windows,
		})
	}
	return SessionSnapshot{Sessions: out, Current: currentName}, nil
}

// SwitchClient moves clientID (or the control client's default target when
// empty) to the named session.
func SwitchClient(socketPath, clientID, target string) error {
	name := strings.TrimSpace(target)
	if name == "" {
		return errors.New("session target required")
	}
	c, err := client(socketPath)
	if err != nil {
		return err
	}
	if s, err := c.GetSessionByName(name); err != nil || s == nil {
		return fmt.Errorf("session %s not found", name)
	}
	opts := &gotmux.SwitchClientOptions{TargetSession: name}
	if isValidClientName(clientID) {
		opts.TargetClient = clientID
	}
	if err := c.SwitchClient(opts); err != nil {
		return fmt.Errorf("switch to %s: %w", name, err)
	}
	return nil
}

// fetchSessionsFallback lists sessions through the tmux binary when the
// control-mode ListSessions call returns nothing, which happens while the
// control client is still attaching.
func fetchSessionsFallback(socketPath string) ([]*gotmux.Session, error) {
	format := "#{session_name}\t#{session_windows}\t#{session_attached}"
	args := append(baseArgs(socketPath), "list-sessions", "-F", format)
	output, err := runExecCommand("tmux", args...).Output()
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(output))
	if text == "" {
		return []*gotmux.Session{}, nil
	}
	lines := strings.Split(text, "\n")
	sessions := make([]*gotmux.Session, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 3 {
			continue
		}
		windows, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
		attached, _ := strconv.Atoi(strings.TrimSpace(parts[2]))
		sessions = append(sessions, &gotmux.Session{
			Name:     strings.TrimSpace(parts[0]),
			Windows:  windows,
			Attached: attached,
		})
	}
	return sessions, nil
}

// fetchSessionLabels returns custom labels keyed by session name. Without a
// format every label is empty and the menu falls back to the bare name.
func fetchSessionLabels(c tmuxClient, envFormat string) map[string]string {
	labelExpr := strings.TrimSpace(envFormat)
	if labelExpr == "" {
		return map[string]string{}
	}
	lines, err := c.ListSessionsFormat("#{session_name}\t" + labelExpr)
	if err != nil {
		return map[string]string{}
	}
	labels := make(map[string]string, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(strings.TrimSpace(line), "\t", 2)
		name := strings.TrimSpace(parts[0])
		if name == "" || len(parts) < 2 {
			continue
		}
		if label := strings.TrimSpace(parts[1]); label != "" {
			labels[name] = label
		}
	}
	return labels
}

// realAttachedClients maps session names to their non-control-mode clients.
// Our own control connection would otherwise count as an attachment.
func realAttachedClients(c tmuxClient) map[string][]string {
	clients, err := c.ListClients()
	if err != nil {
		return nil
	}
	result := make(map[string][]string)
	for _, cl := range clients {
		if cl == nil || cl.ControlMode || cl.Session == "" {
			continue
		}
		result[cl.Session] = append(result[cl.Session], cl.Name)
	}
	return result
}

func currentSessionName(c tmuxClient) string {
	if pane := strings.TrimSpace(os.Getenv("TMUX_PANE")); pane != "" {
		if name, err := c.DisplayMessage(pane, "#{session_name}"); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				return name
			}
		}
	}
	if clients, err := c.ListClients(); err == nil {
		for _, cl := range clients {
			if cl != nil && !cl.ControlMode && cl.Session != "" {
				return cl.Session
			}
		}
	}
	return ""
}
