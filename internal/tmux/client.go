package tmux

import (
	"os"
	"strings"
)

// client returns the control-mode connection for socketPath, reusing the
// previous one while the socket is unchanged. The poller calls this once per
// tick, so reconnecting every time would spawn a control client per poll.
func client(socketPath string) (tmuxClient, error) {
	clientMu.Lock()
	defer clientMu.Unlock()
	if cachedClient != nil && cachedSocket == socketPath {
		return cachedClient, nil
	}
	if cachedClient != nil {
		_ = cachedClient.Close()
		cachedClient = nil
	}
	c, err := newTmux(socketPath)
	if err != nil {
		return nil, err
	}
	cachedClient = c
	cachedSocket = socketPath
	return c, nil
}

// invalidate drops the cached connection after a transport failure so the
// next call dials again.
func invalidate(c tmuxClient) {
	clientMu.Lock()
	defer clientMu.Unlock()
	if cachedClient != c {
		return
	}
	_ = cachedClient.Close()
	cachedClient = nil
	cachedSocket = ""
}

// Shutdown closes the cached control-mode connection, if any.
func Shutdown() error {
	clientMu.Lock()
	defer clientMu.Unlock()
	if cachedClient == nil {
		return nil
	}
	err := cachedClient.Close()
	cachedClient = nil
	cachedSocket = ""
	return err
}

// CurrentClientID attempts to detect the client that launched the popup so
// SwitchClient commands can target the visible tmux client instead of the
// control-mode connection.
func CurrentClientID(socketPath string) string {
	c, err := client(socketPath)
	if err != nil {
		return ""
	}
	if pane := strings.TrimSpace(os.Getenv("TMUX_PANE")); pane != "" {
		if name, err := c.DisplayMessage(pane, "#{client_name}"); err == nil {
			if name = strings.TrimSpace(name); isValidClientName(name) {
				return name
			}
		}
	}
	clients, err := c.ListClients()
	if err != nil {
		return ""
	}
	session := currentSessionName(c)
	fallback := ""
	for _, cl := range clients {
		if cl == nil || cl.ControlMode || !isValidClientName(cl.Name) {
			continue
		}
		if session != "" && cl.Session == session {
			return cl.Name
		}
		if fallback == "" {
			fallback = cl.Name
		}
	}
	return fallback
}

// isValidClientName accepts tty paths and tmux's internal client names. It
// rejects status-line text that display-message returns outside a client.
func isValidClientName(name string) bool {
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return false
	}
	return strings.HasPrefix(name, "/") || strings.HasPrefix(name, "client-")
}
