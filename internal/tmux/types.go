package tmux

import (
	"os/exec"
	"sync"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

// Session is one tmux session as shown in the switch submenu.
type Session struct {
	Name     string
	Label    string
	Attached bool
	Clients  []string
	Current  bool
	Windows  int
}

type SessionSnapshot struct {
	Sessions []Session
	Current  string
}

var (
	newTmux = func(socketPath string) (tmuxClient, error) {
		if socketPath != "" {
			return gotmux.NewTmux(socketPath)
		}
		return gotmux.DefaultTmux()
	}

	runExecCommand = func(name string, args ...string) commander {
		return realCommander{cmd: exec.Command(name, args...)}
	}

	clientMu     sync.Mutex
	cachedClient tmuxClient
	cachedSocket string
)

type tmuxClient interface {
	ListSessions() ([]*gotmux.Session, error)
	ListClients() ([]*gotmux.Client, error)
	SwitchClient(*gotmux.SwitchClientOptions) error
	GetSessionByName(string) (*gotmux.Session, error)
	DisplayMessage(target, format string) (string, error)
	ListSessionsFormat(format string) ([]string, error)
	Close() error
}

type commander interface {
	Run() error
	Output() ([]byte, error)
	CombinedOutput() ([]byte, error)
}

type realCommander struct {
	cmd *exec.Cmd
}

func (r realCommander) Run() error {
	return r.cmd.Run()
}

func (r realCommander) Output() ([]byte, error) {
	return r.cmd.Output()
}

func (r realCommander) CombinedOutput() ([]byte, error) {
	return r.cmd.CombinedOutput()
}
