package main

import (
	"fmt"
	"io"
	"os"

	"github.com/atomicstack/tmux-popup-menu/internal/app"
	"github.com/atomicstack/tmux-popup-menu/internal/config"
	"github.com/atomicstack/tmux-popup-menu/internal/logging"
	"github.com/atomicstack/tmux-popup-menu/internal/logging/events"
	"golang.org/x/term"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

var runApp = app.Run

func main() {
	os.Exit(run(config.MustLoad(), os.Stderr))
}

// run validates cfg, starts the popup and maps the outcome to an exit code.
func run(cfg config.Config, stderr io.Writer) int {
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return exitConfig
	}
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	events.App.Start(startupTracePayload(cfg))

	if err := runApp(cfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitRuntime
	}
	return exitOK
}

// startupTracePayload bundles runtime context for trace logging.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags)+2)
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":   cfg.Args,
		"flags":  flags,
		"config": cfg,
		"tty":    collectTTYDetails(os.Stdin, os.Stdout, os.Stderr),
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	if tmuxEnv := os.Getenv("TMUX"); tmuxEnv != "" {
		payload["tmux"] = tmuxEnv
	}
	return payload
}

type ttyDetails struct {
	Detected *ttyDetected     `json:"detected,omitempty"`
	Probes   []ttyProbeResult `json:"probes"`
}

type ttyDetected struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ttyProbeResult struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTTYDetails reports which of files is a terminal and the size of the
// first one that is. The popup's pane size is what tmux display-popup gave us.
func collectTTYDetails(files ...*os.File) ttyDetails {
	details := ttyDetails{Probes: make([]ttyProbeResult, 0, len(files))}
	for _, f := range files {
		probe := probeTTY(f)
		if details.Detected == nil && probe.IsTerminal && probe.Error == "" {
			details.Detected = &ttyDetected{Source: probe.Name, Width: probe.Width, Height: probe.Height}
		}
		details.Probes = append(details.Probes, probe)
	}
	return details
}

func probeTTY(f *os.File) ttyProbeResult {
	if f == nil {
		return ttyProbeResult{Name: "<nil>"}
	}
	probe := ttyProbeResult{Name: ttyName(f)}
	fd := int(f.Fd())
	if fd < 0 || !term.IsTerminal(fd) {
		return probe
	}
	probe.IsTerminal = true
	width, height, err := term.GetSize(fd)
	if err != nil {
		probe.Error = err.Error()
		return probe
	}
	probe.Width, probe.Height = width, height
	return probe
}

func ttyName(f *os.File) string {
	switch f {
	case os.Stdin:
		return "stdin"
	case os.Stdout:
		return "stdout"
	case os.Stderr:
		return "stderr"
	default:
		return f.Name()
	}
}
