package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/tmux-popup-menu/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App      app.Config
	Logging  Logging
	Features Features
	Flags    map[string]string
	Args     []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

type Features struct {
	Verbose bool
}

const (
	envSocketPath = "TMUX_POPUP_MENU_SOCKET"
	envMenuFile   = "TMUX_POPUP_MENU_FILE"
	envRootMenu   = "TMUX_POPUP_MENU_ROOT"
	envWidth      = "TMUX_POPUP_MENU_WIDTH"
	envHeight     = "TMUX_POPUP_MENU_HEIGHT"
	envShowFooter = "TMUX_POPUP_MENU_FOOTER"
	envPageSize   = "TMUX_POPUP_MENU_PAGE_SIZE"
	envPoll       = "TMUX_POPUP_MENU_POLL"
	envVerbose    = "TMUX_POPUP_MENU_VERBOSE"
	envTrace      = "TMUX_POPUP_MENU_TRACE"
	envLogFile    = "TMUX_POPUP_MENU_LOG_FILE"
)

const defaultPoll = 1500 * time.Millisecond

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("tmux-popup-menu", flag.ContinueOnError)
	usage := new(strings.Builder)
	fs.SetOutput(usage)

	socket := fs.String("socket", envOrDefault(env, envSocketPath, ""), "path to the tmux socket (overrides environment detection)")
	menuFile := fs.String("menu", envOrDefault(env, envMenuFile, ""), "path to a YAML menu file (empty uses the built-in menu)")
	root := fs.String("root", envOrDefault(env, envRootMenu, ""), "open the popup with this submenu expanded (id or label)")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, false), "enable footer hint row (disabled by default)")
	pageSize := fs.Int("page-size", envOrInt(env, envPageSize, 0), "items moved by page up/down (0 uses the default)")
	poll := fs.Duration("poll", envOrDuration(env, envPoll, defaultPoll), "interval between tmux session polls")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	verbose := fs.Bool("verbose", envOrBool(env, envVerbose, false), "print success messages for actions")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Config{}, &HelpError{Usage: usage.String()}
		}
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}
	if *pageSize < 0 {
		return Config{}, fmt.Errorf("page-size must be >= 0 (got %d)", *pageSize)
	}
	if *poll <= 0 {
		return Config{}, fmt.Errorf("poll must be > 0 (got %s)", *poll)
	}

	cfg := Config{
		App: app.Config{
			SocketPath:   *socket,
			MenuPath:     *menuFile,
			RootMenu:     *root,
			Width:        *width,
			Height:       *height,
			ShowFooter:   *footer,
			PageSize:     *pageSize,
			PollInterval: *poll,
			Verbose:      *verbose,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Features: Features{
			Verbose: *verbose,
		},
		Flags: map[string]string{
			"socket":   *socket,
			"menu":     *menuFile,
			"root":     *root,
			"width":    strconv.Itoa(*width),
			"height":   strconv.Itoa(*height),
			"footer":   strconv.FormatBool(*footer),
			"pageSize": strconv.Itoa(*pageSize),
			"poll":     poll.String(),
			"trace":    strconv.FormatBool(*trace),
			"verbose":  strconv.FormatBool(*verbose),
			"logFile":  *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// HelpError is returned when -h or -help was requested. Usage holds the
// flag summary.
type HelpError struct {
	Usage string
}

func (e *HelpError) Error() string { return "help requested" }

func (e *HelpError) Unwrap() error { return flag.ErrHelp }

// MustLoad returns configuration or exits. A help request prints the flag
// summary and exits cleanly.
func MustLoad() Config {
	cfg, err := Load()
	var help *HelpError
	if errors.As(err, &help) {
		fmt.Fprint(os.Stdout, help.Usage)
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate checks settings that depend on the filesystem.
func Validate(cfg Config) error {
	path := strings.TrimSpace(cfg.App.MenuPath)
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("menu file %s does not exist", path)
		}
		return fmt.Errorf("menu file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("menu file %s is a directory", path)
	}
	return nil
}
