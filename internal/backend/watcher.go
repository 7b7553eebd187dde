package backend

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atomicstack/tmux-popup-menu/internal/logging/events"
	"github.com/atomicstack/tmux-popup-menu/internal/tmux"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	KindSessions Kind = iota
	KindMenuFile
)

func (k Kind) String() string {
	switch k {
	case KindSessions:
		return "sessions"
	case KindMenuFile:
		return "menu-file"
	default:
		return "unknown"
	}
}

// Event conveys updated data or an error from a backend poll. Sessions events
// carry a tmux.SessionSnapshot; menu file events carry the changed path.
type Event struct {
	Kind Kind
	Data interface{}
	Err  error
}

var fetchSessions = tmux.FetchSessions

// Watcher polls tmux at a fixed interval, watches the menu file and
// publishes events.
type Watcher struct {
	socketPath string
	menuPath   string
	interval   time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher creates a backend watcher that polls tmux every interval. When
// menuPath is not empty, changes to that file are reported as well.
func NewWatcher(socketPath, menuPath string, interval time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		socketPath: socketPath,
		menuPath:   menuPath,
		interval:   interval,
		ctx:        ctx,
		cancel:     cancel,
		events:     make(chan Event, 16),
	}

	w.startSessionPoller()
	if menuPath != "" {
		w.startMenuWatcher()
	}

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of backend events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. Pollers exit after their current fetch completes;
// use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
	events.Backend.Stop()
}

// Wait blocks until all goroutines have exited and the events channel is
// closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) startSessionPoller() {
	throttle := newThrottle(250 * time.Millisecond)
	w.wg.Add(1)
	go w.poll(KindSessions, func(ctx context.Context) (interface{}, error) {
		if !throttle.wait(ctx) {
			return nil, ctx.Err()
		}
		return fetchSessions(w.socketPath)
	})
}

func (w *Watcher) poll(kind Kind, fetch func(context.Context) (interface{}, error)) {
	defer w.wg.Done()

	emit := func() bool {
		data, err := fetch(w.ctx)
		return w.send(Event{Kind: kind, Data: data, Err: err})
	}

	if !emit() {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}

func (w *Watcher) send(evt Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.events <- evt:
		return true
	}
}

// startMenuWatcher watches the directory holding the menu file; editors
// replace files by rename, which drops a watch placed on the file itself.
func (w *Watcher) startMenuWatcher() {
	fw, err := fsnotify.NewWatcher()
	if err == nil {
		err = fw.Add(filepath.Dir(w.menuPath))
		if err != nil {
			_ = fw.Close()
		}
	}
	w.wg.Add(1)
	if err != nil {
		go func() {
			defer w.wg.Done()
			w.send(Event{Kind: KindMenuFile, Err: err})
		}()
		return
	}
	go w.watchMenu(fw)
}

func (w *Watcher) watchMenu(fw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fw.Close()
	target := filepath.Clean(w.menuPath)
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			events.Backend.MenuFile(target, ev.Op.String())
			if !w.send(Event{Kind: KindMenuFile, Data: target}) {
				return
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			if !w.send(Event{Kind: KindMenuFile, Err: err}) {
				return
			}
		}
	}
}
