package dispatcher

import (
	"github.com/atomicstack/tmux-popup-menu/internal/backend"
	"github.com/atomicstack/tmux-popup-menu/internal/logging/events"
	"github.com/atomicstack/tmux-popup-menu/internal/menu"
	"github.com/atomicstack/tmux-popup-menu/internal/state"
	"github.com/atomicstack/tmux-popup-menu/internal/tmux"
)

// Result tells the caller which parts of the menu need rebuilding.
type Result struct {
	SessionsUpdated bool
	MenuChanged     bool
	Err             error
}

// NeedsRefresh reports whether the menu tree should be rebuilt.
func (r Result) NeedsRefresh() bool {
	return r.SessionsUpdated || r.MenuChanged
}

type Dispatcher struct {
	sessions state.SessionStore
}

func New(s state.SessionStore) *Dispatcher {
	return &Dispatcher{sessions: s}
}

func (d *Dispatcher) Handle(evt backend.Event) Result {
	var res Result
	if evt.Err != nil {
		events.Backend.Error(evt.Kind.String(), evt.Err)
		res.Err = evt.Err
		return res
	}
	switch evt.Kind {
	case backend.KindSessions:
		if snapshot, ok := evt.Data.(tmux.SessionSnapshot); ok {
			events.Backend.Sessions(len(snapshot.Sessions))
			d.sessions.SetCurrent(snapshot.Current)
			res.SessionsUpdated = d.sessions.SetEntries(SessionEntries(snapshot.Sessions))
		}
	case backend.KindMenuFile:
		res.MenuChanged = true
	}
	return res
}

// SessionEntries converts a tmux snapshot into menu provider entries.
func SessionEntries(sessions []tmux.Session) []menu.SessionEntry {
	if len(sessions) == 0 {
		return nil
	}
	out := make([]menu.SessionEntry, len(sessions))
	for i, s := range sessions {
		out[i] = menu.SessionEntry{
			Name:     s.Name,
			Label:    s.Label,
			Attached: s.Attached,
			Current:  s.Current,
			Clients:  append([]string(nil), s.Clients...),
			Windows:  s.Windows,
		}
	}
	return out
}
