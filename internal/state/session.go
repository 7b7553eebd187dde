package state

import (
	"slices"

	"github.com/atomicstack/tmux-popup-menu/internal/menu"
)

// SessionStore holds the last session snapshot the backend delivered. It is
// only touched from the program loop.
type SessionStore interface {
	Entries() []menu.SessionEntry
	SetEntries([]menu.SessionEntry) bool
	Current() string
	SetCurrent(string)
	ClientID() string
	SetClientID(string)
}

type sessionStore struct {
	entries  []menu.SessionEntry
	current  string
	clientID string
}

func NewSessionStore() SessionStore {
	return &sessionStore{}
}

func (s *sessionStore) Entries() []menu.SessionEntry {
	return cloneSessionEntries(s.entries)
}

// SetEntries replaces the snapshot and reports whether anything visible in
// the menu changed.
func (s *sessionStore) SetEntries(entries []menu.SessionEntry) bool {
	if slices.EqualFunc(s.entries, entries, sameSession) {
		return false
	}
	s.entries = cloneSessionEntries(entries)
	return true
}

func (s *sessionStore) Current() string {
	return s.current
}

func (s *sessionStore) SetCurrent(current string) {
	s.current = current
}

// ClientID is the tmux client that launched the popup; switch actions
// target it.
func (s *sessionStore) ClientID() string {
	return s.clientID
}

func (s *sessionStore) SetClientID(id string) {
	s.clientID = id
}

func sameSession(a, b menu.SessionEntry) bool {
	return a.Name == b.Name &&
		a.Label == b.Label &&
		a.Attached == b.Attached &&
		a.Current == b.Current &&
		a.Windows == b.Windows &&
		slices.Equal(a.Clients, b.Clients)
}

func cloneSessionEntries(entries []menu.SessionEntry) []menu.SessionEntry {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]menu.SessionEntry, len(entries))
	for i, e := range entries {
		e.Clients = slices.Clone(e.Clients)
		dup[i] = e
	}
	return dup
}
