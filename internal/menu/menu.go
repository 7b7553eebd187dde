package menu

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/atomicstack/tmux-popup-menu/internal/format/table"
)

// Entry describes one menu entry as supplied by the host. An entry with
// Items or a Provider becomes a submenu, Separator entries become dividers and
// everything else is a selectable item.
type Entry struct {
	ID        string   `yaml:"id,omitempty"`
	Label     string   `yaml:"label,omitempty"`
	Mnemonic  string   `yaml:"mnemonic,omitempty"`
	Hint      string   `yaml:"hint,omitempty"`
	Separator bool     `yaml:"separator,omitempty"`
	Disabled  bool     `yaml:"disabled,omitempty"`
	Action    string   `yaml:"action,omitempty"`
	Command   []string `yaml:"command,omitempty"`
	Target    string   `yaml:"target,omitempty"`
	Text      string   `yaml:"text,omitempty"`
	Provider  string   `yaml:"provider,omitempty"`
	Items     []Entry  `yaml:"items,omitempty"`
}

// Source yields the host's current menu description. It is read on every refresh.
type Source interface {
	Tree() (Entry, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (Entry, error)

func (f SourceFunc) Tree() (Entry, error) { return f() }

// StaticSource always returns the same description.
type StaticSource struct {
	Root Entry
}

func (s StaticSource) Tree() (Entry, error) { return s.Root, nil }

// Provider generates the children of a submenu whose entry names it. parentID
// is the id of the submenu being filled.
type Provider func(parentID string) []Entry

// Providers maps provider names to generators.
type Providers map[string]Provider

// SessionEntry represents a tmux session reference for the sessions provider.
type SessionEntry struct {
	Name     string
	Label    string
	Attached bool
	Current  bool
	Clients  []string
	Windows  int
}

// SessionLister is satisfied by the session store.
type SessionLister interface {
	Entries() []SessionEntry
}

// SessionsProvider lists tmux sessions as switch targets with their window
// counts aligned in columns. The current session is shown but disabled.
func SessionsProvider(store SessionLister) Provider {
	return func(parentID string) []Entry {
		if store == nil {
			return nil
		}
		sessions := store.Entries()
		if len(sessions) == 0 {
			return nil
		}
		rows := make([][]string, len(sessions))
		for i, s := range sessions {
			name := s.Label
			if name == "" {
				name = s.Name
			}
			rows[i] = []string{name, fmt.Sprintf("%d windows", s.Windows)}
		}
		labels := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignRight})
		out := make([]Entry, 0, len(sessions))
		for i, s := range sessions {
			hint := ""
			switch {
			case s.Current:
				hint = "current"
			case len(s.Clients) > 1:
				hint = fmt.Sprintf("attached (%d)", len(s.Clients))
			case s.Attached:
				hint = "attached"
			}
			out = append(out, Entry{
				ID:       parentID + ":" + s.Name,
				Label:    strings.ReplaceAll(labels[i], "&", "&&"),
				Hint:     hint,
				Disabled: s.Current,
				Action:   string(ActionSwitchSession),
				Target:   s.Name,
			})
		}
		return out
	}
}

// splitMnemonic strips "&x" accelerator markers from a label and returns the
// first marked rune, lowercased, with its rune offset in the stripped label
// (-1 when unmarked). "&&" is a literal ampersand.
func splitMnemonic(label string) (string, rune, int) {
	if !strings.ContainsRune(label, '&') {
		return label, 0, -1
	}
	var out []rune
	var mnemonic rune
	at := -1
	runes := []rune(label)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '&' && i+1 < len(runes) {
			i++
			next := runes[i]
			if next != '&' && mnemonic == 0 {
				mnemonic = unicode.ToLower(next)
				at = len(out)
			}
			out = append(out, next)
			continue
		}
		out = append(out, r)
	}
	return string(out), mnemonic, at
}

// mnemonicOffset finds the first rune of label equal to r, ignoring case.
func mnemonicOffset(label string, r rune) int {
	for i, c := range []rune(label) {
		if unicode.ToLower(c) == r {
			return i
		}
	}
	return -1
}

func slug(label string) string {
	fields := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}

func prettyLabel(id string) string {
	if id == "" {
		return id
	}
	if idx := strings.LastIndex(id, ":"); idx >= 0 {
		id = id[idx+1:]
	}
	parts := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		if i == 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
