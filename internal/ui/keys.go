package ui

import (
	"strings"
	"unicode"

	"github.com/atomicstack/tmux-popup-menu/internal/engine"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Letters are left unbound: they are mnemonics.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Home     key.Binding
	End      key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Open     key.Binding
	Back     key.Binding
	Select   key.Binding
	Close    key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "shift+tab"), key.WithHelp("↑/↓", "move")),
	Down:     key.NewBinding(key.WithKeys("down", "tab"), key.WithHelp("↓", "down")),
	Home:     key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first")),
	End:      key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last")),
	PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
	Open:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "open")),
	Back:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "back")),
	Select:   key.NewBinding(key.WithKeys("enter", " ", "space"), key.WithHelp("enter", "select")),
	Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

var directionKeys = []struct {
	binding *key.Binding
	dir     engine.Direction
}{
	{&keys.Up, engine.DirPrevious},
	{&keys.Down, engine.DirNext},
	{&keys.Home, engine.DirFirst},
	{&keys.End, engine.DirLast},
	{&keys.PageUp, engine.DirPageUp},
	{&keys.PageDown, engine.DirPageDown},
	{&keys.Open, engine.DirExpand},
	{&keys.Back, engine.DirCollapse},
	{&keys.Select, engine.DirActivate},
	{&keys.Close, engine.DirEscape},
}

func directionFor(msg tea.KeyMsg) (engine.Direction, bool) {
	for _, dk := range directionKeys {
		if key.Matches(msg, *dk.binding) {
			return dk.dir, true
		}
	}
	return engine.DirNone, false
}

// mnemonicRune returns the typed character when msg is a single printable
// rune without modifiers.
func mnemonicRune(msg tea.KeyMsg) (rune, bool) {
	if msg.Type != tea.KeyRunes || msg.Alt || msg.Paste || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if !unicode.IsPrint(r) || unicode.IsSpace(r) {
		return 0, false
	}
	return r, true
}

func (k keyMap) footerHelp() string {
	parts := make([]string, 0, 5)
	for _, b := range []key.Binding{k.Up, k.Open, k.Back, k.Select, k.Close} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
