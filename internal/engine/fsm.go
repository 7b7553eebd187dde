package engine

// State is the coarse interaction state derived from a session.
type State int

const (
	StateClosed State = iota
	StateOpenNoFocus
	StateOpenFocused
	StateOpenSubmenuExpanded
)

func (s State) String() string {
	switch s {
	case StateOpenNoFocus:
		return "open-no-focus"
	case StateOpenFocused:
		return "open-focused"
	case StateOpenSubmenuExpanded:
		return "open-submenu-expanded"
	default:
		return "closed"
	}
}

// Command names one input the state machine understands.
type Command int

const (
	CmdNone Command = iota
	CmdOpen
	CmdHoverEnter
	CmdHoverLeave
	CmdPress
	CmdRelease
	CmdClick
	CmdExpand
	CmdCollapse
	CmdCollapseAll
	CmdNavigate
	CmdMnemonic
	CmdFocus
	CmdBlur
	CmdClickOutside
)

var commandNames = map[Command]string{
	CmdNone:         "none",
	CmdOpen:         "open",
	CmdHoverEnter:   "hover-enter",
	CmdHoverLeave:   "hover-leave",
	CmdPress:        "press",
	CmdRelease:      "release",
	CmdClick:        "click",
	CmdExpand:       "expand",
	CmdCollapse:     "collapse",
	CmdCollapseAll:  "collapse-all",
	CmdNavigate:     "navigate",
	CmdMnemonic:     "mnemonic",
	CmdFocus:        "focus",
	CmdBlur:         "blur",
	CmdClickOutside: "click-outside",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Direction qualifies CmdNavigate.
type Direction int

const (
	DirNone Direction = iota
	DirNext
	DirPrevious
	DirFirst
	DirLast
	DirPageUp
	DirPageDown
	DirExpand
	DirCollapse
	DirActivate
	DirEscape
)

func (d Direction) String() string {
	switch d {
	case DirNext:
		return "next"
	case DirPrevious:
		return "previous"
	case DirFirst:
		return "first"
	case DirLast:
		return "last"
	case DirPageUp:
		return "page-up"
	case DirPageDown:
		return "page-down"
	case DirExpand:
		return "expand"
	case DirCollapse:
		return "collapse"
	case DirActivate:
		return "activate"
	case DirEscape:
		return "escape"
	default:
		return "none"
	}
}

type handler func(e *Engine, s *Session, ev Event)

// transitions is the state × command table. A command missing from a
// state's row is ignored in that state. Open is not in the table: it is
// accepted in every state and replaces the session.
var transitions map[State]map[Command]handler

func init() {
	common := map[Command]handler{
		CmdHoverEnter:   (*Engine).hoverEnter,
		CmdHoverLeave:   (*Engine).hoverLeave,
		CmdPress:        (*Engine).press,
		CmdRelease:      (*Engine).release,
		CmdClick:        (*Engine).clickCommand,
		CmdCollapse:     (*Engine).collapseCommand,
		CmdCollapseAll:  (*Engine).collapseAllCommand,
		CmdNavigate:     (*Engine).navigate,
		CmdMnemonic:     (*Engine).mnemonic,
		CmdFocus:        (*Engine).focusIn,
		CmdBlur:         (*Engine).blur,
		CmdClickOutside: (*Engine).clickOutside,
	}
	withExpand := func() map[Command]handler {
		row := make(map[Command]handler, len(common)+1)
		for cmd, h := range common {
			row[cmd] = h
		}
		row[CmdExpand] = (*Engine).expandCommand
		return row
	}
	transitions = map[State]map[Command]handler{
		StateClosed:              {},
		StateOpenNoFocus:         common,
		StateOpenFocused:         withExpand(),
		StateOpenSubmenuExpanded: withExpand(),
	}
}

// Accepts reports whether cmd has an effect in state s.
func Accepts(s State, cmd Command) bool {
	if cmd == CmdOpen {
		return true
	}
	_, ok := transitions[s][cmd]
	return ok
}
