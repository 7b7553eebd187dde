package engine

import (
	"github.com/atomicstack/tmux-popup-menu/internal/input"
	"github.com/atomicstack/tmux-popup-menu/internal/menu"
	"github.com/atomicstack/tmux-popup-menu/internal/timer"
)

// Position is where the popup was opened, in host coordinates.
type Position struct {
	X, Y int
}

// Session is the live state of one popup instance. It only references nodes
// owned by the tree and never mutates their structure.
type Session struct {
	position   Position
	active     *menu.Node
	scope      *menu.Node
	pressed    *menu.Node
	clicked    *menu.Node
	closed     bool
	suppressed bool
	classifier input.Classifier

	closeTimer    timer.Handle
	collapseTimer timer.Handle
	blurTimer     timer.Handle
	monitor       monitor
}

func newSession(pos Position, root *menu.Node) *Session {
	return &Session{position: pos, scope: root}
}

func (s *Session) Position() Position          { return s.position }
func (s *Session) Active() *menu.Node          { return s.active }
func (s *Session) Scope() *menu.Node           { return s.scope }
func (s *Session) Pressed() *menu.Node         { return s.pressed }
func (s *Session) Closed() bool                { return s.closed }
func (s *Session) Suppressed() bool            { return s.suppressed }
func (s *Session) Mode() input.Mode            { return s.classifier.Mode() }
func (s *Session) CloseTimer() timer.Handle    { return s.closeTimer }
func (s *Session) CollapseTimer() timer.Handle { return s.collapseTimer }
