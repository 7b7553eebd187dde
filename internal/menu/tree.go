package menu

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const rootID = "root"

// Tree is the live menu model. It is rebuilt wholesale from a Source on
// Refresh while keeping node identity stable per id, so references held by
// the interaction engine survive a refresh of unchanged data.
type Tree struct {
	root      *Node
	nodes     map[string]*Node
	providers Providers
}

// NewTree returns an empty tree consisting of a bare popup root.
func NewTree(providers Providers) *Tree {
	root := &Node{ID: rootID, Kind: KindPopupRoot}
	return &Tree{
		root:      root,
		nodes:     map[string]*Node{rootID: root},
		providers: providers,
	}
}

// Root returns the popup root.
func (t *Tree) Root() *Node {
	return t.root
}

// Find locates a node by id.
func (t *Tree) Find(id string) (*Node, bool) {
	node, ok := t.nodes[id]
	return node, ok
}

// Contains reports whether n is part of the current tree. Nodes dropped by
// a refresh are no longer contained even if a node with the same id exists.
func (t *Tree) Contains(n *Node) bool {
	if n == nil {
		return false
	}
	cur, ok := t.nodes[n.ID]
	return ok && cur == n
}

// Len reports the number of nodes including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Refresh rebuilds the tree from src. On error the tree is left untouched.
func (t *Tree) Refresh(src Source) error {
	if src == nil {
		return fmt.Errorf("menu source is nil")
	}
	entry, err := src.Tree()
	if err != nil {
		return fmt.Errorf("load menu tree: %w", err)
	}
	t.Rebuild(entry)
	return nil
}

// Rebuild replaces the structure with the one described by root. Existing
// nodes are reused by id, and their open state survives unless they became
// disabled or lost their panel.
func (t *Tree) Rebuild(root Entry) {
	seen := make(map[string]*Node, len(t.nodes))
	t.root = t.build(root, nil, rootID, KindPopupRoot, seen)
	for id, n := range t.nodes {
		if seen[id] != n {
			n.parent = nil
			n.children = nil
			n.open = false
		}
	}
	t.nodes = seen
}

func (t *Tree) build(e Entry, parent *Node, id string, kind Kind, seen map[string]*Node) *Node {
	n := t.nodes[id]
	if n == nil || seen[id] != nil {
		n = &Node{ID: id}
	}
	seen[id] = n

	label, mnemonic, at := splitMnemonic(e.Label)
	if label == "" && kind != KindSeparator && kind != KindPopupRoot {
		label = prettyLabel(id)
	}
	if e.Mnemonic != "" {
		r, _ := utf8.DecodeRuneInString(strings.ToLower(e.Mnemonic))
		mnemonic = r
		at = mnemonicOffset(label, r)
	}
	n.Kind = kind
	n.Label = label
	n.Mnemonic = mnemonic
	n.MnemonicAt = at
	n.Hint = e.Hint
	n.Disabled = e.Disabled && kind != KindPopupRoot
	n.Command = append([]string(nil), e.Command...)
	n.Target = e.Target
	n.Text = e.Text
	n.Action = actionFor(e, kind)
	n.parent = parent

	items := e.Items
	if e.Provider != "" {
		if p, ok := t.providers[e.Provider]; ok && p != nil {
			items = append(append([]Entry(nil), items...), p(id)...)
		}
	}

	children := make([]*Node, 0, len(items))
	for i, child := range items {
		childID := t.childID(id, child, i, seen)
		children = append(children, t.build(child, n, childID, entryKind(child), seen))
	}
	n.children = children

	if (kind != KindSubmenu && kind != KindPopupRoot) || n.Disabled {
		t.CloseSubmenu(n)
	}
	return n
}

func (t *Tree) childID(parentID string, e Entry, index int, seen map[string]*Node) string {
	id := strings.TrimSpace(e.ID)
	if id == "" {
		switch {
		case e.Separator:
			id = fmt.Sprintf("%s:sep%d", parentID, index)
		default:
			label, _, _ := splitMnemonic(e.Label)
			s := slug(label)
			if s == "" {
				s = fmt.Sprintf("item%d", index)
			}
			id = parentID + ":" + s
		}
	}
	if _, taken := seen[id]; taken || id == rootID {
		id = fmt.Sprintf("%s~%d", id, index)
	}
	return id
}

func entryKind(e Entry) Kind {
	switch {
	case e.Separator:
		return KindSeparator
	case len(e.Items) > 0 || e.Provider != "":
		return KindSubmenu
	default:
		return KindItem
	}
}

func actionFor(e Entry, kind Kind) ActionKind {
	if kind != KindItem {
		return ActionNone
	}
	switch ActionKind(strings.TrimSpace(e.Action)) {
	case ActionSwitchSession:
		return ActionSwitchSession
	case ActionCopy:
		return ActionCopy
	case ActionCommand:
		return ActionCommand
	case ActionNone:
		return ActionNone
	}
	if len(e.Command) > 0 {
		return ActionCommand
	}
	return ActionNone
}

// Walk visits every node depth-first in visual order until fn returns false.
func (t *Tree) Walk(fn func(*Node) bool) {
	var visit func(*Node) bool
	visit = func(n *Node) bool {
		if !fn(n) {
			return false
		}
		for _, c := range n.children {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	visit(t.root)
}

// OpenSubmenu expands n. Disabled nodes and nodes without a panel stay closed.
func (t *Tree) OpenSubmenu(n *Node) bool {
	if !t.Contains(n) || !n.Expandable() {
		return false
	}
	n.open = true
	return true
}

// CloseSubmenu collapses n and every panel below it.
func (t *Tree) CloseSubmenu(n *Node) {
	if n == nil {
		return
	}
	n.open = false
	for _, c := range n.children {
		if c.open {
			t.CloseSubmenu(c)
		}
	}
}

// CloseSiblings collapses every open submenu next to n.
func (t *Tree) CloseSiblings(n *Node) {
	parent := n.Parent()
	if parent == nil {
		return
	}
	for _, c := range parent.children {
		if c != n && c.open {
			t.CloseSubmenu(c)
		}
	}
}

// CloseAll collapses the whole tree including the root panel.
func (t *Tree) CloseAll() {
	t.CloseSubmenu(t.root)
}

// OpenPanels returns the chain of open panels from the root downwards.
func (t *Tree) OpenPanels() []*Node {
	if !t.root.open {
		return nil
	}
	panels := []*Node{t.root}
	cur := t.root
	for {
		var next *Node
		for _, c := range cur.children {
			if c.open {
				next = c
				break
			}
		}
		if next == nil {
			return panels
		}
		panels = append(panels, next)
		cur = next
	}
}

// AnyOpen reports whether some panel is expanded.
func (t *Tree) AnyOpen() bool {
	return t.root.open
}
