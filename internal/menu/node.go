package menu

// Kind tags the variant of a Node.
type Kind int

const (
	KindItem Kind = iota
	KindSeparator
	KindSubmenu
	KindPopupRoot
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindSeparator:
		return "separator"
	case KindSubmenu:
		return "submenu"
	case KindPopupRoot:
		return "root"
	default:
		return "unknown"
	}
}

// ActionKind names what selecting an item does in the host.
type ActionKind string

const (
	ActionNone          ActionKind = "none"
	ActionCommand       ActionKind = "command"
	ActionSwitchSession ActionKind = "switch-session"
	ActionCopy          ActionKind = "copy"
)

// Node is one entry of a live menu tree. Nodes are owned by a Tree; the
// interaction engine only holds references to them.
type Node struct {
	ID       string
	Kind     Kind
	Label    string
	Mnemonic rune
	// MnemonicAt is the rune offset of the accelerator in Label, or -1.
	MnemonicAt int
	Hint       string
	Disabled   bool
	Action     ActionKind
	Command    []string
	Target     string
	Text       string

	parent   *Node
	children []*Node
	open     bool
}

// Parent returns the containing node, or nil for the root.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Children returns the nodes in visual order. The slice must not be modified.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// IsOpen reports whether a submenu or popup root is currently expanded.
func (n *Node) IsOpen() bool {
	return n != nil && n.open
}

// Focusable reports whether the node can become the active node.
func (n *Node) Focusable() bool {
	if n == nil || n.Disabled {
		return false
	}
	switch n.Kind {
	case KindItem, KindSubmenu:
		return true
	}
	return false
}

// Expandable reports whether the node owns a panel that can be opened.
func (n *Node) Expandable() bool {
	if n == nil || n.Disabled {
		return false
	}
	switch n.Kind {
	case KindSubmenu, KindPopupRoot:
		return true
	}
	return false
}

// Selectable reports whether choosing the node fires a selection.
func (n *Node) Selectable() bool {
	return n != nil && !n.Disabled && n.Kind == KindItem
}

// FocusableChildren lists the children that can take focus, in order.
func (n *Node) FocusableChildren() []*Node {
	kids := n.Children()
	out := make([]*Node, 0, len(kids))
	for _, c := range kids {
		if c.Focusable() {
			out = append(out, c)
		}
	}
	return out
}

// IndexOf returns the position of child among n's children, or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.Children() {
		if c == child {
			return i
		}
	}
	return -1
}

// Depth counts the ancestors between n and the root.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent(); p != nil; p = p.parent {
		d++
	}
	return d
}

// IsAncestorOf reports whether n contains other somewhere below it.
func (n *Node) IsAncestorOf(other *Node) bool {
	if n == nil {
		return false
	}
	for p := other.Parent(); p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// ClosestMenuItem walks from n up to the nearest item or submenu, including n itself.
func ClosestMenuItem(n *Node) *Node {
	for cur := n; cur != nil; cur = cur.parent {
		switch cur.Kind {
		case KindItem, KindSubmenu:
			return cur
		case KindPopupRoot:
			return nil
		}
	}
	return nil
}

// ClosestScope returns the submenu or popup root whose panel holds n. The
// root is its own scope.
func ClosestScope(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.parent == nil {
		if n.Kind == KindPopupRoot {
			return n
		}
		return nil
	}
	for cur := n.parent; cur != nil; cur = cur.parent {
		switch cur.Kind {
		case KindSubmenu, KindPopupRoot:
			return cur
		}
	}
	return nil
}
