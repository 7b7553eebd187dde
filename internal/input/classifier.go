// Package input tells touch-driven interaction apart from pointer-driven
// interaction. Touch screens deliver a press before any hover, while a real
// pointer hovers before it presses; whichever class of event arrives first
// decides the mode, and pointer motion always wins afterwards.
package input

// Mode is the device class a session has settled on.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeTouch
	ModePointer
)

func (m Mode) String() string {
	switch m {
	case ModeTouch:
		return "touch"
	case ModePointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// Kind is the class of a raw input event.
type Kind int

const (
	KindNone Kind = iota
	KindPointerDown
	KindPointerUp
	KindPointerMove
	KindPointerOver
	KindKey
	KindFocus
)

func (k Kind) String() string {
	switch k {
	case KindPointerDown:
		return "pointerdown"
	case KindPointerUp:
		return "pointerup"
	case KindPointerMove:
		return "pointermove"
	case KindPointerOver:
		return "pointerover"
	case KindKey:
		return "key"
	case KindFocus:
		return "focus"
	default:
		return "none"
	}
}

// IsPointer reports whether k came from a pointing device or a touch.
func (k Kind) IsPointer() bool {
	switch k {
	case KindPointerDown, KindPointerUp, KindPointerMove, KindPointerOver:
		return true
	}
	return false
}

// Classifier holds the sticky mode for one session.
type Classifier struct {
	mode Mode
}

// Mode returns the current classification.
func (c *Classifier) Mode() Mode { return c.mode }

// Observe updates the mode from one event and returns the result.
func (c *Classifier) Observe(k Kind) Mode {
	switch k {
	case KindPointerMove, KindPointerOver:
		c.mode = ModePointer
	case KindPointerDown:
		if c.mode == ModeUnknown {
			c.mode = ModeTouch
		}
	}
	return c.mode
}

// Reset forgets the classification; only a new session should call it.
func (c *Classifier) Reset() { c.mode = ModeUnknown }
