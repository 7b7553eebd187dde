package state

// Panel tracks the scroll position of one rendered menu panel.
type Panel struct {
	ID     string
	Total  int
	Offset int
}

// SetTotal records how many rows the panel holds and clamps the offset.
func (p *Panel) SetTotal(total, maxVisible int) {
	if total < 0 {
		total = 0
	}
	p.Total = total
	p.clamp(maxVisible)
}

// EnsureVisible adjusts the offset so index stays within the visible window.
// A negative index only clamps.
func (p *Panel) EnsureVisible(index, maxVisible int) {
	if p.Total == 0 || maxVisible <= 0 {
		p.Offset = 0
		return
	}
	p.clamp(maxVisible)
	if index < 0 {
		return
	}
	if index >= p.Total {
		index = p.Total - 1
	}
	if index < p.Offset {
		p.Offset = index
	}
	if upper := p.Offset + maxVisible - 1; index > upper {
		p.Offset = index - maxVisible + 1
	}
	p.clamp(maxVisible)
}

// Scroll moves the window by delta rows and reports whether it moved.
func (p *Panel) Scroll(delta, maxVisible int) bool {
	old := p.Offset
	p.Offset += delta
	p.clamp(maxVisible)
	return p.Offset != old
}

// Window returns the half-open row range currently shown.
func (p *Panel) Window(maxVisible int) (int, int) {
	if maxVisible <= 0 || maxVisible >= p.Total {
		return 0, p.Total
	}
	p.clamp(maxVisible)
	return p.Offset, p.Offset + maxVisible
}

func (p *Panel) clamp(maxVisible int) {
	if maxVisible <= 0 {
		p.Offset = 0
		return
	}
	maxOffset := p.Total - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if p.Offset > maxOffset {
		p.Offset = maxOffset
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Panels keeps viewport state keyed by panel id.
type Panels struct {
	byID map[string]*Panel
}

func NewPanels() *Panels {
	return &Panels{byID: make(map[string]*Panel)}
}

// Get returns the state for id, creating it on first use.
func (ps *Panels) Get(id string) *Panel {
	if p, ok := ps.byID[id]; ok {
		return p
	}
	p := &Panel{ID: id}
	ps.byID[id] = p
	return p
}

// Retain forgets every panel not listed in keep, so a submenu reopened later
// starts scrolled to the top.
func (ps *Panels) Retain(keep []string) {
	if len(ps.byID) == 0 {
		return
	}
	wanted := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		wanted[id] = struct{}{}
	}
	for id := range ps.byID {
		if _, ok := wanted[id]; !ok {
			delete(ps.byID, id)
		}
	}
}

func (ps *Panels) Len() int {
	return len(ps.byID)
}
