package ui

import (
	"fmt"
	"strings"

	"github.com/atomicstack/tmux-popup-menu/internal/format/table"
	"github.com/atomicstack/tmux-popup-menu/internal/logging/events"
	"github.com/atomicstack/tmux-popup-menu/internal/menu"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const (
	minPanelWidth = 8
	maxPanelWidth = 48
	submenuMarker = "▸"
	separatorRune = "─"
	headerRows    = 1
)

type renderedPanel struct {
	node    *menu.Node
	box     string
	top     int
	offset  int
	width   int
	height  int
	targets []string
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	panels := m.engine.OpenPanels()
	sections := []string{m.zones.Mark(barZone, m.renderHeader(panels))}
	if body := m.renderPanels(panels); body != "" {
		sections = append(sections, body)
	}
	if status := m.statusLine(); status != "" {
		sections = append(sections, status)
	}
	if m.showFooter {
		sections = append(sections, m.renderFooter())
	}
	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// bodyHeight is the number of rows left for panels, or 0 when unbounded.
// One row is kept for the status line.
func (m *Model) bodyHeight() int {
	if m.height <= 0 {
		return 0
	}
	h := m.height - headerRows - 1
	if m.showFooter {
		h--
	}
	if h < 3 {
		h = 3
	}
	return h
}

// maxRows is how many entries a panel shows before it scrolls.
func (m *Model) maxRows() int {
	h := m.bodyHeight()
	if h == 0 {
		return 0
	}
	return h - 2
}

// ensureVisible scrolls the panel holding n so n is on screen.
func (m *Model) ensureVisible(n *menu.Node) {
	if n == nil || n.Parent() == nil {
		return
	}
	parent := n.Parent()
	vp := m.panels.Get(parent.ID)
	before := vp.Offset
	vp.SetTotal(len(parent.Children()), m.maxRows())
	vp.EnsureVisible(parent.IndexOf(n), m.maxRows())
	if vp.Offset != before {
		events.UI.Viewport(parent.ID, vp.Offset)
	}
}

func (m *Model) renderHeader(panels []*menu.Node) string {
	parts := []string{defaultRootTitle}
	for _, p := range panels {
		if p.Kind == menu.KindPopupRoot {
			continue
		}
		parts = append(parts, p.Label)
	}
	return styles.Header.Render(m.fit(strings.Join(parts, menuHeaderSeparator)))
}

func (m *Model) renderPanels(panels []*menu.Node) string {
	m.areas = m.areas[:0]
	m.targets = m.targets[:0]
	if len(panels) == 0 {
		m.panels.Retain(nil)
		return ""
	}
	ids := make([]string, len(panels))
	for i, p := range panels {
		ids[i] = p.ID
	}
	m.panels.Retain(ids)

	maxRows := m.maxRows()
	body := m.bodyHeight()
	rendered := make([]renderedPanel, 0, len(panels))
	for i, p := range panels {
		rp := m.renderPanel(p, maxRows)
		if i > 0 {
			prev := rendered[i-1]
			row := prev.node.IndexOf(p) - prev.offset
			if row < 0 || row >= prev.height-2 {
				row = 0
			}
			rp.top = prev.top + row
		}
		if body > 0 && rp.top+rp.height > body {
			rp.top = max(0, body-rp.height)
		}
		rendered = append(rendered, rp)
	}

	// Drop outer panels until the cascade fits.
	if m.width > 0 {
		total := 0
		for _, rp := range rendered {
			total += rp.width
		}
		for len(rendered) > 1 && total > m.width {
			total -= rendered[0].width
			rendered = rendered[1:]
		}
	}

	blocks := make([]string, len(rendered))
	x := 0
	for i, rp := range rendered {
		blocks[i] = strings.Repeat("\n", rp.top) + rp.box
		m.areas = append(m.areas, panelArea{
			id: rp.node.ID,
			x0: x,
			y0: headerRows + rp.top,
			x1: x + rp.width,
			y1: headerRows + rp.top + rp.height,
		})
		m.targets = append(m.targets, rp.targets...)
		x += rp.width
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

func (m *Model) renderPanel(p *menu.Node, maxRows int) renderedPanel {
	children := p.Children()
	vp := m.panels.Get(p.ID)
	vp.SetTotal(len(children), maxRows)
	if idx := m.markedChild(p); idx >= 0 {
		vp.EnsureVisible(idx, maxRows)
	}
	start, end := vp.Window(maxRows)
	width := m.panelWidth(children)

	rp := renderedPanel{node: p, offset: start}
	rows := make([]string, 0, end-start)
	for _, c := range children[start:end] {
		if c.Kind == menu.KindSeparator {
			rows = append(rows, styles.Separator.Render(strings.Repeat(separatorRune, width+2)))
			continue
		}
		rows = append(rows, m.zones.Mark(itemZone(c.ID), m.renderRow(c, width)))
		rp.targets = append(rp.targets, c.ID)
	}
	if len(rows) == 0 {
		rows = append(rows, styles.DisabledItem.Render(" "+table.Pair("(empty)", "", width)+" "))
	}
	rp.box = styles.Panel.Render(strings.Join(rows, "\n"))
	rp.width = lipgloss.Width(rp.box)
	rp.height = lipgloss.Height(rp.box)
	return rp
}

// markedChild is the index of the child that should stay visible: the
// active node, or the submenu open beside it.
func (m *Model) markedChild(p *menu.Node) int {
	if a := m.engine.Active(); a != nil && a.Parent() == p {
		return p.IndexOf(a)
	}
	for i, c := range p.Children() {
		if c.Kind == menu.KindSubmenu && c.IsOpen() {
			return i
		}
	}
	return -1
}

func (m *Model) panelWidth(children []*menu.Node) int {
	labelW, rightW := 0, 0
	for _, c := range children {
		if c.Kind == menu.KindSeparator {
			continue
		}
		labelW = max(labelW, table.CellWidth(c.Label))
		rightW = max(rightW, table.CellWidth(rightColumn(c)))
	}
	width := labelW
	if rightW > 0 {
		width += rightW + 2
	}
	width = min(max(width, minPanelWidth), maxPanelWidth)
	if m.width > 0 && width > m.width-4 {
		width = max(m.width-4, 1)
	}
	return width
}

func rightColumn(n *menu.Node) string {
	if n.Kind != menu.KindSubmenu {
		return n.Hint
	}
	if n.Hint == "" {
		return submenuMarker
	}
	return n.Hint + " " + submenuMarker
}

func (m *Model) renderRow(n *menu.Node, width int) string {
	plain := " " + table.Pair(n.Label, rightColumn(n), width) + " "
	style := *styles.Item
	switch {
	case n.Disabled:
		style = *styles.DisabledItem
	case n == m.engine.Active():
		style = *styles.ActiveItem
	case n.IsOpen():
		style = *styles.OpenItem
	}
	at := -1
	if n.Mnemonic != 0 && n.MnemonicAt >= 0 && !n.Disabled {
		at = n.MnemonicAt + 1
	}
	runes := []rune(plain)
	label := []rune(" " + n.Label)
	// The accelerator may have been cut off by truncation.
	if at < 0 || at >= len(runes) || at >= len(label) || runes[at] != label[at] {
		return style.Render(plain)
	}
	return style.Render(string(runes[:at])) +
		styles.Mnemonic.Inherit(style).Render(string(runes[at])) +
		style.Render(string(runes[at+1:]))
}

func (m *Model) statusLine() string {
	switch {
	case m.errMsg != "":
		return styles.Error.Render(m.fit(m.errMsg))
	case m.menuErr != "":
		return styles.Error.Render(m.fit(m.menuErr))
	case m.backendErr != "":
		return styles.Error.Render(m.fit("tmux: " + m.backendErr))
	case m.infoMsg != "":
		return styles.Info.Render(m.fit(m.infoMsg))
	}
	return ""
}

func (m *Model) renderFooter() string {
	text := keys.footerHelp()
	if m.verbose {
		text += fmt.Sprintf(" · %s/%s", m.engine.State(), m.engine.Mode())
	}
	return styles.Footer.Render(m.fit(text))
}

// fit truncates text to the terminal width.
func (m *Model) fit(text string) string {
	if m.width <= 0 || lipgloss.Width(text) <= m.width {
		return text
	}
	return truncate.StringWithTail(text, uint(m.width), "…")
}
