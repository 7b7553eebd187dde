package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Panel         *lipgloss.Style
	PanelTitle    *lipgloss.Style
	Item          *lipgloss.Style
	ActiveItem    *lipgloss.Style
	OpenItem      *lipgloss.Style
	DisabledItem  *lipgloss.Style
	Mnemonic      *lipgloss.Style
	Hint          *lipgloss.Style
	Separator     *lipgloss.Style
	SubmenuMarker *lipgloss.Style
	Error         *lipgloss.Style
	Info          *lipgloss.Style
	Header        *lipgloss.Style
	Footer        *lipgloss.Style
}

var defaultStyles = Styles{
	Panel: ptr(
		lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
	),
	PanelTitle: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	Item: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	ActiveItem: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	OpenItem: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("236")),
	),
	DisabledItem: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	),
	Mnemonic: ptr(
		lipgloss.NewStyle().Underline(true),
	),
	Hint: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	),
	Separator: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	),
	SubmenuMarker: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	),
	Error: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	Info: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Header: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	Footer: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
