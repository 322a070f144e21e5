package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the terminal rendering of the deck theme.
type Styles struct {
	Header   lipgloss.Style
	Slide    lipgloss.Style
	Title    lipgloss.Style
	Line     lipgloss.Style
	Number   lipgloss.Style
	Button   lipgloss.Style
	Disabled lipgloss.Style
	Status   lipgloss.Style
	Alert    lipgloss.Style
}

// NewStyles derives styles from the deck colors (hex strings).
func NewStyles(background, accent, text string) Styles {
	bg := lipgloss.Color(background)
	fg := lipgloss.Color(text)
	ac := lipgloss.Color(accent)
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(ac),
		Slide: lipgloss.NewStyle().
			Background(bg).
			Foreground(fg).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ac),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(ac).Background(bg).MarginBottom(1),
		Line:     lipgloss.NewStyle().Foreground(fg).Background(bg),
		Number:   lipgloss.NewStyle().Faint(true),
		Button:   lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder()).BorderForeground(ac),
		Disabled: lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder()).Faint(true),
		Status:   lipgloss.NewStyle().Italic(true),
		Alert: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#e53935")).
			Padding(1, 2).
			Border(lipgloss.DoubleBorder()),
	}
}
