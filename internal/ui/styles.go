// Package ui is the interactive terminal front end of the directory.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	Primary     = lipgloss.Color("#60A5FA") // blue-400
	Online      = lipgloss.Color("#4ADE80") // green-400
	Destructive = lipgloss.Color("#F87171") // red-400
	Muted       = lipgloss.Color("#9CA3AF") // gray-400
	Border      = lipgloss.Color("#374151") // gray-700
)

// Styles groups the lipgloss styles used by the directory view
type Styles struct {
	Title       lipgloss.Style
	Panel       lipgloss.Style
	StatusOK    lipgloss.Style
	StatusError lipgloss.Style
	Card        lipgloss.Style
	CardTitle   lipgloss.Style
	Muted       lipgloss.Style
	Label       lipgloss.Style
	Focused     lipgloss.Style
	Hint        lipgloss.Style
}

// DefaultStyles returns the dark theme
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1),
		StatusOK:    lipgloss.NewStyle().Foreground(Online),
		StatusError: lipgloss.NewStyle().Foreground(Destructive),
		Card: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(Primary).
			PaddingLeft(1),
		CardTitle: lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(Muted),
		Label:     lipgloss.NewStyle().Width(15),
		Focused:   lipgloss.NewStyle().Width(15).Foreground(Primary).Bold(true),
		Hint:      lipgloss.NewStyle().Foreground(Destructive).Italic(true),
	}
}
