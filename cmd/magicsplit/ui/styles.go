package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the lipgloss styles used by the interactive flow.
type Theme struct {
	Title    lipgloss.Style
	Cursor   lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Desc     lipgloss.Style
	Hint     lipgloss.Style
	Error    lipgloss.Style
}

// DefaultTheme returns the standard color theme.
func DefaultTheme() Theme {
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1),
		Cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
		Item:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Desc:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")).PaddingLeft(4),
		Hint:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}
