package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/bigconv/internal/ui"
)

// styles are the dashboard's lipgloss styles for the active ui theme.
type styles struct {
	panel   lipgloss.Style
	header  lipgloss.Style
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	dim     lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	bar     lipgloss.Style
}

// newStyles builds the styles from the current panel theme. Call it after
// ui.InitTheme so -no-color is honored.
func newStyles() styles {
	t := ui.GetCurrentPanelTheme()
	return styles{
		panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border),
		header:  lipgloss.NewStyle().Bold(true).Foreground(t.Title).Padding(0, 1),
		title:   lipgloss.NewStyle().Bold(true).Foreground(t.Title),
		label:   lipgloss.NewStyle().Foreground(t.Label),
		value:   lipgloss.NewStyle().Bold(true).Foreground(t.Value),
		dim:     lipgloss.NewStyle().Foreground(t.Dim),
		success: lipgloss.NewStyle().Foreground(t.Success),
		failure: lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		bar:     lipgloss.NewStyle().Foreground(t.Border),
	}
}
