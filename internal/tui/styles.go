// Package tui provides the bubbletea + lipgloss live watch screen for an
// active loop.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorWhite = lipgloss.Color("#FAFAFA")
	colorGray  = lipgloss.Color("#888888")
	colorGreen = lipgloss.Color("#6BCB77")
	colorRed   = lipgloss.Color("#FF6B6B")
)

// Styles groups the accent-dependent styles, computed once from the
// configured accent color.
type Styles struct {
	Header   lipgloss.Style
	Counter  lipgloss.Style
	Task     lipgloss.Style
	Dim      lipgloss.Style
	Done     lipgloss.Style
	Error    lipgloss.Style
	Footer   lipgloss.Style
	TaskWrap lipgloss.Style
}

// NewStyles builds the style set for the given accent color.
func NewStyles(accent string) Styles {
	ac := lipgloss.Color(accent)
	return Styles{
		Header:   lipgloss.NewStyle().Foreground(colorWhite).Background(ac).Bold(true).Padding(0, 1),
		Counter:  lipgloss.NewStyle().Foreground(ac).Bold(true),
		Task:     lipgloss.NewStyle().Foreground(colorWhite),
		Dim:      lipgloss.NewStyle().Foreground(colorGray),
		Done:     lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(colorRed).Bold(true),
		Footer:   lipgloss.NewStyle().Foreground(colorGray),
		TaskWrap: lipgloss.NewStyle().Foreground(colorWhite).PaddingLeft(2),
	}
}
