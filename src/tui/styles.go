package tui

import (
	"github.com/charmbracelet/lipgloss"

	"jenkwatch-agent/src/ci"
)

// StyleConfig holds the customizable colors for the watcher UI.
type StyleConfig struct {
	PrimaryBlue    lipgloss.Color
	DarkBackground lipgloss.Color
	TextPrimary    lipgloss.Color
	TextSecondary  lipgloss.Color
	BorderColor    lipgloss.Color
	SelectedColor  lipgloss.Color
	AlertColor     lipgloss.Color

	// Result colors indexed by ci.ResultColor.
	ResultGreen  lipgloss.Color
	ResultRed    lipgloss.Color
	ResultYellow lipgloss.Color
	ResultGray   lipgloss.Color
}

// DefaultStyles returns the default color palette.
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:    lipgloss.Color("#8AB4F8"),
		DarkBackground: lipgloss.Color("#1E1E1E"),
		TextPrimary:    lipgloss.Color("#E8EAED"),
		TextSecondary:  lipgloss.Color("#9AA0A6"),
		BorderColor:    lipgloss.Color("#5F6368"),
		SelectedColor:  lipgloss.Color("#303134"),
		AlertColor:     lipgloss.Color("#FBBC04"),
		ResultGreen:    lipgloss.Color("#34A853"),
		ResultRed:      lipgloss.Color("#EA4335"),
		ResultYellow:   lipgloss.Color("#FBBC04"),
		ResultGray:     lipgloss.Color("#9AA0A6"),
	}
}

// ResultColor maps a domain color bucket to a terminal color.
func (s *StyleConfig) ResultColor(c ci.ResultColor) lipgloss.Color {
	switch c {
	case ci.ColorGreen:
		return s.ResultGreen
	case ci.ColorRed:
		return s.ResultRed
	case ci.ColorYellow:
		return s.ResultYellow
	default:
		return s.ResultGray
	}
}

// TitleStyle returns the header title style.
func (s *StyleConfig) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.PrimaryBlue).
		Bold(true).
		Padding(0, 1)
}

// HelpStyle returns the bottom help line style.
func (s *StyleConfig) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextSecondary).
		Padding(0, 2)
}

// AlertStyle returns the style of the auto-show alert banner.
func (s *StyleConfig) AlertStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.DarkBackground).
		Background(s.AlertColor).
		Bold(true).
		Padding(0, 1)
}

// ErrorStyle returns the style for error lines.
func (s *StyleConfig) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.ResultRed).
		Padding(0, 1)
}
