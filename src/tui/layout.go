package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// panelDimensions holds the calculated layout sizes.
type panelDimensions struct {
	availableHeight int
	leftPanelWidth  int
	rightPanelWidth int
}

// calculateDimensions centralizes the layout math so render and resize
// agree.
func (m MainModel) calculateDimensions() panelDimensions {
	headerHeight := lipgloss.Height(m.header.Render(m.width))
	// header + alert/error line (1) + help line (1) + panel title row (1) +
	// panel borders (2)
	availableHeight := m.height - headerHeight - 1 - 1 - 1 - 2

	leftPanelWidth := int(float64(m.width) * 0.45)
	rightPanelWidth := m.width - leftPanelWidth

	return panelDimensions{
		availableHeight: availableHeight,
		leftPanelWidth:  leftPanelWidth,
		rightPanelWidth: rightPanelWidth,
	}
}

// View renders the complete layout.
func (m MainModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := m.header.Render(m.width)
	status := m.renderStatusLine()

	if m.refreshing && m.listView.Count() == 0 {
		loading := lipgloss.NewStyle().
			Width(m.width).
			Align(lipgloss.Center).
			PaddingTop(2).
			Render(m.spinner.View() + " Fetching builds...")
		return lipgloss.JoinVertical(lipgloss.Left, header, status, loading)
	}

	dims := m.calculateDimensions()
	leftPanel := m.renderListPanel(dims.leftPanelWidth, dims.availableHeight)
	rightPanel := m.renderDetailPanel(dims.rightPanelWidth, dims.availableHeight)
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	return lipgloss.JoinVertical(lipgloss.Left, header, status, mainContent, m.renderHelpText())
}

// renderStatusLine shows the alert banner or the last error, or nothing.
func (m MainModel) renderStatusLine() string {
	switch {
	case m.alert:
		return m.styles.AlertStyle().Render("Build status changed")
	case m.errLine != "":
		return m.styles.ErrorStyle().Render(Truncate(CleanText(m.errLine), m.width-2, true))
	default:
		return ""
	}
}

// renderHelpText renders the key hints at the bottom.
func (m MainModel) renderHelpText() string {
	keyStyle := lipgloss.NewStyle().Foreground(m.styles.PrimaryBlue).Bold(true)
	sepStyle := lipgloss.NewStyle().Foreground(m.styles.TextSecondary)

	helpText := fmt.Sprintf("%s: Nav %s %s: Stages %s %s: Refresh %s %s: Open %s %s: Quit",
		keyStyle.Render("j/k"), sepStyle.Render("•"),
		keyStyle.Render("Enter"), sepStyle.Render("•"),
		keyStyle.Render("r"), sepStyle.Render("•"),
		keyStyle.Render("o"), sepStyle.Render("•"),
		keyStyle.Render("q"))
	return m.styles.HelpStyle().Render(helpText)
}

// resizeComponents handles window resize events.
func (m *MainModel) resizeComponents() {
	dims := m.calculateDimensions()
	m.listView.SetSize(dims.leftPanelWidth-2, dims.availableHeight)
	m.detailViewport.Width = dims.rightPanelWidth - 2
	m.detailViewport.Height = dims.availableHeight
}
