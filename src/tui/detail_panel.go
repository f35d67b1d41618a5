package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"jenkwatch-agent/src/ci"
)

// updateDetailContent rebuilds the viewport content from the current stages.
func (m *MainModel) updateDetailContent() {
	m.detailViewport.SetContent(m.renderStages())
	m.detailViewport.GotoTop()
}

// renderStages formats the stage list for the selected build.
func (m *MainModel) renderStages() string {
	if len(m.stages) == 0 {
		return ""
	}

	nameWidth := 0
	for _, s := range m.stages {
		if w := VisualWidth(s.Name); w > nameWidth {
			nameWidth = w
		}
	}
	if nameWidth > 40 {
		nameWidth = 40
	}

	var b strings.Builder
	for _, stage := range m.stages {
		glyph := stageGlyph(stage.Status)
		name := TruncateAndPad(stage.Name, nameWidth, true)
		line := fmt.Sprintf("%s %s  %-9s %8s", glyph, name, stage.Status, FormatDuration(stage.Duration))
		if stage.StartTimeMillis != nil {
			started := time.UnixMilli(*stage.StartTimeMillis)
			line += "  " + FormatAge(time.Since(started))
		} else {
			line += "  not started"
		}

		style := lipgloss.NewStyle().Foreground(m.styles.ResultColor(stage.Status.Color()))
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func stageGlyph(status ci.BuildStageStatus) string {
	switch status.Color() {
	case ci.ColorGreen:
		return "●"
	case ci.ColorRed:
		return "✗"
	case ci.ColorYellow:
		return "◐"
	default:
		return "○"
	}
}

// renderDetailPanel renders the right panel with the stage breakdown.
func (m MainModel) renderDetailPanel(width, height int) string {
	var title string
	switch {
	case m.stagesLoading:
		title = m.spinner.View() + " Loading stages..."
	case m.stagesFor != 0:
		title = fmt.Sprintf("Stages of build #%d", m.stagesFor)
	default:
		title = "Stages (press Enter on a build)"
	}
	titleRow := lipgloss.NewStyle().
		Foreground(m.styles.PrimaryBlue).
		Bold(true).
		Width(width - 2).
		Padding(0, 1).
		Render(Truncate(title, width-4, true))

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.BorderColor).
		Width(width - 2).
		Height(height).
		Render(m.detailViewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, titleRow, panel)
}

// renderListPanel renders the left panel with the builds list.
func (m MainModel) renderListPanel(width, height int) string {
	delegate := m.listView.GetDelegate()
	headerText := fmt.Sprintf("%*s │ %-10s │ %8s │ Age", delegate.NumberWidth, "Build", "Result", "Duration")
	headerRow := lipgloss.NewStyle().
		Foreground(m.styles.PrimaryBlue).
		Bold(true).
		Width(width - 2).
		Padding(0, 1).
		Render(Truncate(headerText, width-4, true))

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.BorderColor).
		Width(width - 2).
		Height(height).
		Render(m.listView.Render())

	return lipgloss.JoinVertical(lipgloss.Left, headerRow, panel)
}
