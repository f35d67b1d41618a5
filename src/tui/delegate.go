package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// listRenderingOverhead accounts for padding added by bubbles/list and
	// the panel border around it.
	listRenderingOverhead = 10

	resultColWidth   = 10
	durationColWidth = 8
)

// Delegate renders builds as table rows: number, result, age, duration.
type Delegate struct {
	NumberWidth int
	styles      *StyleConfig
}

// NewDelegate creates a build table delegate with default styles.
func NewDelegate(styles *StyleConfig) Delegate {
	if styles == nil {
		styles = DefaultStyles()
	}
	return Delegate{
		NumberWidth: 4,
		styles:      styles,
	}
}

// SetNumberWidth sizes the build-number column to the largest number shown.
func (d *Delegate) SetNumberWidth(maxNumber int) {
	d.NumberWidth = len(fmt.Sprintf("%d", maxNumber)) + 1 // +1 for '#'
	if d.NumberWidth < 4 {
		d.NumberWidth = 4
	}
}

// Height returns the height of a list item.
func (d Delegate) Height() int { return 1 }

// Spacing returns spacing between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles item updates.
func (d Delegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

// Render renders one build row.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(Item)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	numberCol := fmt.Sprintf("%*s", d.NumberWidth, fmt.Sprintf("#%d", entry.Build.ID))
	resultCol := TruncateAndPad(entry.ResultGlyph()+" "+string(entry.Build.Result), resultColWidth, false)
	durationCol := fmt.Sprintf("%*s", durationColWidth, FormatDuration(entry.Build.Duration))

	fixedWidth := d.NumberWidth + resultColWidth + durationColWidth + 9
	ageWidth := m.Width() - fixedWidth - listRenderingOverhead
	var ageCol string
	if ageWidth > 0 {
		ageCol = TruncateAndPad(entry.Age(time.Now()), ageWidth, true)
	}

	line := fmt.Sprintf("%s │ %s │ %s │ %s", numberCol, resultCol, durationCol, ageCol)

	style := lipgloss.NewStyle().Foreground(d.styles.ResultColor(entry.Build.Result.Color()))
	if isSelected {
		style = style.Bold(true).Background(d.styles.SelectedColor)
	}
	fmt.Fprint(w, style.Render(line))
}
