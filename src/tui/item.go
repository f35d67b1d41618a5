package tui

import (
	"fmt"
	"time"

	"jenkwatch-agent/src/ci"
)

// Item wraps a domain Build and implements bubbles/list.Item.
type Item struct {
	Build ci.Build
}

// FilterValue is the value used for fuzzy filtering.
func (i Item) FilterValue() string { return fmt.Sprintf("#%d", i.Build.ID) }

// Title returns the primary text for the item (required by list.Item).
func (i Item) Title() string { return fmt.Sprintf("#%d", i.Build.ID) }

// Description returns the secondary text for the item (required by list.Item).
func (i Item) Description() string { return string(i.Build.Result) }

// ResultGlyph returns the single-character marker for the build's result.
func (i Item) ResultGlyph() string {
	switch i.Build.Result.Color() {
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

// Age renders how long ago the build ran, in the coarsest sensible unit.
func (i Item) Age(now time.Time) string {
	return FormatAge(now.Sub(i.Build.Timestamp))
}

// FormatAge renders an elapsed duration as a compact age label.
func FormatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// FormatDuration renders a build or stage duration as m:ss or h:mm:ss.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
