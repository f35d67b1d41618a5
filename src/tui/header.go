package tui

import (
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Header renders the top bar: server host, job path, session state, and the
// time of the last completed refresh.
type Header struct {
	styles *StyleConfig

	Server      string
	JobPath     string
	Interval    string
	LastRefresh time.Time
}

// NewHeader creates the header component.
func NewHeader(styles *StyleConfig) Header {
	return Header{styles: styles}
}

// SetServer records the server URL, keeping only its host for display.
func (h *Header) SetServer(rawURL string) {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		h.Server = u.Host
		return
	}
	h.Server = rawURL
}

// Render draws the header across the given width.
func (h Header) Render(width int) string {
	title := h.styles.TitleStyle().Render("jenkwatch")

	var status string
	if h.Server == "" {
		status = "not connected"
	} else {
		status = fmt.Sprintf("%s  %s  every %s", h.Server, h.JobPath, h.Interval)
		if !h.LastRefresh.IsZero() {
			status += fmt.Sprintf("  refreshed %s", FormatAge(time.Since(h.LastRefresh)))
		}
	}
	statusLine := lipgloss.NewStyle().
		Foreground(h.styles.TextSecondary).
		Padding(0, 1).
		Render(Truncate(status, width-VisualWidth("jenkwatch")-4, true))

	return lipgloss.JoinHorizontal(lipgloss.Top, title, statusLine)
}
