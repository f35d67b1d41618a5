package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"jenkwatch-agent/src/contracts"
	"jenkwatch-agent/src/events"
	"jenkwatch-agent/src/poller"
)

// Surface forwards the coordinator's show-UI signal into the running
// program. The program pointer is set after tea.NewProgram, so the signal
// tolerates firing before the UI is up.
type Surface struct {
	mu      sync.Mutex
	program *tea.Program
}

// NewSurface creates an unattached surface signal.
func NewSurface() *Surface {
	return &Surface{}
}

// Attach binds the surface to a running program.
func (s *Surface) Attach(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.program = p
}

// ShowAlertSurface implements poller.SurfaceSignal.
func (s *Surface) ShowAlertSurface() {
	s.mu.Lock()
	p := s.program
	s.mu.Unlock()
	if p != nil {
		p.Send(showAlertMsg{})
	}
}

// Run subscribes to the coordinator's topics, attaches the surface, and
// blocks until the user quits.
func Run(ctx context.Context, coordinator *poller.Coordinator, bus events.Bus, surface *Surface) error {
	var subscriptions []<-chan events.Message
	for _, topic := range []string{contracts.TopicRefreshResults, contracts.TopicSessionEvents} {
		ch, err := bus.Subscribe(ctx, topic, "tui")
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		subscriptions = append(subscriptions, ch)
	}

	model := NewMainModel(coordinator, subscriptions)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if surface != nil {
		surface.Attach(program)
	}

	_, err := program.Run()
	return err
}
