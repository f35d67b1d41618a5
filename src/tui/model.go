// Package tui provides the terminal user interface: a builds list with a
// stage-breakdown detail panel, fed by the coordinator's event bus.
package tui

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"jenkwatch-agent/src/ci"
	"jenkwatch-agent/src/contracts"
	"jenkwatch-agent/src/events"
	"jenkwatch-agent/src/poller"
)

// Messages.

type busMsg struct {
	msg events.Message
	ch  <-chan events.Message
}

type busClosedMsg struct{}

type stagesMsg struct {
	buildID int
	stages  []ci.BuildStage
	err     error
}

type refreshRequestedMsg struct{}

// showAlertMsg is sent by the coordinator's surface signal on notable
// transitions.
type showAlertMsg struct{}

type clearAlertMsg struct{}

// alertDisplayTime is how long the alert banner stays up.
const alertDisplayTime = 5 * time.Second

// MainModel is the Bubble Tea model for the watcher UI: builds list on the
// left, stage detail on the right.
type MainModel struct {
	coordinator *poller.Coordinator
	styles      *StyleConfig

	header         Header
	listView       View
	detailViewport viewport.Model
	spinner        spinner.Model

	width  int
	height int
	ready  bool

	refreshing bool
	alert      bool
	errLine    string

	// Stage state for the selected build. stagesFor guards against
	// applying a stale fetch after the selection moved on.
	stages        []ci.BuildStage
	stagesFor     int
	stagesLoading bool

	subscriptions []<-chan events.Message
}

// NewMainModel builds the model. Subscriptions must already be open on the
// bus; they are drained for the lifetime of the program.
func NewMainModel(coordinator *poller.Coordinator, subscriptions []<-chan events.Message) MainModel {
	styles := DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	header := NewHeader(styles)
	settings := coordinator.Settings()
	header.JobPath = settings.JobPath
	header.Interval = settings.RefreshInterval.DisplayName()
	if creds := coordinator.Credentials(); creds != nil {
		header.SetServer(creds.BaseURL)
	}

	m := MainModel{
		coordinator:   coordinator,
		styles:        styles,
		header:        header,
		listView:      NewView(styles),
		spinner:       sp,
		refreshing:    true,
		subscriptions: subscriptions,
	}
	m.listView.SetBuilds(coordinator.Snapshot())
	return m
}

// Init starts the spinner and the bus listeners.
func (m MainModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	for _, ch := range m.subscriptions {
		cmds = append(cmds, waitForBus(ch))
	}
	return tea.Batch(cmds...)
}

// waitForBus produces the next message from one subscription channel.
func waitForBus(ch <-chan events.Message) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return busClosedMsg{}
		}
		return busMsg{msg: msg, ch: ch}
	}
}

// fetchStages asks the coordinator for one build's stage breakdown.
func fetchStages(coordinator *poller.Coordinator, buildID int) tea.Cmd {
	return func() tea.Msg {
		stages, err := coordinator.FetchStages(context.Background(), buildID)
		return stagesMsg{buildID: buildID, stages: stages, err: err}
	}
}

// requestRefresh triggers a manual refresh. The coordinator drops it when a
// refresh is already in flight; results arrive over the bus either way.
func requestRefresh(coordinator *poller.Coordinator) tea.Cmd {
	return func() tea.Msg {
		coordinator.Refresh(context.Background())
		return refreshRequestedMsg{}
	}
}

// Update handles messages and updates the model state.
func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeComponents()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case busMsg:
		cmd := m.handleBusMessage(msg.msg)
		return m, tea.Batch(cmd, waitForBus(msg.ch))

	case busClosedMsg:
		return m, nil

	case stagesMsg:
		m.stagesLoading = false
		if selected, ok := m.listView.SelectedItem(); !ok || selected.Build.ID != msg.buildID {
			// The selection moved on; discard the stale result.
			return m, nil
		}
		if msg.err != nil {
			// A failed stage fetch clears the panel rather than leaving
			// stale data up.
			m.stages = nil
			m.stagesFor = 0
			m.errLine = ci.UserMessage(msg.err)
			m.updateDetailContent()
			return m, nil
		}
		m.stages = msg.stages
		m.stagesFor = msg.buildID
		m.errLine = ""
		m.updateDetailContent()

	case refreshRequestedMsg:
		return m, nil

	case showAlertMsg:
		m.alert = true
		m.listView.SelectLeading()
		return m, tea.Tick(alertDisplayTime, func(time.Time) tea.Msg { return clearAlertMsg{} })

	case clearAlertMsg:
		m.alert = false
	}

	return m, nil
}

func (m MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k", "down", "j":
		var cmd tea.Cmd
		m.listView, cmd = m.listView.Update(msg)
		return m, cmd

	case "enter":
		if selected, ok := m.listView.SelectedItem(); ok {
			m.stagesLoading = true
			return m, fetchStages(m.coordinator, selected.Build.ID)
		}

	case "r":
		m.refreshing = true
		return m, requestRefresh(m.coordinator)

	case "o":
		if selected, ok := m.listView.SelectedItem(); ok && selected.Build.URL != nil {
			// Fire and forget; a browser failure is not worth a UI state.
			_ = browser.OpenURL(selected.Build.URL.String())
		}
	}
	return m, nil
}

// handleBusMessage applies one coordinator event to the model.
func (m *MainModel) handleBusMessage(msg events.Message) tea.Cmd {
	switch msg.Topic {
	case contracts.TopicRefreshResults:
		var result contracts.RefreshResult
		if err := json.Unmarshal(msg.Value, &result); err != nil {
			return nil
		}
		m.refreshing = false
		m.header.LastRefresh = time.UnixMilli(result.FinishedAt)
		if result.Error != "" {
			m.errLine = result.Error
			return nil
		}
		m.errLine = ""
		m.listView.SetBuilds(m.coordinator.Snapshot())

	case contracts.TopicSessionEvents:
		var event contracts.SessionEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return nil
		}
		if event.Kind == contracts.SessionDemoted || event.Kind == contracts.SessionLoggedOut {
			m.errLine = "Session ended. Run `jenkwatch login` to reconnect."
			m.listView.SetBuilds(nil)
			m.stages = nil
			m.stagesFor = 0
			m.updateDetailContent()
		}
	}
	return nil
}
