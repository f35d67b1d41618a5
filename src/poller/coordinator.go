// Package poller drives the refresh loop: a recurring timer fetches the
// build list, the new snapshot is diffed against the previous one by its
// leading build, and notification-worthy transitions fan out to the
// notification sink, the UI surface signal, and the event bus.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"

	"jenkwatch-agent/src/ci"
	"jenkwatch-agent/src/contracts"
	"jenkwatch-agent/src/events"
	"jenkwatch-agent/src/logger"
	"jenkwatch-agent/src/notify"
	"jenkwatch-agent/src/session"
	"jenkwatch-agent/src/store"
)

// SurfaceSignal asks the presentation layer to surface itself after a
// notable transition. Fire-and-forget.
type SurfaceSignal interface {
	ShowAlertSurface()
}

// NopSurface ignores surface requests (headless mode, tests).
type NopSurface struct{}

func (NopSurface) ShowAlertSurface() {}

// leadingRef is the (id, result) pair of the snapshot's first build.
type leadingRef struct {
	id     int
	result ci.BuildResult
}

// Coordinator owns the poll timer, the builds snapshot, and the change
// detection between consecutive polls. All mutable state is behind one
// mutex; the atomic busy flag guarantees at most one in-flight refresh for
// any interleaving of timer ticks and manual refresh requests.
type Coordinator struct {
	session       *session.Manager
	settingsStore store.SettingsStore
	bus           events.Bus
	sink          notify.Sink
	surface       SurfaceSignal
	log           logger.Logger

	mu        sync.Mutex
	settings  ci.Settings
	snapshot  []ci.Build
	lastError error

	refreshing atomic.Bool

	scheduler gocron.Scheduler
	job       gocron.Job
}

// NewCoordinator wires the coordinator to its collaborators and loads the
// persisted settings. Call Start before expecting timer-driven refreshes.
func NewCoordinator(
	sess *session.Manager,
	settingsStore store.SettingsStore,
	bus events.Bus,
	sink notify.Sink,
	surface SurfaceSignal,
	log logger.Logger,
) (*Coordinator, error) {
	if surface == nil {
		surface = NopSurface{}
	}
	if sink == nil {
		sink = notify.NewSilentSink()
	}
	if log == nil {
		log = logger.NewSilentLogger()
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	settings := settingsStore.Load()
	sess.SetJobPath(settings.JobPath)

	return &Coordinator{
		session:       sess,
		settingsStore: settingsStore,
		bus:           bus,
		sink:          sink,
		surface:       surface,
		log:           log,
		settings:      settings,
		scheduler:     scheduler,
	}, nil
}

// Start begins timer processing. The timer is only armed while a session is
// active; Restore and Authenticate arm it on success.
func (c *Coordinator) Start() {
	c.scheduler.Start()
	if c.session.IsAuthenticated() {
		c.rearmTimer()
	}
}

// Stop shuts down the timer. Safe to call more than once.
func (c *Coordinator) Stop() error {
	return c.scheduler.Shutdown()
}

// Settings returns the active settings.
func (c *Coordinator) Settings() ci.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Snapshot returns a copy of the most recent builds snapshot.
func (c *Coordinator) Snapshot() []ci.Build {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ci.Build, len(c.snapshot))
	copy(out, c.snapshot)
	return out
}

// LastError returns the error of the most recent refresh, or nil.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// IsAuthenticated reports the session state.
func (c *Coordinator) IsAuthenticated() bool {
	return c.session.IsAuthenticated()
}

// Credentials exposes the active credentials (for the header display).
func (c *Coordinator) Credentials() *ci.Credentials {
	return c.session.Credentials()
}

// Authenticate validates and adopts new credentials. The probe's build list
// is discarded: the snapshot starts empty, so the first poll afterwards is a
// first population and stays silent.
func (c *Coordinator) Authenticate(ctx context.Context, credentials ci.Credentials) error {
	if _, err := c.session.Authenticate(ctx, credentials); err != nil {
		return err
	}

	c.mu.Lock()
	c.snapshot = nil
	c.lastError = nil
	c.mu.Unlock()

	c.publishSession(contracts.SessionAuthenticated, credentials.BaseURL)
	c.rearmTimer()
	return nil
}

// Restore brings back a persisted session at boot, arms the timer, and
// kicks one refresh so the UI is not empty until the first tick.
func (c *Coordinator) Restore(ctx context.Context) (bool, error) {
	restored, err := c.session.Restore()
	if err != nil || !restored {
		return false, err
	}
	if creds := c.session.Credentials(); creds != nil {
		c.publishSession(contracts.SessionAuthenticated, creds.BaseURL)
	}
	c.rearmTimer()
	go c.Refresh(context.WithoutCancel(ctx))
	return true, nil
}

// Logout tears down the timer, deletes stored credentials, and clears all
// held data. Idempotent.
func (c *Coordinator) Logout() error {
	c.disarmTimer()
	if err := c.session.Logout(); err != nil {
		return err
	}
	c.mu.Lock()
	c.snapshot = nil
	c.lastError = nil
	c.mu.Unlock()
	c.publishSession(contracts.SessionLoggedOut, "")
	return nil
}

// UpdateSettings persists and adopts new settings and re-arms the timer
// with the current interval. A job path change also rebinds the repository
// and drops the snapshot, since it describes a different job.
func (c *Coordinator) UpdateSettings(settings ci.Settings) error {
	if !settings.Valid() {
		return fmt.Errorf("settings are invalid")
	}
	if err := c.settingsStore.Save(settings); err != nil {
		return err
	}

	c.mu.Lock()
	jobChanged := settings.JobPath != c.settings.JobPath
	c.settings = settings
	if jobChanged {
		c.snapshot = nil
		c.lastError = nil
	}
	c.mu.Unlock()

	if jobChanged {
		c.session.SetJobPath(settings.JobPath)
	}
	if c.session.IsAuthenticated() {
		c.rearmTimer()
	}
	return nil
}

// Refresh performs one guarded poll. A call that arrives while another
// refresh is in flight is dropped, not queued. Returns whether a fetch was
// actually attempted: false for a dropped request and for the
// unauthenticated no-op.
func (c *Coordinator) Refresh(ctx context.Context) bool {
	if !c.refreshing.CompareAndSwap(false, true) {
		c.log.Debug("refresh already in flight, dropping request")
		return false
	}
	defer c.refreshing.Store(false)

	repo := c.session.Repository()
	if repo == nil {
		// Unauthenticated: the tick performs no work.
		return false
	}

	c.mu.Lock()
	previous := leadingOf(c.snapshot)
	jobPath := c.settings.JobPath
	c.mu.Unlock()

	builds, err := repo.FetchBuilds(ctx)
	if err != nil {
		c.handleRefreshError(jobPath, err)
		return true
	}

	c.mu.Lock()
	// The snapshot is replaced wholesale, never merged.
	c.snapshot = builds
	c.lastError = nil
	c.mu.Unlock()

	current := leadingOf(builds)
	c.publishRefresh(jobPath, len(builds), current, nil)
	c.dispatchTransition(jobPath, previous, current, builds)
	return true
}

// handleRefreshError records the failure and, for authentication errors,
// forces the session demotion: credentials are deleted, the snapshot is
// cleared, and the timer is torn down. No notification fires on any error.
func (c *Coordinator) handleRefreshError(jobPath string, err error) {
	c.mu.Lock()
	c.lastError = err
	isAuth := errors.Is(err, ci.ErrAuthentication)
	if isAuth {
		c.snapshot = nil
	}
	c.mu.Unlock()

	c.publishRefresh(jobPath, 0, nil, err)

	if isAuth {
		c.log.Info("authentication failed during refresh, tearing down session")
		c.disarmTimer()
		if c.session.Demote() {
			c.publishSession(contracts.SessionDemoted, "")
		}
		return
	}
	c.log.Error("refresh failed: %s", ci.UserMessage(err))
}

// FetchStages fetches the stage breakdown for one build. It runs
// independently of (and possibly concurrently with) a build-list refresh.
// An authentication error demotes the session just like a refresh would.
func (c *Coordinator) FetchStages(ctx context.Context, buildID int) ([]ci.BuildStage, error) {
	repo := c.session.Repository()
	if repo == nil {
		return nil, ci.ErrAuthentication
	}
	stages, err := repo.FetchBuildStages(ctx, buildID)
	if err != nil && errors.Is(err, ci.ErrAuthentication) {
		c.disarmTimer()
		c.mu.Lock()
		c.snapshot = nil
		c.mu.Unlock()
		if c.session.Demote() {
			c.publishSession(contracts.SessionDemoted, "")
		}
	}
	return stages, err
}

// FetchJobsList discovers the leaf job paths reachable from rootPath.
func (c *Coordinator) FetchJobsList(ctx context.Context, rootPath string) ([]string, error) {
	repo := c.session.Repository()
	if repo == nil {
		return nil, ci.ErrAuthentication
	}
	return repo.FetchJobsList(ctx, rootPath)
}

// dispatchTransition compares the previous and current leading builds and
// fires the notification, surface signal, and bus event when warranted.
// Nothing fires on first population: a nil previous means the user just
// logged in, not that a build changed.
func (c *Coordinator) dispatchTransition(jobPath string, previous, current *leadingRef, builds []ci.Build) {
	if previous == nil || current == nil {
		return
	}

	var reason string
	switch {
	case current.id != previous.id:
		reason = contracts.ReasonNewBuild
	case current.result != previous.result:
		reason = contracts.ReasonResultChanged
	default:
		return
	}

	c.mu.Lock()
	settings := c.settings
	c.mu.Unlock()

	// Auto-show rides on a dispatched notification: with notifications
	// disabled nothing surfaces, regardless of AutoShowUI.
	autoShow := settings.NotificationsEnabled && settings.AutoShowUI &&
		(current.result == ci.ResultSuccess || current.result == ci.ResultFailure)

	var buildURL *url.URL
	if len(builds) > 0 && builds[0].URL != nil {
		buildURL = builds[0].URL
	}
	c.publishTransition(jobPath, previous, current, reason, autoShow, buildURL)

	if settings.NotificationsEnabled {
		notify.NotifyBuild(c.sink, current.result)
	}
	if autoShow {
		c.surface.ShowAlertSurface()
	}
}

// rearmTimer cancels and recreates the poll timer at the current interval.
// The job handle lives behind c.mu: a failing refresh disarms from its own
// goroutine while settings changes and auth transitions re-arm from another.
func (c *Coordinator) rearmTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()

	interval := c.settings.RefreshInterval.Duration()
	c.removeJobLocked()

	job, err := c.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			c.Refresh(context.Background())
		}),
		gocron.WithName("poll-builds"),
	)
	if err != nil {
		c.log.Error("failed to schedule poll timer: %v", err)
		return
	}
	c.job = job
	c.log.Debug("poll timer armed at %s", interval)
}

// disarmTimer removes the poll job if one is scheduled.
func (c *Coordinator) disarmTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeJobLocked()
}

func (c *Coordinator) removeJobLocked() {
	if c.job == nil {
		return
	}
	if err := c.scheduler.RemoveJob(c.job.ID()); err != nil {
		c.log.Debug("failed to remove poll job: %v", err)
	}
	c.job = nil
}

func leadingOf(builds []ci.Build) *leadingRef {
	if len(builds) == 0 {
		return nil
	}
	return &leadingRef{id: builds[0].ID, result: builds[0].Result}
}

// Bus publishing. Failures are logged and never interrupt a refresh.

func (c *Coordinator) publish(topic, key string, payload any) {
	if c.bus == nil {
		return
	}
	value, err := json.Marshal(payload)
	if err != nil {
		c.log.Error("failed to encode %s event: %v", topic, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.bus.Publish(ctx, topic, key, value); err != nil {
		c.log.Error("failed to publish %s event: %v", topic, err)
	}
}

func (c *Coordinator) publishRefresh(jobPath string, count int, leading *leadingRef, refreshErr error) {
	result := contracts.RefreshResult{
		JobPath:    jobPath,
		BuildCount: count,
		FinishedAt: time.Now().UnixMilli(),
	}
	if leading != nil {
		result.Leading = &contracts.BuildRef{Number: leading.id, Result: string(leading.result)}
	}
	if refreshErr != nil {
		result.Error = ci.UserMessage(refreshErr)
	}
	c.publish(contracts.TopicRefreshResults, jobPath, result)
}

func (c *Coordinator) publishTransition(jobPath string, previous, current *leadingRef, reason string, autoShow bool, buildURL *url.URL) {
	transition := contracts.BuildTransition{
		JobPath:  jobPath,
		Previous: contracts.BuildRef{Number: previous.id, Result: string(previous.result)},
		Current:  contracts.BuildRef{Number: current.id, Result: string(current.result)},
		Reason:   reason,
		AutoShow: autoShow,
	}
	if buildURL != nil {
		transition.URL = buildURL.String()
	}
	c.publish(contracts.TopicBuildTransitions, jobPath, transition)
}

func (c *Coordinator) publishSession(kind, server string) {
	c.publish(contracts.TopicSessionEvents, kind, contracts.SessionEvent{Kind: kind, Server: server})
}
