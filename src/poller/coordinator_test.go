package poller

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jenkwatch-agent/src/ci"
	"jenkwatch-agent/src/contracts"
	"jenkwatch-agent/src/events"
	"jenkwatch-agent/src/notify"
	"jenkwatch-agent/src/session"
	"jenkwatch-agent/src/store"
)

// fakeRepo answers FetchBuilds from a mutable build list. blockCh, when set,
// makes FetchBuilds block until the channel is closed, with entered signaled
// once the call is inside.
type fakeRepo struct {
	mu       sync.Mutex
	builds   []ci.Build
	err      error
	stageErr error
	jobPath  string

	blockCh chan struct{}
	entered chan struct{}
}

func (f *fakeRepo) setBuilds(builds []ci.Build) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds = builds
	f.err = nil
}

func (f *fakeRepo) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeRepo) FetchBuilds(ctx context.Context) ([]ci.Build, error) {
	f.mu.Lock()
	builds, err := f.builds, f.err
	blockCh, entered := f.blockCh, f.entered
	f.mu.Unlock()

	if blockCh != nil {
		if entered != nil {
			close(entered)
		}
		<-blockCh
	}
	if err != nil {
		return nil, err
	}
	out := make([]ci.Build, len(builds))
	copy(out, builds)
	return out, nil
}

func (f *fakeRepo) FetchBuildStages(ctx context.Context, buildID int) ([]ci.BuildStage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stageErr != nil {
		return nil, f.stageErr
	}
	return []ci.BuildStage{{ID: "1", Name: "Build", Status: ci.StageSuccess}}, nil
}

func (f *fakeRepo) FetchJobsList(ctx context.Context, rootPath string) ([]string, error) {
	return []string{"job/app/job/main"}, nil
}

// recordingSink captures every notification.
type recordingSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

type sinkCall struct {
	title   string
	body    string
	urgency notify.Urgency
}

func (s *recordingSink) Notify(title, body string, urgency notify.Urgency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sinkCall{title: title, body: body, urgency: urgency})
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *recordingSink) last() sinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

// recordingSurface counts surface requests.
type recordingSurface struct {
	mu    sync.Mutex
	shown int
}

func (s *recordingSurface) ShowAlertSurface() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown++
}

func (s *recordingSurface) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

type fixture struct {
	coordinator *Coordinator
	repo        *fakeRepo
	sink        *recordingSink
	surface     *recordingSurface
	credStore   *store.MemoryCredentialStore
	bus         *events.InMemoryBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := &fakeRepo{}
	credStore := store.NewMemoryCredentialStore()
	manager := session.NewManager(credStore, ci.DefaultJobPath,
		func(credentials ci.Credentials, jobPath string) ci.Repository {
			repo.mu.Lock()
			repo.jobPath = jobPath
			repo.mu.Unlock()
			return repo
		}, nil)

	sink := &recordingSink{}
	surface := &recordingSurface{}
	bus := events.NewInMemoryBus()
	t.Cleanup(func() { bus.Close() })

	coordinator, err := NewCoordinator(manager, store.NewMemorySettingsStore(), bus, sink, surface, nil)
	require.NoError(t, err)
	t.Cleanup(func() { coordinator.Stop() })

	return &fixture{
		coordinator: coordinator,
		repo:        repo,
		sink:        sink,
		surface:     surface,
		credStore:   credStore,
		bus:         bus,
	}
}

// authenticate logs the session in with the given builds as the probe
// result. The snapshot stays empty afterwards.
func (f *fixture) authenticate(t *testing.T, builds []ci.Build) {
	t.Helper()
	f.repo.setBuilds(builds)
	creds, err := ci.BasicAuth("https://jenkins.example.com", "alice", "tok")
	require.NoError(t, err)
	require.NoError(t, f.coordinator.Authenticate(context.Background(), creds))
}

// authenticateAndPrime logs in and runs the silent first-population poll, so
// subsequent refreshes diff against the given builds.
func (f *fixture) authenticateAndPrime(t *testing.T, builds []ci.Build) {
	t.Helper()
	f.authenticate(t, builds)
	require.True(t, f.coordinator.Refresh(context.Background()))
	require.Zero(t, f.sink.count(), "the priming poll must stay silent")
}

func build(id int, result ci.BuildResult) ci.Build {
	return ci.Build{ID: id, Result: result, Timestamp: time.Now()}
}

func receiveTransition(t *testing.T, ch <-chan events.Message) contracts.BuildTransition {
	t.Helper()
	select {
	case msg := <-ch:
		var transition contracts.BuildTransition
		require.NoError(t, json.Unmarshal(msg.Value, &transition))
		return transition
	case <-time.After(time.Second):
		t.Fatal("no transition published")
		return contracts.BuildTransition{}
	}
}

func assertNoMessage(t *testing.T, ch <-chan events.Message) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message on %s: %s", msg.Topic, msg.Value)
	default:
	}
}

func TestCoordinator_Refresh_Unauthenticated(t *testing.T) {
	f := newFixture(t)

	ran := f.coordinator.Refresh(context.Background())

	assert.False(t, ran, "an unauthenticated tick fetches nothing")
	assert.Empty(t, f.coordinator.Snapshot())
	assert.Zero(t, f.sink.count())
}

func TestCoordinator_Refresh_ReplacesSnapshotWholesale(t *testing.T) {
	f := newFixture(t)
	f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess), build(9, ci.ResultFailure)})

	f.repo.setBuilds([]ci.Build{build(11, ci.ResultSuccess)})
	require.True(t, f.coordinator.Refresh(context.Background()))

	snapshot := f.coordinator.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, 11, snapshot[0].ID)
	assert.NoError(t, f.coordinator.LastError())
}

func TestCoordinator_FirstPopulation_NoNotification(t *testing.T) {
	f := newFixture(t)
	// The login probe saw build 10; the snapshot must still start empty so
	// the first poll cannot diff against it.
	f.authenticate(t, []ci.Build{build(10, ci.ResultSuccess)})
	assert.Empty(t, f.coordinator.Snapshot(), "the probe result is discarded")

	transitions, err := f.bus.Subscribe(context.Background(), contracts.TopicBuildTransitions, "test")
	require.NoError(t, err)

	// A different leading build on the very first poll after logging in.
	f.repo.setBuilds([]ci.Build{build(11, ci.ResultFailure)})
	require.True(t, f.coordinator.Refresh(context.Background()))

	assert.Zero(t, f.sink.count(), "populating an empty snapshot is not a transition")
	assert.Zero(t, f.surface.count())
	assertNoMessage(t, transitions)
	require.Len(t, f.coordinator.Snapshot(), 1)

	// The second poll diffs against the first one's snapshot as usual.
	f.repo.setBuilds([]ci.Build{build(12, ci.ResultSuccess)})
	require.True(t, f.coordinator.Refresh(context.Background()))
	assert.Equal(t, 1, f.sink.count())
}

func TestCoordinator_UnchangedLeading_NoNotification(t *testing.T) {
	f := newFixture(t)
	f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess)})

	// Same leading (id, result); an older build appearing below changes
	// nothing.
	f.repo.setBuilds([]ci.Build{build(10, ci.ResultSuccess), build(9, ci.ResultFailure)})
	require.True(t, f.coordinator.Refresh(context.Background()))

	assert.Zero(t, f.sink.count())
	assert.Zero(t, f.surface.count())
}

func TestCoordinator_NewBuild_Notifies(t *testing.T) {
	f := newFixture(t)
	f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess)})

	transitions, err := f.bus.Subscribe(context.Background(), contracts.TopicBuildTransitions, "test")
	require.NoError(t, err)

	f.repo.setBuilds([]ci.Build{build(11, ci.ResultSuccess), build(10, ci.ResultSuccess)})
	require.True(t, f.coordinator.Refresh(context.Background()))

	require.Equal(t, 1, f.sink.count())
	call := f.sink.last()
	assert.Equal(t, "Jenkins Build Status", call.title)
	assert.Equal(t, "Build succeeded!", call.body)
	assert.Equal(t, notify.UrgencyNormal, call.urgency)
	assert.Equal(t, 1, f.surface.count(), "success with auto-show surfaces the UI")

	transition := receiveTransition(t, transitions)
	assert.Equal(t, contracts.ReasonNewBuild, transition.Reason)
	assert.Equal(t, 10, transition.Previous.Number)
	assert.Equal(t, 11, transition.Current.Number)
	assert.True(t, transition.AutoShow)
}

func TestCoordinator_ResultChange_Notifies(t *testing.T) {
	f := newFixture(t)
	f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess)})

	transitions, err := f.bus.Subscribe(context.Background(), contracts.TopicBuildTransitions, "test")
	require.NoError(t, err)

	f.repo.setBuilds([]ci.Build{build(10, ci.ResultFailure)})
	require.True(t, f.coordinator.Refresh(context.Background()))

	require.Equal(t, 1, f.sink.count())
	call := f.sink.last()
	assert.Equal(t, "Build failed!", call.body)
	assert.Equal(t, notify.UrgencyCritical, call.urgency)

	transition := receiveTransition(t, transitions)
	assert.Equal(t, contracts.ReasonResultChanged, transition.Reason)
}

func TestCoordinator_NotificationsDisabled(t *testing.T) {
	f := newFixture(t)
	f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess)})

	settings := f.coordinator.Settings()
	settings.NotificationsEnabled = false
	require.NoError(t, f.coordinator.UpdateSettings(settings))

	transitions, err := f.bus.Subscribe(context.Background(), contracts.TopicBuildTransitions, "test")
	require.NoError(t, err)

	f.repo.setBuilds([]ci.Build{build(11, ci.ResultFailure)})
	require.True(t, f.coordinator.Refresh(context.Background()))

	assert.Zero(t, f.sink.count(), "disabled notifications suppress the sink")
	assert.Zero(t, f.surface.count(), "auto-show rides on a dispatched notification")
	// The bus event still fires for downstream consumers, but carries the
	// suppressed auto-show decision.
	transition := receiveTransition(t, transitions)
	assert.False(t, transition.AutoShow)
}

func TestCoordinator_AutoShow_OnlyForTerminalOutcomes(t *testing.T) {
	f := newFixture(t)
	f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess)})

	f.repo.setBuilds([]ci.Build{build(11, ci.ResultUnstable)})
	require.True(t, f.coordinator.Refresh(context.Background()))

	require.Equal(t, 1, f.sink.count())
	assert.Equal(t, "Build unstable", f.sink.last().body)
	assert.Zero(t, f.surface.count(), "unstable never auto-shows")
}

func TestCoordinator_AutoShowDisabled(t *testing.T) {
	f := newFixture(t)
	f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess)})

	settings := f.coordinator.Settings()
	settings.AutoShowUI = false
	require.NoError(t, f.coordinator.UpdateSettings(settings))

	f.repo.setBuilds([]ci.Build{build(11, ci.ResultFailure)})
	require.True(t, f.coordinator.Refresh(context.Background()))

	assert.Equal(t, 1, f.sink.count())
	assert.Zero(t, f.surface.count())
}

func TestCoordinator_AuthErrorDemotes(t *testing.T) {
	f := newFixture(t)
	f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess)})

	sessionEvents, err := f.bus.Subscribe(context.Background(), contracts.TopicSessionEvents, "test")
	require.NoError(t, err)

	f.repo.setErr(ci.ErrAuthentication)
	require.True(t, f.coordinator.Refresh(context.Background()))

	assert.False(t, f.coordinator.IsAuthenticated())
	assert.Empty(t, f.coordinator.Snapshot(), "demotion clears the snapshot")
	assert.Nil(t, f.credStore.Stored(), "demotion deletes stored credentials")
	assert.Zero(t, f.sink.count(), "errors never notify")

	var demoted bool
	timeout := time.After(time.Second)
	for !demoted {
		select {
		case msg := <-sessionEvents:
			var event contracts.SessionEvent
			require.NoError(t, json.Unmarshal(msg.Value, &event))
			demoted = event.Kind == contracts.SessionDemoted
		case <-timeout:
			t.Fatal("no demotion event published")
		}
	}
}

func TestCoordinator_TransientErrorKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess)})

	f.repo.setErr(&ci.NetworkError{Err: errors.New("connection refused")})
	require.True(t, f.coordinator.Refresh(context.Background()))

	assert.True(t, f.coordinator.IsAuthenticated())
	assert.Len(t, f.coordinator.Snapshot(), 1, "the stale snapshot stays visible")
	assert.Error(t, f.coordinator.LastError())
	assert.Zero(t, f.sink.count())

	// The next successful refresh clears the error.
	f.repo.setBuilds([]ci.Build{build(10, ci.ResultSuccess)})
	require.True(t, f.coordinator.Refresh(context.Background()))
	assert.NoError(t, f.coordinator.LastError())
}

func TestCoordinator_SingleInFlightRefresh(t *testing.T) {
	f := newFixture(t)
	f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess)})

	f.repo.mu.Lock()
	f.repo.blockCh = make(chan struct{})
	f.repo.entered = make(chan struct{})
	f.repo.mu.Unlock()

	done := make(chan bool)
	go func() {
		done <- f.coordinator.Refresh(context.Background())
	}()

	<-f.repo.entered
	// A second request while the first is in flight is dropped, not queued.
	assert.False(t, f.coordinator.Refresh(context.Background()))

	close(f.repo.blockCh)
	assert.True(t, <-done)
}

func TestCoordinator_UpdateSettings_JobPathChange(t *testing.T) {
	f := newFixture(t)
	f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess)})

	settings := f.coordinator.Settings()
	settings.JobPath = "job/other/job/main"
	require.NoError(t, f.coordinator.UpdateSettings(settings))

	assert.Empty(t, f.coordinator.Snapshot(), "a different job invalidates the snapshot")
	f.repo.mu.Lock()
	boundPath := f.repo.jobPath
	f.repo.mu.Unlock()
	assert.Equal(t, "job/other/job/main", boundPath)

	// With no previous leading build, the next refresh is a first
	// population again and stays silent.
	f.repo.setBuilds([]ci.Build{build(3, ci.ResultFailure)})
	require.True(t, f.coordinator.Refresh(context.Background()))
	assert.Zero(t, f.sink.count())
}

// A refresh hitting an auth error tears the timer down from its own
// goroutine while a settings update re-arms it from another; the job handle
// must survive that interleaving. Run with the race detector.
func TestCoordinator_ConcurrentTimerControl(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 20; i++ {
		f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess)})
		f.repo.setErr(ci.ErrAuthentication)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.coordinator.Refresh(context.Background())
		}()
		go func() {
			defer wg.Done()
			settings := f.coordinator.Settings()
			settings.RefreshInterval = ci.RefreshFiveSeconds
			_ = f.coordinator.UpdateSettings(settings)
		}()
		wg.Wait()
	}

	assert.False(t, f.coordinator.IsAuthenticated())
}

func TestCoordinator_UpdateSettings_RejectsInvalid(t *testing.T) {
	f := newFixture(t)

	settings := f.coordinator.Settings()
	settings.RefreshInterval = 42
	assert.Error(t, f.coordinator.UpdateSettings(settings))
	assert.Equal(t, ci.RefreshOneMinute, f.coordinator.Settings().RefreshInterval)
}

func TestCoordinator_Logout(t *testing.T) {
	f := newFixture(t)
	f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess)})

	require.NoError(t, f.coordinator.Logout())

	assert.False(t, f.coordinator.IsAuthenticated())
	assert.Empty(t, f.coordinator.Snapshot())
	assert.Nil(t, f.credStore.Stored())

	// Logout is idempotent.
	require.NoError(t, f.coordinator.Logout())
}

func TestCoordinator_FetchStages_AuthErrorDemotes(t *testing.T) {
	f := newFixture(t)
	f.authenticate(t, []ci.Build{build(10, ci.ResultSuccess)})

	f.repo.mu.Lock()
	f.repo.stageErr = ci.ErrAuthentication
	f.repo.mu.Unlock()

	_, err := f.coordinator.FetchStages(context.Background(), 10)
	assert.ErrorIs(t, err, ci.ErrAuthentication)
	assert.False(t, f.coordinator.IsAuthenticated())
	assert.Nil(t, f.credStore.Stored())
}

func TestCoordinator_FetchStages_Unauthenticated(t *testing.T) {
	f := newFixture(t)

	_, err := f.coordinator.FetchStages(context.Background(), 10)
	assert.ErrorIs(t, err, ci.ErrAuthentication)
}

func TestCoordinator_PublishesRefreshResults(t *testing.T) {
	f := newFixture(t)
	f.authenticateAndPrime(t, []ci.Build{build(10, ci.ResultSuccess)})

	results, err := f.bus.Subscribe(context.Background(), contracts.TopicRefreshResults, "test")
	require.NoError(t, err)

	f.repo.setBuilds([]ci.Build{build(11, ci.ResultSuccess), build(10, ci.ResultSuccess)})
	require.True(t, f.coordinator.Refresh(context.Background()))

	select {
	case msg := <-results:
		var result contracts.RefreshResult
		require.NoError(t, json.Unmarshal(msg.Value, &result))
		assert.Equal(t, ci.DefaultJobPath, result.JobPath)
		assert.Equal(t, 2, result.BuildCount)
		require.NotNil(t, result.Leading)
		assert.Equal(t, 11, result.Leading.Number)
		assert.Empty(t, result.Error)
	case <-time.After(time.Second):
		t.Fatal("no refresh result published")
	}
}
