// Package contracts defines the JSON messages published on the event bus.
package contracts

// Topics the coordinator publishes to. In-memory subscribers (the TUI) and
// the optional Redpanda publisher share these names.
const (
	TopicRefreshResults   = "jenkins_refresh_results"
	TopicBuildTransitions = "jenkins_build_transitions"
	TopicSessionEvents    = "jenkins_session_events"
)

// Transition reasons.
const (
	ReasonNewBuild      = "new-build"
	ReasonResultChanged = "result-changed"
)

// BuildRef is the (id, result) pair used for leading-build comparison.
type BuildRef struct {
	Number int    `json:"number"`
	Result string `json:"result"`
}

// RefreshResult is published after every completed refresh attempt, whether
// it succeeded or not.
type RefreshResult struct {
	// Job path the snapshot belongs to.
	JobPath string `json:"job_path"`
	// Number of builds in the new snapshot. Zero when Error is set.
	BuildCount int `json:"build_count"`
	// Leading build of the new snapshot, if any.
	Leading *BuildRef `json:"leading,omitempty"`
	// User-facing error message; empty on success.
	Error string `json:"error,omitempty"`
	// Epoch milliseconds at completion.
	FinishedAt int64 `json:"finished_at"`
}

// BuildTransition is published only for notification-worthy changes of the
// leading build: a new build appearing or the same build changing result.
type BuildTransition struct {
	JobPath  string   `json:"job_path"`
	Previous BuildRef `json:"previous"`
	Current  BuildRef `json:"current"`
	// ReasonNewBuild or ReasonResultChanged.
	Reason string `json:"reason"`
	// True when the transition should also surface the UI (success or
	// failure with auto-show enabled).
	AutoShow bool `json:"auto_show"`
	// Absolute URL of the current leading build.
	URL string `json:"url,omitempty"`
}

// Session event kinds.
const (
	SessionAuthenticated = "authenticated"
	SessionDemoted       = "demoted"
	SessionLoggedOut     = "logged-out"
)

// SessionEvent is published on every session state change.
type SessionEvent struct {
	Kind string `json:"kind"`
	// Server host the session points at; empty after logout.
	Server string `json:"server,omitempty"`
}
