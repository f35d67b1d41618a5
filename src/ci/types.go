package ci

import (
	"net/url"
	"time"
)

// BuildResult is the terminal outcome of a build, using the Jenkins wire
// strings as values.
type BuildResult string

const (
	ResultSuccess  BuildResult = "SUCCESS"
	ResultFailure  BuildResult = "FAILURE"
	ResultUnstable BuildResult = "UNSTABLE"
	ResultAborted  BuildResult = "ABORTED"
	ResultNotBuilt BuildResult = "NOT_BUILT"
	ResultUnknown  BuildResult = "UNKNOWN"
)

// ParseBuildResult maps a server result string to a BuildResult.
// The second return value is false for unrecognized strings; callers decide
// whether that means "skip the record" (builds) or "unknown" (stages).
func ParseBuildResult(s string) (BuildResult, bool) {
	switch BuildResult(s) {
	case ResultSuccess, ResultFailure, ResultUnstable, ResultAborted, ResultNotBuilt, ResultUnknown:
		return BuildResult(s), true
	}
	return ResultUnknown, false
}

// ResultColor is the display bucket for a result or stage status.
type ResultColor int

const (
	ColorGray ResultColor = iota
	ColorGreen
	ColorRed
	ColorYellow
)

// Color returns the display bucket for this result.
func (r BuildResult) Color() ResultColor {
	switch r {
	case ResultSuccess:
		return ColorGreen
	case ResultFailure:
		return ColorRed
	case ResultUnstable:
		return ColorYellow
	default:
		return ColorGray
	}
}

// Build is one completed execution of the monitored job. Only builds with a
// terminal result exist in this model; in-progress builds are filtered out
// at the repository boundary.
type Build struct {
	// Server-assigned build number. Monotonically increasing but not
	// guaranteed contiguous.
	ID        int
	Result    BuildResult
	Timestamp time.Time
	Duration  time.Duration
	URL       *url.URL
}

// BuildStageStatus is the outcome of a single pipeline stage. It is a
// superset of BuildResult: stages can additionally be skipped or paused.
type BuildStageStatus string

const (
	StageSuccess  BuildStageStatus = "SUCCESS"
	StageFailure  BuildStageStatus = "FAILURE"
	StageUnstable BuildStageStatus = "UNSTABLE"
	StageAborted  BuildStageStatus = "ABORTED"
	StageNotBuilt BuildStageStatus = "NOT_BUILT"
	StageSkipped  BuildStageStatus = "SKIPPED"
	StagePaused   BuildStageStatus = "PAUSED"
	StageUnknown  BuildStageStatus = "UNKNOWN"
)

// ParseStageStatus maps a server status string to a BuildStageStatus.
// Unrecognized strings map to StageUnknown rather than failing the fetch.
func ParseStageStatus(s string) BuildStageStatus {
	switch BuildStageStatus(s) {
	case StageSuccess, StageFailure, StageUnstable, StageAborted, StageNotBuilt, StageSkipped, StagePaused, StageUnknown:
		return BuildStageStatus(s)
	}
	return StageUnknown
}

// Color returns the display bucket for this stage status.
func (s BuildStageStatus) Color() ResultColor {
	switch s {
	case StageSuccess:
		return ColorGreen
	case StageFailure:
		return ColorRed
	case StageUnstable:
		return ColorYellow
	default:
		return ColorGray
	}
}

// BuildStage is one named phase within a build's pipeline.
type BuildStage struct {
	// Server-local stage id, unique within a build only.
	ID       string
	Name     string
	Status   BuildStageStatus
	Duration time.Duration
	// Epoch milliseconds of the stage start; nil means the stage has not
	// started.
	StartTimeMillis *int64
}
