package ci

import "time"

// RefreshInterval is the poll cadence, restricted to a small fixed set.
type RefreshInterval int

const (
	RefreshFiveSeconds   RefreshInterval = 5
	RefreshTenSeconds    RefreshInterval = 10
	RefreshThirtySeconds RefreshInterval = 30
	RefreshOneMinute     RefreshInterval = 60
	RefreshFiveMinutes   RefreshInterval = 300
)

// RefreshIntervals lists the selectable intervals in ascending order.
var RefreshIntervals = []RefreshInterval{
	RefreshFiveSeconds,
	RefreshTenSeconds,
	RefreshThirtySeconds,
	RefreshOneMinute,
	RefreshFiveMinutes,
}

// Valid reports whether the interval is one of the enumerated values.
func (r RefreshInterval) Valid() bool {
	for _, v := range RefreshIntervals {
		if r == v {
			return true
		}
	}
	return false
}

// Duration returns the interval as a time.Duration.
func (r RefreshInterval) Duration() time.Duration {
	return time.Duration(r) * time.Second
}

// DisplayName returns the human-readable label for the interval.
func (r RefreshInterval) DisplayName() string {
	switch r {
	case RefreshFiveSeconds:
		return "5 seconds"
	case RefreshTenSeconds:
		return "10 seconds"
	case RefreshThirtySeconds:
		return "30 seconds"
	case RefreshOneMinute:
		return "1 minute"
	case RefreshFiveMinutes:
		return "5 minutes"
	default:
		return "unknown"
	}
}

// DefaultJobPath is the job monitored when none has been configured.
const DefaultJobPath = "job/test-app/job/main"

// Settings hold the user-tunable behavior of the watcher.
type Settings struct {
	RefreshInterval      RefreshInterval `yaml:"refresh_interval_seconds"`
	NotificationsEnabled bool            `yaml:"notifications_enabled"`
	AutoShowUI           bool            `yaml:"auto_show_ui"`
	// Slash-delimited job locator, e.g. "job/foo/job/main".
	JobPath string `yaml:"job_path"`
}

// DefaultSettings returns the settings used at first launch and whenever the
// persisted settings cannot be decoded. Corrupt settings fall back to this
// whole value, never to a partial merge.
func DefaultSettings() Settings {
	return Settings{
		RefreshInterval:      RefreshOneMinute,
		NotificationsEnabled: true,
		AutoShowUI:           true,
		JobPath:              DefaultJobPath,
	}
}

// Valid reports whether every field holds an allowed value.
func (s Settings) Valid() bool {
	return s.RefreshInterval.Valid() && s.JobPath != ""
}
