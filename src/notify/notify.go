// Package notify delivers fire-and-forget notifications about build
// transitions. Delivery failures are logged and never propagated; a missed
// notification must not affect the polling loop.
package notify

import (
	"jenkwatch-agent/src/ci"
	"jenkwatch-agent/src/logger"
)

// Urgency of a notification.
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyCritical
)

// Sink accepts notifications. Implementations must not block on user
// interaction and must not return errors to callers.
type Sink interface {
	Notify(title, body string, urgency Urgency)
}

// Title used for all build notifications.
const buildTitle = "Jenkins Build Status"

// BuildMessage returns the fixed notification text and urgency for a build
// result.
func BuildMessage(result ci.BuildResult) (body string, urgency Urgency) {
	switch result {
	case ci.ResultSuccess:
		return "Build succeeded!", UrgencyNormal
	case ci.ResultFailure:
		return "Build failed!", UrgencyCritical
	case ci.ResultUnstable:
		return "Build unstable", UrgencyNormal
	case ci.ResultAborted:
		return "Build aborted", UrgencyNormal
	default:
		return "Build status changed", UrgencyNormal
	}
}

// NotifyBuild sends the fixed per-result message for a leading-build change.
func NotifyBuild(sink Sink, result ci.BuildResult) {
	body, urgency := BuildMessage(result)
	sink.Notify(buildTitle, body, urgency)
}

// ConsoleSink logs notifications instead of displaying them. Used by the
// headless watcher alongside or instead of the desktop sink.
type ConsoleSink struct {
	Log logger.Logger
}

func NewConsoleSink(log logger.Logger) *ConsoleSink {
	return &ConsoleSink{Log: log}
}

func (s *ConsoleSink) Notify(title, body string, urgency Urgency) {
	if urgency == UrgencyCritical {
		s.Log.Error("%s: %s", title, body)
		return
	}
	s.Log.Info("%s: %s", title, body)
}

// SilentSink discards notifications. Used when notifications are disabled
// wholesale at construction time (tests, MCP mode).
type SilentSink struct{}

func NewSilentSink() *SilentSink { return &SilentSink{} }

func (SilentSink) Notify(title, body string, urgency Urgency) {}
