package notify

import (
	"github.com/gen2brain/beeep"

	"jenkwatch-agent/src/logger"
)

// DesktopSink shows OS desktop notifications via beeep. Critical urgency
// uses an alert, which stays on screen on most desktops until dismissed.
type DesktopSink struct {
	log logger.Logger
}

func NewDesktopSink(log logger.Logger) *DesktopSink {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &DesktopSink{log: log}
}

func (s *DesktopSink) Notify(title, body string, urgency Urgency) {
	var err error
	if urgency == UrgencyCritical {
		err = beeep.Alert(title, body, "")
	} else {
		err = beeep.Notify(title, body, "")
	}
	if err != nil {
		s.log.Error("failed to deliver notification: %v", err)
	}
}
