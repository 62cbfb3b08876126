// Package notify delivers out-of-band alerts (water level, startup).
// Sends are fire-and-forget: failures are logged and never surfaced to the
// monitoring loops.
package notify

import (
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/logger"
)

// Notifier sends a single alert message.
type Notifier interface {
	Send(subject, body string)
}

// LogNotifier writes alerts to the application log only. Used when mail is
// disabled and in mock hardware mode.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(subject, body string) {
	n.log.Infow("alert", "subject", subject, "body", body)
}
