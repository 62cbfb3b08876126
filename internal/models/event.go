package models

import "time"

// Event types recorded in the append-only system event log.
const (
	EventAlert    = "ALERT"
	EventRecovery = "RECOVERY"
	EventFeed     = "FEED"
	EventActuator = "ACTUATOR"
	EventError    = "ERROR"
)

// SystemEvent is a single log entry.
type SystemEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
