// Package events defines the integration events the bot emits over NATS:
// answered chat turns and opened inquiries.
package events

import "time"

// Event is anything publishable on the event stream.
type Event interface {
	// EventType returns the event code, e.g. "CHAT_ANSWERED".
	EventType() string

	// Payload returns the event data.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the concrete carrier used by the constructors in this
// package; downstream consumers only see the Event interface.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
