package events

import "time"

// Negotiation lifecycle event types published to the event bus.
const (
	TypeNegotiationStarted  = "NEGOTIATION_STARTED"
	TypeNegotiationRefined  = "NEGOTIATION_REFINED"
	TypeNegotiationAnswered = "NEGOTIATION_ANSWERED"
	TypeNegotiationFailed   = "NEGOTIATION_FAILED"
)

// Event defines the contract for all system events. Events are fanned
// out by pkg/nats.Publisher, the contract's single consumer.
type Event interface {
	// EventType returns the unique code for this event.
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used across the service.
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
