package dto

import "time"

// PublishNegotiationEventMessage is the payload carried on the internal
// event bus between the negotiation service and the consumer worker.
type PublishNegotiationEventMessage struct {
	Type       string                 `json:"type"`
	RequestId  string                 `json:"request_id"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}
