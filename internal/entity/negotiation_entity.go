package entity

import (
	"time"

	"github.com/google/uuid"
)

// NegotiationRequest is the durable record of one negotiation, created
// at discovery time. Live round state lives in the session store; this
// row anchors the trace ledger.
type NegotiationRequest struct {
	Id          uuid.UUID
	RawQuery    string
	DomainHint  string
	DomainLabel string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// TraceEvent is one appended entry of a request's trace. Seq is the
// total order within the request.
type TraceEvent struct {
	Id        int64
	RequestId uuid.UUID
	Seq       int64
	Kind      string
	Data      map[string]interface{}
	CreatedAt time.Time
}
