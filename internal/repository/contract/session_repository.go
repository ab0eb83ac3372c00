package contract

import (
	"context"

	"ai-promptscope-be/pkg/negotiation"
)

// SessionRepository holds live negotiation state keyed by request id.
// Entries expire after the configured TTL; an expired session simply
// stops resolving (Get returns nil, nil).
type SessionRepository interface {
	Save(ctx context.Context, session *negotiation.Session) error
	Get(ctx context.Context, requestId string) (*negotiation.Session, error)
	Delete(ctx context.Context, requestId string) error
}
