package contract

import (
	"context"

	"ai-promptscope-be/internal/entity"

	"github.com/google/uuid"
)

type TraceEventRepository interface {
	// Append inserts one event. The ledger is append-only: there is no
	// update or delete on this repository by design.
	Append(ctx context.Context, event *entity.TraceEvent) error
	ListByRequestId(ctx context.Context, requestId uuid.UUID) ([]*entity.TraceEvent, error)
}
