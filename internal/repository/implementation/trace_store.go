package implementation

import (
	"context"
	"fmt"

	"ai-promptscope-be/internal/entity"
	"ai-promptscope-be/internal/repository/contract"
	"ai-promptscope-be/pkg/trace"

	"github.com/google/uuid"
)

// TraceStore adapts the trace event repository onto the ledger's Store
// contract.
type TraceStore struct {
	repo contract.TraceEventRepository
}

var _ trace.Store = &TraceStore{}

func NewTraceStore(repo contract.TraceEventRepository) *TraceStore {
	return &TraceStore{repo: repo}
}

func (s *TraceStore) Append(ctx context.Context, requestId string, event *trace.Event) error {
	id, err := uuid.Parse(requestId)
	if err != nil {
		return fmt.Errorf("invalid request id %q: %w", requestId, err)
	}
	return s.repo.Append(ctx, &entity.TraceEvent{
		RequestId: id,
		Seq:       event.Seq,
		Kind:      event.Kind,
		Data:      event.Data,
		CreatedAt: event.Timestamp,
	})
}

func (s *TraceStore) List(ctx context.Context, requestId string) ([]*trace.Event, error) {
	id, err := uuid.Parse(requestId)
	if err != nil {
		return nil, fmt.Errorf("invalid request id %q: %w", requestId, err)
	}
	stored, err := s.repo.ListByRequestId(ctx, id)
	if err != nil {
		return nil, err
	}

	events := make([]*trace.Event, len(stored))
	for i, e := range stored {
		events[i] = &trace.Event{
			Seq:       e.Seq,
			Kind:      e.Kind,
			Timestamp: e.CreatedAt,
			Data:      e.Data,
		}
	}
	return events, nil
}
