package implementation

import (
	"context"

	"ai-promptscope-be/internal/entity"
	"ai-promptscope-be/internal/mapper"
	"ai-promptscope-be/internal/model"
	"ai-promptscope-be/internal/repository/contract"
	"ai-promptscope-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TraceEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NegotiationMapper
}

func NewTraceEventRepository(db *gorm.DB) contract.TraceEventRepository {
	return &TraceEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewNegotiationMapper(),
	}
}

func (r *TraceEventRepositoryImpl) Append(ctx context.Context, event *entity.TraceEvent) error {
	m, err := r.mapper.TraceEventToModel(event)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	event.Id = m.Id
	return nil
}

func (r *TraceEventRepositoryImpl) ListByRequestId(ctx context.Context, requestId uuid.UUID) ([]*entity.TraceEvent, error) {
	var models []*model.TraceEvent
	query := specification.OrderBySeq{}.Apply(
		specification.ByRequestID{RequestID: requestId}.Apply(r.db.WithContext(ctx)),
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	events := make([]*entity.TraceEvent, len(models))
	for i, m := range models {
		events[i] = r.mapper.TraceEventToEntity(m)
	}
	return events, nil
}
