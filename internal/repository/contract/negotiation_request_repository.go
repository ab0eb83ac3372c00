package contract

import (
	"context"

	"ai-promptscope-be/internal/entity"
	"ai-promptscope-be/internal/repository/specification"
)

type NegotiationRequestRepository interface {
	Create(ctx context.Context, request *entity.NegotiationRequest) error
	Update(ctx context.Context, request *entity.NegotiationRequest) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.NegotiationRequest, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
