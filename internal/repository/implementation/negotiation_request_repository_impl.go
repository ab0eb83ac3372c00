package implementation

import (
	"context"
	"errors"

	"ai-promptscope-be/internal/entity"
	"ai-promptscope-be/internal/mapper"
	"ai-promptscope-be/internal/model"
	"ai-promptscope-be/internal/repository/contract"
	"ai-promptscope-be/internal/repository/specification"

	"gorm.io/gorm"
)

type NegotiationRequestRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NegotiationMapper
}

func NewNegotiationRequestRepository(db *gorm.DB) contract.NegotiationRequestRepository {
	return &NegotiationRequestRepositoryImpl{
		db:     db,
		mapper: mapper.NewNegotiationMapper(),
	}
}

func (r *NegotiationRequestRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NegotiationRequestRepositoryImpl) Create(ctx context.Context, request *entity.NegotiationRequest) error {
	m := r.mapper.RequestToModel(request)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*request = *r.mapper.RequestToEntity(m)
	return nil
}

func (r *NegotiationRequestRepositoryImpl) Update(ctx context.Context, request *entity.NegotiationRequest) error {
	m := r.mapper.RequestToModel(request)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*request = *r.mapper.RequestToEntity(m)
	return nil
}

func (r *NegotiationRequestRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.NegotiationRequest, error) {
	var m model.NegotiationRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RequestToEntity(&m), nil
}

func (r *NegotiationRequestRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.NegotiationRequest{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
