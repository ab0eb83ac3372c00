package mapper

import (
	"encoding/json"
	"time"

	"ai-promptscope-be/internal/entity"
	"ai-promptscope-be/internal/model"

	"gorm.io/datatypes"
)

type NegotiationMapper struct{}

func NewNegotiationMapper() *NegotiationMapper {
	return &NegotiationMapper{}
}

func (m *NegotiationMapper) RequestToEntity(r *model.NegotiationRequest) *entity.NegotiationRequest {
	if r == nil {
		return nil
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.NegotiationRequest{
		Id:          r.Id,
		RawQuery:    r.RawQuery,
		DomainHint:  r.DomainHint,
		DomainLabel: r.DomainLabel,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *NegotiationMapper) RequestToModel(r *entity.NegotiationRequest) *model.NegotiationRequest {
	if r == nil {
		return nil
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.NegotiationRequest{
		Id:          r.Id,
		RawQuery:    r.RawQuery,
		DomainHint:  r.DomainHint,
		DomainLabel: r.DomainLabel,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *NegotiationMapper) TraceEventToEntity(e *model.TraceEvent) *entity.TraceEvent {
	if e == nil {
		return nil
	}

	data := make(map[string]interface{})
	if len(e.Data) > 0 {
		// Payload was marshalled by us; a decode failure means a
		// corrupted row, surfaced as an empty payload rather than a
		// dropped event.
		_ = json.Unmarshal(e.Data, &data)
	}

	return &entity.TraceEvent{
		Id:        e.Id,
		RequestId: e.RequestId,
		Seq:       e.Seq,
		Kind:      e.Kind,
		Data:      data,
		CreatedAt: e.CreatedAt,
	}
}

func (m *NegotiationMapper) TraceEventToModel(e *entity.TraceEvent) (*model.TraceEvent, error) {
	if e == nil {
		return nil, nil
	}

	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}

	return &model.TraceEvent{
		Id:        e.Id,
		RequestId: e.RequestId,
		Seq:       e.Seq,
		Kind:      e.Kind,
		Data:      datatypes.JSON(payload),
		CreatedAt: e.CreatedAt,
	}, nil
}
