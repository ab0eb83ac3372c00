package model

import (
	"time"

	"github.com/google/uuid"
)

type NegotiationRequest struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RawQuery    string    `gorm:"type:text;not null"`
	DomainHint  string    `gorm:"type:text"`
	DomainLabel string    `gorm:"type:text;not null"`
	Status      string    `gorm:"type:text;not null;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (NegotiationRequest) TableName() string {
	return "negotiation_requests"
}
