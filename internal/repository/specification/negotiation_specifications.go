package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

type ByRequestID struct {
	RequestID uuid.UUID
}

func (s ByRequestID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("request_id = ?", s.RequestID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type OrderBySeq struct{}

func (s OrderBySeq) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC")
}
