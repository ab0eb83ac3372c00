package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TraceEvent struct {
	Id        int64          `gorm:"primaryKey;autoIncrement"`
	RequestId uuid.UUID      `gorm:"type:uuid;not null;index:idx_trace_request_seq,priority:1"`
	Seq       int64          `gorm:"not null;index:idx_trace_request_seq,priority:2"`
	Kind      string         `gorm:"type:text;not null"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (TraceEvent) TableName() string {
	return "trace_events"
}
