package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oryclothing/ory-backend/pkg/enums"
)

// EmailRecord is a mock outbound email, persisted as an audit trail instead
// of being delivered anywhere.
type EmailRecord struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	To        string          `gorm:"column:recipient;not null"`
	Type      enums.EmailType `gorm:"column:type;not null"`
	Subject   string          `gorm:"column:subject;not null"`
	OrderID   *string         `gorm:"column:order_id;index"`
	Payload   map[string]any  `gorm:"column:payload;serializer:json"`
	Delivered bool            `gorm:"column:delivered;not null;default:true"`
	SentAt    time.Time       `gorm:"column:sent_at;autoCreateTime"`
}

func (EmailRecord) TableName() string {
	return "email_records"
}
