package models

import (
	"time"

	"github.com/oryclothing/ory-backend/pkg/enums"
)

// FulfillmentTask defers the confirmed-to-shipped transition out of the
// request cycle. Rows survive restarts, unlike an in-process timer.
type FulfillmentTask struct {
	OrderID     string                      `gorm:"column:order_id;primaryKey"`
	DueAt       time.Time                   `gorm:"column:due_at;not null;index"`
	Status      enums.FulfillmentTaskStatus `gorm:"column:status;not null;default:'pending'"`
	CompletedAt *time.Time                  `gorm:"column:completed_at"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
}

func (FulfillmentTask) TableName() string {
	return "fulfillment_tasks"
}
