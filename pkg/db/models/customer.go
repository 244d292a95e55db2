package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is upserted by email on first order. Aggregates accumulate across
// every subsequent order from the same address.
type Customer struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email      string    `gorm:"column:email;uniqueIndex;not null"`
	FirstName  string    `gorm:"column:first_name;not null"`
	LastName   string    `gorm:"column:last_name;not null"`
	OrderCount int       `gorm:"column:order_count;not null;default:0"`
	TotalSpent int       `gorm:"column:total_spent;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Customer) TableName() string {
	return "customers"
}
