package models

import (
	"time"

	"github.com/oryclothing/ory-backend/pkg/enums"
)

// InventoryLevel tracks sellable stock per (product, size). It is the single
// source of truth the order service decrements; stock must never go negative.
type InventoryLevel struct {
	ProductID string            `gorm:"column:product_id;primaryKey"`
	Size      enums.ProductSize `gorm:"column:size;primaryKey"`
	Stock     int               `gorm:"column:stock;not null;default:0"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (InventoryLevel) TableName() string {
	return "inventory_levels"
}
