package models

import (
	"github.com/google/uuid"

	"github.com/oryclothing/ory-backend/pkg/enums"
)

// OrderLineItem snapshots one (product, size) purchase inside an order. Unit
// price is taken from the catalog at creation time, never from the client.
type OrderLineItem struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   string            `gorm:"column:order_id;not null;index"`
	ProductID string            `gorm:"column:product_id;not null"`
	Name      string            `gorm:"column:name;not null"`
	Size      enums.ProductSize `gorm:"column:size;not null"`
	Quantity  int               `gorm:"column:quantity;not null"`
	UnitPrice int               `gorm:"column:unit_price;not null"`
	Total     int               `gorm:"column:total;not null"`
}

func (OrderLineItem) TableName() string {
	return "order_line_items"
}
