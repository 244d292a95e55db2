package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oryclothing/ory-backend/pkg/db/types"
	"github.com/oryclothing/ory-backend/pkg/enums"
)

// Order is the durable record of a completed, paid purchase. Immutable once
// created except for the asynchronous status transition to shipped.
type Order struct {
	ID                string            `gorm:"column:id;primaryKey"`
	CustomerID        uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	CustomerEmail     string            `gorm:"column:customer_email;not null"`
	Subtotal          int               `gorm:"column:subtotal;not null"`
	Discount          int               `gorm:"column:discount;not null;default:0"`
	Shipping          int               `gorm:"column:shipping;not null;default:0"`
	Total             int               `gorm:"column:total;not null"`
	PaymentIntentID   *string           `gorm:"column:payment_intent_id"`
	Status            enums.OrderStatus `gorm:"column:status;not null;default:'confirmed'"`
	ShippingAddress   types.Address     `gorm:"column:shipping_address;serializer:json"`
	TrackingNumber    string            `gorm:"column:tracking_number;not null"`
	EstimatedDelivery string            `gorm:"column:estimated_delivery;not null"`
	Items             []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}
