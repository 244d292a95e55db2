package orders

import "github.com/oryclothing/ory-backend/pkg/enums"

// OrderItemInput is one requested (product, size, quantity) line.
type OrderItemInput struct {
	ProductID string            `json:"product_id" validate:"required"`
	Size      enums.ProductSize `json:"size" validate:"required"`
	Quantity  int               `json:"quantity" validate:"required,min=1,max=10"`
}

// CustomerInput carries the contact and shipping details submitted at checkout.
type CustomerInput struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Address   string `json:"address" validate:"required,max=200"`
	City      string `json:"city" validate:"required,max=100"`
	Zip       string `json:"zip" validate:"required,max=20"`
	Country   string `json:"country" validate:"required,max=100"`
}

// CreateOrderInput is the full order creation request. Prices are never taken
// from the client; the promo code is re-validated server side.
type CreateOrderInput struct {
	Items           []OrderItemInput `json:"items" validate:"required,min=1,max=20,dive"`
	Customer        CustomerInput    `json:"customer" validate:"required"`
	PromoCode       string           `json:"promo_code,omitempty"`
	PaymentIntentID string           `json:"payment_intent_id,omitempty"`
}
