package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/oryclothing/ory-backend/internal/promos"
	"github.com/oryclothing/ory-backend/pkg/enums"
)

// Line is the pricing view of one cart line item.
type Line struct {
	UnitPrice int
	Quantity  int
}

// Quote is the deterministic price breakdown for a cart.
type Quote struct {
	Subtotal       int    `json:"subtotal"`
	Discount       int    `json:"discount"`
	Total          int    `json:"total"`
	PromoCode      string `json:"promo_code,omitempty"`
	DiscountReason string `json:"discount_reason,omitempty"`
}

// Compute prices a cart under an optional promo rule. Pure: same inputs
// always produce the same quote.
func Compute(lines []Line, promo *promos.Rule) Quote {
	subtotal := 0
	for _, line := range lines {
		subtotal += line.UnitPrice * line.Quantity
	}

	q := Quote{Subtotal: subtotal}
	if promo == nil {
		q.Total = subtotal
		return q
	}

	q.PromoCode = promo.Code
	if promo.MinOrder > 0 && subtotal < promo.MinOrder {
		q.Total = subtotal
		q.DiscountReason = fmt.Sprintf("code %s requires a minimum order of $%d", promo.Code, promo.MinOrder)
		return q
	}

	q.Discount = discountFor(subtotal, promo)
	q.Total = subtotal - q.Discount
	if q.Total < 0 {
		q.Total = 0
	}
	return q
}

func discountFor(subtotal int, promo *promos.Rule) int {
	switch promo.Type {
	case enums.DiscountPercentage:
		// Half-up to the nearest dollar.
		d := decimal.NewFromInt(int64(subtotal)).
			Mul(decimal.NewFromInt(int64(promo.Value))).
			Div(decimal.NewFromInt(100)).
			Round(0)
		return int(d.IntPart())
	case enums.DiscountFixed:
		if promo.Value > subtotal {
			return subtotal
		}
		return promo.Value
	}
	return 0
}
