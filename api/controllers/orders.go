package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oryclothing/ory-backend/api/responses"
	"github.com/oryclothing/ory-backend/api/validators"
	ordersvc "github.com/oryclothing/ory-backend/internal/orders"
	"github.com/oryclothing/ory-backend/pkg/db/models"
	"github.com/oryclothing/ory-backend/pkg/db/types"
	"github.com/oryclothing/ory-backend/pkg/enums"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

type orderLineItemResponse struct {
	ProductID string            `json:"product_id"`
	Name      string            `json:"name"`
	Size      enums.ProductSize `json:"size"`
	Quantity  int               `json:"quantity"`
	UnitPrice int               `json:"unit_price"`
	Total     int               `json:"total"`
}

type orderResponse struct {
	ID                string                  `json:"id"`
	CustomerEmail     string                  `json:"customer_email"`
	Subtotal          int                     `json:"subtotal"`
	Discount          int                     `json:"discount"`
	Shipping          int                     `json:"shipping"`
	Total             int                     `json:"total"`
	PaymentIntentID   *string                 `json:"payment_intent_id,omitempty"`
	Status            enums.OrderStatus       `json:"status"`
	ShippingAddress   types.Address           `json:"shipping_address"`
	TrackingNumber    string                  `json:"tracking_number"`
	EstimatedDelivery string                  `json:"estimated_delivery"`
	Items             []orderLineItemResponse `json:"items"`
	CreatedAt         time.Time               `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderLineItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = orderLineItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		}
	}
	return orderResponse{
		ID:                order.ID,
		CustomerEmail:     order.CustomerEmail,
		Subtotal:          order.Subtotal,
		Discount:          order.Discount,
		Shipping:          order.Shipping,
		Total:             order.Total,
		PaymentIntentID:   order.PaymentIntentID,
		Status:            order.Status,
		ShippingAddress:   order.ShippingAddress,
		TrackingNumber:    order.TrackingNumber,
		EstimatedDelivery: order.EstimatedDelivery,
		Items:             items,
		CreatedAt:         order.CreatedAt,
	}
}

func sanitizeCustomer(c *ordersvc.CustomerInput) {
	c.Email = validators.NormalizeEmail(c.Email)
	c.FirstName = validators.SanitizeString(c.FirstName, 100)
	c.LastName = validators.SanitizeString(c.LastName, 100)
	c.Address = validators.SanitizeString(c.Address, 200)
	c.City = validators.SanitizeString(c.City, 100)
	c.Zip = validators.SanitizeString(c.Zip, 20)
	c.Country = validators.SanitizeString(c.Country, 100)
}

// OrderCreate places an order directly, bypassing the checkout orchestrator.
func OrderCreate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload ordersvc.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sanitizeCustomer(&payload.Customer)
		order, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// OrderGet returns one order by its public id.
func OrderGet(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderID")
		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
