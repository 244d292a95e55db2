package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oryclothing/ory-backend/api/middleware"
	"github.com/oryclothing/ory-backend/api/responses"
	"github.com/oryclothing/ory-backend/api/validators"
	cartsvc "github.com/oryclothing/ory-backend/internal/cart"
	"github.com/oryclothing/ory-backend/pkg/enums"
	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

type cartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size" validate:"required"`
}

type cartAdjustRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Delta     int    `json:"delta" validate:"required"`
}

type promoRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

func sessionFromRequest(r *http.Request) (string, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	return sessionID, nil
}

// CartGet returns the session's cart.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

// CartAddItem adds one unit of a (product, size) to the cart.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.Add(r.Context(), sessionID, payload.ProductID, enums.ProductSize(payload.Size))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

// CartAdjustItem changes a line's quantity by a signed delta.
func CartAdjustItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cartAdjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.AdjustQuantity(r.Context(), sessionID, payload.ProductID, enums.ProductSize(payload.Size), payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

// CartRemoveItem drops a (product, size) line entirely.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID := chi.URLParam(r, "productID")
		size := chi.URLParam(r, "size")
		c, err := svc.Remove(r.Context(), sessionID, productID, enums.ProductSize(size))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Cart cleared"})
	}
}

// CartApplyPromo validates and applies a promo code to the cart.
func CartApplyPromo(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload promoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.ApplyPromo(r.Context(), sessionID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

// CartRemovePromo clears the applied promo unconditionally.
func CartRemovePromo(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.RemovePromo(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

type quoteResponse struct {
	Cart  any `json:"cart"`
	Quote any `json:"quote"`
}

// CartQuote returns the cart and its deterministic price breakdown.
func CartQuote(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, quote, err := svc.Quote(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quoteResponse{Cart: c, Quote: quote})
	}
}
