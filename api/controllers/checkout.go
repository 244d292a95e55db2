package controllers

import (
	"net/http"

	"github.com/oryclothing/ory-backend/api/responses"
	"github.com/oryclothing/ory-backend/api/validators"
	checkoutsvc "github.com/oryclothing/ory-backend/internal/checkout"
	"github.com/oryclothing/ory-backend/internal/payments"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

type checkoutResponse struct {
	State   checkoutsvc.State `json:"state"`
	Message string            `json:"message,omitempty"`
	Order   *orderResponse    `json:"order,omitempty"`
	Payment *payments.Result  `json:"payment,omitempty"`
}

func newCheckoutResponse(result *checkoutsvc.Result) checkoutResponse {
	resp := checkoutResponse{
		State:   result.State,
		Message: result.Message,
		Payment: result.Payment,
	}
	if result.Order != nil {
		order := newOrderResponse(result.Order)
		resp.Order = &order
	}
	return resp
}

// CheckoutSubmit runs one checkout attempt for the session's cart.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload checkoutsvc.SubmitInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sanitizeCustomer(&payload.Customer)
		result, err := svc.Submit(r.Context(), sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.State == checkoutsvc.StateSuccess {
			responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
			return
		}
		responses.WriteSuccess(w, newCheckoutResponse(result))
	}
}
