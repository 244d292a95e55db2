package controllers

import (
	"net/http"

	"github.com/oryclothing/ory-backend/api/responses"
	"github.com/oryclothing/ory-backend/api/validators"
	"github.com/oryclothing/ory-backend/internal/payments"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

type createIntentRequest struct {
	Amount     int    `json:"amount" validate:"required,min=1"`
	Currency   string `json:"currency"`
	CardNumber string `json:"card_number" validate:"required"`
}

// PaymentCreateIntent authorizes a mock charge. Declines are a 200 with a
// failed status, mirroring how real gateways report them.
func PaymentCreateIntent(gateway payments.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := gateway.Authorize(r.Context(), payments.AuthorizeInput{
			Amount:     payload.Amount,
			Currency:   payload.Currency,
			CardNumber: payload.CardNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
