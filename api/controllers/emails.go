package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oryclothing/ory-backend/api/responses"
	"github.com/oryclothing/ory-backend/internal/notifications"
	"github.com/oryclothing/ory-backend/pkg/enums"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

type emailResponse struct {
	ID        uuid.UUID       `json:"id"`
	To        string          `json:"to"`
	Type      enums.EmailType `json:"type"`
	Subject   string          `json:"subject"`
	OrderID   *string         `json:"order_id,omitempty"`
	Payload   map[string]any  `json:"payload,omitempty"`
	Delivered bool            `json:"delivered"`
	SentAt    time.Time       `json:"sent_at"`
}

// EmailsByOrder returns the audit trail of emails sent for one order.
func EmailsByOrder(mailer notifications.Mailer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderID")
		records, err := mailer.ListByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]emailResponse, len(records))
		for i, rec := range records {
			out[i] = emailResponse{
				ID:        rec.ID,
				To:        rec.To,
				Type:      rec.Type,
				Subject:   rec.Subject,
				OrderID:   rec.OrderID,
				Payload:   rec.Payload,
				Delivered: rec.Delivered,
				SentAt:    rec.SentAt,
			}
		}
		responses.WriteSuccess(w, out)
	}
}
