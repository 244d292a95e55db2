package controllers

import (
	"net/http"

	"github.com/oryclothing/ory-backend/api/responses"
	"github.com/oryclothing/ory-backend/api/validators"
	recentsvc "github.com/oryclothing/ory-backend/internal/recent"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

type recentViewRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// RecentRecord marks a product as viewed by the session.
func RecentRecord(svc recentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload recentViewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Record(r.Context(), sessionID, payload.ProductID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		products, err := svc.List(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// RecentList returns the session's recently viewed products, newest first.
func RecentList(svc recentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		products, err := svc.List(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}
