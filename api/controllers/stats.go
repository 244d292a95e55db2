package controllers

import (
	"net/http"

	"github.com/oryclothing/ory-backend/api/responses"
	statssvc "github.com/oryclothing/ory-backend/internal/stats"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

// StatsOverview returns store-wide aggregates.
func StatsOverview(svc statssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := svc.Overview(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, overview)
	}
}
