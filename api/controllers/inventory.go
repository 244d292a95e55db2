package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oryclothing/ory-backend/api/responses"
	"github.com/oryclothing/ory-backend/internal/inventory"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

// InventoryList returns the full catalog with per-size stock.
func InventoryList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// InventoryGet returns one product with per-size stock.
func InventoryGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productID")
		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
