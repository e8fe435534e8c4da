package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/estoquelabs/estoque-backend/internal/mercadolivre"
	"github.com/go-chi/chi/v5"
)

// MockOrder serves a canned paid order for local end-to-end testing of the
// webhook flow without marketplace credentials. Point ESTOQUE_ML_BASE_URL at
// this server's /mock path to exercise it. The payload mirrors the
// marketplace shape, so it is written raw rather than enveloped.
func MockOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order := mercadolivre.Order{
			ID:     chi.URLParam(r, "orderID"),
			Status: mercadolivre.OrderStatusPaid,
			Items: []mercadolivre.OrderItem{
				{
					Item:     mercadolivre.ItemRef{ID: "MLB123456789"},
					Quantity: 3,
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(order)
	}
}
