package controllers

import (
	"net/http"

	"github.com/estoquelabs/estoque-backend/api/middleware"
	"github.com/estoquelabs/estoque-backend/api/responses"
	"github.com/estoquelabs/estoque-backend/api/validators"
	alert "github.com/estoquelabs/estoque-backend/internal/alerts"
	"github.com/estoquelabs/estoque-backend/pkg/logger"
)

// ListAlerts returns stock alerts, optionally filtered by resolution state or
// product.
func ListAlerts(svc alert.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resolved, err := validators.ParseQueryBool(r, "resolved")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseQueryUUID(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListAlerts(r.Context(), alert.ListAlertsInput{
			Resolved:  resolved,
			ProductID: productID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ResolveAlert marks a stock alert as handled.
func ResolveAlert(svc alert.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "alertID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.ResolveAlert(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithFields(r.Context(), map[string]any{
				"alert_id":    id.String(),
				"resolved_by": middleware.UserIDFromContext(r.Context()),
			}), "alert resolved")
		}
		responses.WriteSuccess(w, dto)
	}
}
