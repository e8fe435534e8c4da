// Package webhooks terminates marketplace push notifications.
package webhooks

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/estoquelabs/estoque-backend/internal/mercadolivre"
	"github.com/estoquelabs/estoque-backend/internal/reconcile"
	"github.com/estoquelabs/estoque-backend/pkg/logger"
)

// OrderProcessor is the reconciler surface the webhook needs.
type OrderProcessor interface {
	ProcessNotification(ctx context.Context, notification mercadolivre.Notification) (*reconcile.Outcome, error)
}

// MercadoLivreWebhook handles order notifications pushed by the marketplace.
// The marketplace only inspects the status code: 200 acknowledges the
// delivery, anything else triggers a retry, so the body stays empty.
func MercadoLivreWebhook(processor OrderProcessor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if processor == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var notification mercadolivre.Notification
		if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
			if logg != nil {
				logg.Error(ctx, "webhook payload unreadable", err)
			}
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		outcome, err := processor.ProcessNotification(ctx, notification)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "order notification failed", err)
			}
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if logg != nil && outcome != nil && outcome.Processed {
			ctx = logg.WithFields(ctx, map[string]any{
				"order_id":   outcome.OrderID,
				"sale_items": outcome.SaleItems,
				"skipped":    outcome.Skipped,
				"alerts":     outcome.Alerts,
			})
			logg.Info(ctx, "order notification processed")
		}
		w.WriteHeader(http.StatusOK)
	}
}
