package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records reconciliation pipeline outcomes.
type WebhookMetrics struct {
	duration  *prometheus.HistogramVec
	orders    *prometheus.CounterVec
	saleItems prometheus.Counter
	alerts    prometheus.Counter
}

// Order outcome labels.
const (
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// NewWebhookMetrics registers the pipeline metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_order_duration_seconds",
		Help:    "Duration of order reconciliation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_orders_total",
		Help: "Marketplace order notifications by outcome.",
	}, []string{"outcome"})
	saleItems := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_sale_items_total",
		Help: "Order line items recorded as sales.",
	})
	alerts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_stock_alerts_total",
		Help: "Negative-stock alerts raised during reconciliation.",
	})
	reg.MustRegister(duration, orders, saleItems, alerts)
	return &WebhookMetrics{
		duration:  duration,
		orders:    orders,
		saleItems: saleItems,
		alerts:    alerts,
	}
}

// ObserveOrder records one finished order delivery.
func (m *WebhookMetrics) ObserveOrder(outcome string, elapsed time.Duration) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// IncSaleItems counts recorded sale line items.
func (m *WebhookMetrics) IncSaleItems(n int) {
	if m == nil || m.saleItems == nil || n <= 0 {
		return
	}
	m.saleItems.Add(float64(n))
}

// IncAlerts counts raised stock alerts.
func (m *WebhookMetrics) IncAlerts(n int) {
	if m == nil || m.alerts == nil || n <= 0 {
		return
	}
	m.alerts.Add(float64(n))
}
