package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CheckoutMetrics struct {
	SessionsCreated   prometheus.Counter
	SessionsRejected  *prometheus.CounterVec
	OrdersCreated     *prometheus.CounterVec
	WebhookDeliveries *prometheus.CounterVec
	StockRejections   prometheus.Counter
}

func NewCheckoutMetrics() *CheckoutMetrics {
	m := &CheckoutMetrics{
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lessence",
			Subsystem: "checkout",
			Name:      "sessions_created_total",
			Help:      "Hosted payment sessions created.",
		}),
		SessionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lessence",
			Subsystem: "checkout",
			Name:      "sessions_rejected_total",
			Help:      "Session creations rejected, by reason.",
		}, []string{"reason"}),
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lessence",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders created, by trigger (webhook or direct).",
		}, []string{"trigger"}),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lessence",
			Subsystem: "payments",
			Name:      "webhook_deliveries_total",
			Help:      "Webhook deliveries, by outcome.",
		}, []string{"outcome"}),
		StockRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lessence",
			Subsystem: "orders",
			Name:      "insufficient_stock_total",
			Help:      "Checkouts aborted for insufficient stock.",
		}),
	}
	prometheus.MustRegister(
		m.SessionsCreated,
		m.SessionsRejected,
		m.OrdersCreated,
		m.WebhookDeliveries,
		m.StockRejections,
	)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
