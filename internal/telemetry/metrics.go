// Package telemetry holds Prometheus metrics for business-level
// observability of the storefront.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability.
type BusinessMetrics struct {
	// Cart
	CartMutations *prometheus.CounterVec
	CartClamps    prometheus.Counter
	CartCleared   prometheus.Counter
	CartValue     prometheus.Histogram

	// Checkout funnel
	CheckoutStarted    *prometheus.CounterVec
	OrdersSubmitted    *prometheus.CounterVec
	OrderCreateFailed  prometheus.Counter
	PaymentCreateFailed prometheus.Counter
	OrderValue         prometheus.Histogram
	OrderItemCount     prometheus.Histogram

	// Payment confirmation
	PaymentChecks    *prometheus.CounterVec
	PaymentApproved  *prometheus.CounterVec
	PaymentFailed    *prometheus.CounterVec

	// Backend collaborator
	BackendErrors *prometheus.CounterVec

	// Bling sync worker
	BlingSyncs *prometheus.CounterVec
}

// NewBusinessMetrics creates and registers all business metrics against the
// given registerer. Pass prometheus.DefaultRegisterer in production and a
// fresh registry in tests.
func NewBusinessMetrics(reg prometheus.Registerer, namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "optical"
	}

	subsystem := "business"
	factory := promauto.With(reg)

	return &BusinessMetrics{
		CartMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_mutations_total",
				Help:      "Cart mutations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		CartClamps: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_clamps_total",
				Help:      "Cart adds capped at the stock ceiling",
			},
		),
		CartCleared: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cleared_total",
				Help:      "Carts emptied, whether by the shopper or by checkout",
			},
		),
		CartValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_value",
				Help:      "Cart total at checkout start, in currency units",
				Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
			},
		),
		CheckoutStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_started_total",
				Help:      "Checkout submissions attempted, by payment method",
			},
			[]string{"payment_method"},
		),
		OrdersSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_submitted_total",
				Help:      "Orders created at the backend, by payment method",
			},
			[]string{"payment_method"},
		),
		OrderCreateFailed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_create_failed_total",
				Help:      "Order creation requests rejected by the backend",
			},
		),
		PaymentCreateFailed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_create_failed_total",
				Help:      "Payment creation failures after order creation succeeded",
			},
		),
		OrderValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value",
				Help:      "Submitted order value, in currency units",
				Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
			},
		),
		OrderItemCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_item_count",
				Help:      "Number of units in a submitted order",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),
		PaymentChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_checks_total",
				Help:      "Payment status checks, by reported status",
			},
			[]string{"status"},
		),
		PaymentApproved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_approved_total",
				Help:      "Payments confirmed approved, by payment method",
			},
			[]string{"payment_method"},
		),
		PaymentFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_failed_total",
				Help:      "Payments that reached a failed terminal status",
			},
			[]string{"status"},
		),
		BackendErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "backend_errors_total",
				Help:      "Backend API failures, by error code",
			},
			[]string{"code"},
		),
		BlingSyncs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "bling_syncs_total",
				Help:      "Order pushes to the Bling ERP, by result",
			},
			[]string{"result"},
		),
	}
}
