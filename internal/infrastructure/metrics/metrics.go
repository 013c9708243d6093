package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics covers the payment core: ledger activity, callback
// processing and reconciliation sweeps.
type PaymentMetrics struct {
	PaymentsCreatedTotal    prometheus.CounterVec
	CallbacksProcessedTotal prometheus.CounterVec
	GatewayCallDuration     prometheus.HistogramVec
	GatewayErrorsTotal      prometheus.CounterVec
	SweepsTotal             prometheus.Counter
	SweptOrdersTotal        prometheus.Counter
	PaymentTransitionsTotal prometheus.CounterVec
}

func NewPaymentMetrics() *PaymentMetrics {
	return &PaymentMetrics{
		PaymentsCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_created_total",
				Help: "Payment records created by the ledger",
			},
			[]string{"method", "scene"},
		),

		CallbacksProcessedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_callbacks_processed_total",
				Help: "Provider callbacks by provider and outcome",
			},
			[]string{"provider", "result"},
		),

		GatewayCallDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payment_gateway_call_duration_seconds",
				Help:    "Provider API round-trip time",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"provider", "operation"},
		),

		GatewayErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_gateway_errors_total",
				Help: "Failed provider API calls",
			},
			[]string{"provider", "operation"},
		),

		SweepsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_sweeps_total",
				Help: "Reconciliation sweep passes",
			},
		),

		SweptOrdersTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_swept_orders_total",
				Help: "Overdue orders closed by the sweeper",
			},
		),

		PaymentTransitionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_transitions_total",
				Help: "Payment status transitions applied",
			},
			[]string{"from", "to"},
		),
	}
}

func (m *PaymentMetrics) RecordPaymentCreated(method, scene string) {
	m.PaymentsCreatedTotal.WithLabelValues(method, scene).Inc()
}

func (m *PaymentMetrics) RecordCallback(provider, result string) {
	m.CallbacksProcessedTotal.WithLabelValues(provider, result).Inc()
}

func (m *PaymentMetrics) RecordGatewayCall(provider, operation string, seconds float64, failed bool) {
	m.GatewayCallDuration.WithLabelValues(provider, operation).Observe(seconds)
	if failed {
		m.GatewayErrorsTotal.WithLabelValues(provider, operation).Inc()
	}
}

func (m *PaymentMetrics) RecordSweep(closedOrders int) {
	m.SweepsTotal.Inc()
	m.SweptOrdersTotal.Add(float64(closedOrders))
}

func (m *PaymentMetrics) RecordTransition(from, to string) {
	m.PaymentTransitionsTotal.WithLabelValues(from, to).Inc()
}
