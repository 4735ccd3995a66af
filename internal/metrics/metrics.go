package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

type Metrics struct {
	CartMutations *prometheus.CounterVec
	OrdersPlaced  prometheus.Counter
	OrderTotal    prometheus.Histogram
	Logins        *prometheus.CounterVec
	Registrations *prometheus.CounterVec
	OutboxEvents  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation.",
		}, []string{"op"}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders confirmed.",
		}),
		OrderTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_total_amount",
			Help:      "Order totals at confirmation.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000},
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by result.",
		}, []string{"result"}),
		OutboxEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_total",
			Help:      "Outbox events handled by the publisher, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.CartMutations,
		m.OrdersPlaced,
		m.OrderTotal,
		m.Logins,
		m.Registrations,
		m.OutboxEvents,
	)
	return m
}

// NewUnregistered is for tests that only read the counters back.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
