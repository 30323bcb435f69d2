// Package metrics exposes Prometheus counters for the storefront. The
// metrics endpoint runs on its own listener, separate from the API port.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StoreMetrics collects the storefront's domain counters. A nil
// *StoreMetrics is valid and counts nothing, so callers never need to
// guard.
type StoreMetrics struct {
	ordersCreated     prometheus.Counter
	statusTransitions *prometheus.CounterVec
	invoicesGenerated prometheus.Counter
	cartOperations    *prometheus.CounterVec
}

// NewStoreMetrics registers the storefront counters with reg. Tests pass
// a fresh prometheus.NewRegistry to avoid duplicate registration.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_created_total",
			Help:      "Total number of orders created.",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "order_status_transitions_total",
			Help:      "Order lifecycle transitions by from/to status.",
		}, []string{"from", "to"}),
		invoicesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "invoices_generated_total",
			Help:      "Total number of invoice PDFs generated.",
		}),
		cartOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "cart_operations_total",
			Help:      "Cart mutations by operation.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.ordersCreated, m.statusTransitions, m.invoicesGenerated, m.cartOperations)
	return m
}

// IncOrdersCreated counts one created order.
func (m *StoreMetrics) IncOrdersCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncStatusTransition counts one lifecycle transition.
func (m *StoreMetrics) IncStatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// IncInvoicesGenerated counts one generated invoice.
func (m *StoreMetrics) IncInvoicesGenerated() {
	if m == nil {
		return
	}
	m.invoicesGenerated.Inc()
}

// IncCartOperation counts one cart mutation (add, update, remove, clear).
func (m *StoreMetrics) IncCartOperation(op string) {
	if m == nil {
		return
	}
	m.cartOperations.WithLabelValues(op).Inc()
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
