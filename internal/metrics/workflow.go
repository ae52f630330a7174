package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics counts order, payment and stock events.
type WorkflowMetrics struct {
	ordersCreated   prometheus.Counter
	ordersPaid      *prometheus.CounterVec
	stockRejections prometheus.Counter
	stockClamps     prometheus.Counter
	stockUnits      *prometheus.CounterVec
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
// A nil registerer yields a no-op instance.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "club_orders_created_total",
		Help: "Orders created.",
	})
	ordersPaid := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "club_orders_paid_total",
		Help: "Orders finalized as paid, by payment method.",
	}, []string{"method"})
	stockRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "club_stock_rejections_total",
		Help: "Requests rejected for insufficient stock.",
	})
	stockClamps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "club_stock_clamps_total",
		Help: "Decrements floored at zero under the clamp policy.",
	})
	stockUnits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "club_stock_units_moved_total",
		Help: "Units moved through the inventory ledger, by reason.",
	}, []string{"reason"})
	reg.MustRegister(ordersCreated, ordersPaid, stockRejections, stockClamps, stockUnits)
	return &WorkflowMetrics{
		ordersCreated:   ordersCreated,
		ordersPaid:      ordersPaid,
		stockRejections: stockRejections,
		stockClamps:     stockClamps,
		stockUnits:      stockUnits,
	}
}

func (m *WorkflowMetrics) OrderCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *WorkflowMetrics) OrderPaid(method string) {
	if m == nil || m.ordersPaid == nil {
		return
	}
	m.ordersPaid.WithLabelValues(normalizeLabel(method)).Inc()
}

func (m *WorkflowMetrics) StockRejected() {
	if m == nil || m.stockRejections == nil {
		return
	}
	m.stockRejections.Inc()
}

func (m *WorkflowMetrics) StockClamped() {
	if m == nil || m.stockClamps == nil {
		return
	}
	m.stockClamps.Inc()
}

// StockMoved records units leaving (negative) or entering (positive) stock.
func (m *WorkflowMetrics) StockMoved(reason string, units int) {
	if m == nil || m.stockUnits == nil {
		return
	}
	if units < 0 {
		units = -units
	}
	m.stockUnits.WithLabelValues(normalizeLabel(reason)).Add(float64(units))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
