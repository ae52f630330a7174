package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWorkflowMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkflowMetrics(reg)

	m.OrderCreated()
	m.OrderCreated()
	m.OrderPaid("cash")
	m.OrderPaid("")
	m.StockRejected()
	m.StockMoved("sale", -3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersPaid.WithLabelValues("cash")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersPaid.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stockRejections))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.stockUnits.WithLabelValues("sale")))
}

func TestWorkflowMetrics_NilSafe(t *testing.T) {
	var m *WorkflowMetrics
	assert.NotPanics(t, func() {
		m.OrderCreated()
		m.OrderPaid("card")
		m.StockRejected()
		m.StockClamped()
		m.StockMoved("restock", 4)
	})

	noop := NewWorkflowMetrics(nil)
	assert.NotPanics(t, func() { noop.OrderCreated() })
}
