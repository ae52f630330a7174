package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightclub_backoffice/internal/config"
	"nightclub_backoffice/internal/database"
	"nightclub_backoffice/internal/metrics"
	"nightclub_backoffice/internal/models"
	"nightclub_backoffice/internal/repositories"
)

type testEnv struct {
	db        *sql.DB
	ledger    *StockLedger
	inventory InventoryService
	orders    OrderService
	templates TicketTemplateService
	guests    GuestService
	payments  PaymentService
	reports   ReportService
}

func newTestEnv(t *testing.T, policy string) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, config.StorageConfig{Backend: config.StorageBackendMemory})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, config.StorageBackendMemory, "up"))

	return newTestEnvOn(db, policy)
}

// newTestEnvOn wires every service over an already migrated database.
func newTestEnvOn(db *sql.DB, policy string) *testEnv {
	inventoryRepo := repositories.NewInventoryRepository()
	movementRepo := repositories.NewInventoryMovementRepository()
	orderRepo := repositories.NewOrderRepository()
	paymentRepo := repositories.NewPaymentRepository()
	guestRepo := repositories.NewGuestRepository()
	templateRepo := repositories.NewTicketTemplateRepository()

	m := metrics.NewWorkflowMetrics(prometheus.NewRegistry())
	ledger := NewStockLedger(inventoryRepo, movementRepo, policy, m)

	return &testEnv{
		db:        db,
		ledger:    ledger,
		inventory: NewInventoryService(inventoryRepo, movementRepo, ledger, db),
		orders:    NewOrderService(orderRepo, inventoryRepo, paymentRepo, guestRepo, ledger, m, db),
		templates: NewTicketTemplateService(templateRepo, db),
		guests:    NewGuestService(guestRepo, db),
		payments:  NewPaymentService(paymentRepo, guestRepo, db),
		reports:   NewReportService(orderRepo, paymentRepo, inventoryRepo, guestRepo, db),
	}
}

func (e *testEnv) createItem(t *testing.T, name string, stock int, cost string) *models.InventoryItem {
	t.Helper()
	item, err := e.inventory.CreateItem(context.Background(), InventoryItemRequest{
		Name:      name,
		Category:  "spirits",
		Stock:     stock,
		Unit:      "bottle",
		Threshold: 2,
		Cost:      decimal.RequireFromString(cost),
	})
	require.NoError(t, err)
	return item
}

func (e *testEnv) stockOf(t *testing.T, id string) int {
	t.Helper()
	item, err := e.inventory.GetItem(context.Background(), id)
	require.NoError(t, err)
	return item.Stock
}

func (e *testEnv) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}
