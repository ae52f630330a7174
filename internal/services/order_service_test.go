package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"nightclub_backoffice/internal/config"
	"nightclub_backoffice/internal/models"
)

func TestCreateOrder_InsufficientStockPersistsNothing(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	vodka := env.createItem(t, "Vodka", 3, "20.00")

	_, err := env.orders.CreateOrder(context.Background(), CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 5}},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Zero(t, env.count(t, "orders"))
	assert.Zero(t, env.count(t, "order_items"))
}

func TestCreateOrder_CapturesCostAndTotal(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	vodka := env.createItem(t, "Vodka", 10, "20.00")
	clientTotal := decimal.NewFromInt(999)

	order, err := env.orders.CreateOrder(context.Background(), CreateOrderRequest{
		ClientID:    "anonymous",
		Items:       []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 2}},
		TotalAmount: &clientTotal,
	})
	require.NoError(t, err)

	assert.Nil(t, order.ClientID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assertDecimal(t, "20.00", order.Items[0].UnitPrice)
	assertDecimal(t, "40.00", order.Items[0].Subtotal)
	assertDecimal(t, "40.00", order.TotalAmount)
	assert.Equal(t, 10, env.stockOf(t, vodka.ID), "creating an order does not deduct stock")
}

func TestCreateOrder_DuplicateLinesShareStock(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	vodka := env.createItem(t, "Vodka", 4, "20.00")

	_, err := env.orders.CreateOrder(context.Background(), CreateOrderRequest{
		Items: []CreateOrderItemRequest{
			{InventoryID: vodka.ID, Quantity: 3},
			{InventoryID: vodka.ID, Quantity: 2},
		},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 4, stockErr.Available)
}

func TestCreateOrder_CollectsEveryShortfall(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	vodka := env.createItem(t, "Vodka", 1, "20.00")
	gin := env.createItem(t, "Gin", 1, "18.00")

	_, err := env.orders.CreateOrder(context.Background(), CreateOrderRequest{
		Items: []CreateOrderItemRequest{
			{InventoryID: vodka.ID, Quantity: 2},
			{InventoryID: gin.ID, Quantity: 2},
			{InventoryID: "missing", Quantity: 1},
		},
	})
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	var stockErr *InsufficientStockError
	assert.ErrorAs(t, errs[0], &stockErr)
	assert.ErrorAs(t, errs[1], &stockErr)
	var nf *NotFoundError
	assert.ErrorAs(t, errs[2], &nf)
}

func TestCreateOrder_Validation(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)

	_, err := env.orders.CreateOrder(context.Background(), CreateOrderRequest{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items")

	_, err = env.orders.CreateOrder(context.Background(), CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: "x", Quantity: 0}},
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be greater than 0", verr.Fields["items[0].quantity"])
}

func TestCreateOrder_HugeQuantitiesCannotWrap(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 3, "20.00")

	_, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{
			{InventoryID: vodka.ID, Quantity: math.MaxInt},
			{InventoryID: vodka.ID, Quantity: 1},
		},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be 100000 or less", verr.Fields["items[0].quantity"])

	_, err = env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{
			{InventoryID: vodka.ID, Quantity: MaxLineQuantity},
			{InventoryID: vodka.ID, Quantity: MaxLineQuantity},
		},
	})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2*MaxLineQuantity, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	assert.Zero(t, env.count(t, "orders"))
	assert.Zero(t, env.count(t, "order_items"))
}

func TestAddQuantity_Saturates(t *testing.T) {
	assert.Equal(t, 5, addQuantity(2, 3))
	assert.Equal(t, math.MaxInt, addQuantity(1, math.MaxInt))
	assert.Equal(t, math.MaxInt, addQuantity(math.MaxInt, math.MaxInt))
}

func TestCreateOrder_UnknownClient(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	vodka := env.createItem(t, "Vodka", 10, "20.00")

	_, err := env.orders.CreateOrder(context.Background(), CreateOrderRequest{
		ClientID: "ghost",
		Items:    []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 1}},
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "guest", nf.Resource)
}

func TestMarkOrderAsPaid_DeductsOnceAndRejectsRepeat(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 10, "20.00")
	order, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	amount := decimal.RequireFromString("40.00")
	paidOrder, payment, err := env.orders.MarkOrderAsPaid(ctx, order.ID, MarkOrderPaidRequest{PaymentMethod: "cash", Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, paidOrder.Status)
	require.NotNil(t, paidOrder.PaymentID)
	assert.Equal(t, payment.ID, *paidOrder.PaymentID)
	assertDecimal(t, "40.00", payment.Amount)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	require.NotNil(t, payment.Items)
	assert.Equal(t, "Order #"+order.ID, *payment.Items)
	assert.Equal(t, 8, env.stockOf(t, vodka.ID))

	_, _, err = env.orders.MarkOrderAsPaid(ctx, order.ID, MarkOrderPaidRequest{PaymentMethod: "cash", Amount: &amount})
	var paidErr *AlreadyPaidError
	require.ErrorAs(t, err, &paidErr)
	assert.Equal(t, payment.ID, paidErr.PaymentID)
	assert.Equal(t, 8, env.stockOf(t, vodka.ID))
	assert.Equal(t, 1, env.count(t, "payments"))

	sale := models.MovementReasonSale
	movements, _, err := env.inventory.ListMovements(ctx, models.MovementFilters{OrderID: &order.ID, Reason: &sale})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, -2, movements[0].QuantityChanged)
}

// The memory backend has a single connection, so these callers are serialized by the pool and
// only the sequential path is really exercised. order_service_postgres_test.go runs the same
// check against a live database where the claims truly race.
func TestMarkOrderAsPaid_ConcurrentCallersPayOnce(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	checkConcurrentPaymentsApplyOnce(t, env)
}

func checkConcurrentPaymentsApplyOnce(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka "+uuid.NewString(), 10, "20.00")
	order, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		paid     int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := env.orders.MarkOrderAsPaid(ctx, order.ID, MarkOrderPaidRequest{PaymentMethod: "card"})
			mu.Lock()
			defer mu.Unlock()
			var paidErr *AlreadyPaidError
			switch {
			case err == nil:
				paid++
			case errors.As(err, &paidErr):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, paid)
	assert.Equal(t, workers-1, rejected)
	assert.Equal(t, 8, env.stockOf(t, vodka.ID))

	payments, _, err := env.payments.ListPayments(ctx, models.PaymentFilters{})
	require.NoError(t, err)
	var forOrder int
	for _, p := range payments {
		if p.OrderID != nil && *p.OrderID == order.ID {
			forOrder++
		}
	}
	assert.Equal(t, 1, forOrder)

	sale := models.MovementReasonSale
	movements, _, err := env.inventory.ListMovements(ctx, models.MovementFilters{OrderID: &order.ID, Reason: &sale})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, -2, movements[0].QuantityChanged)
}

func TestMarkOrderAsPaid_DefaultsAmountToTotal(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	beer := env.createItem(t, "Beer", 10, "4.25")
	order, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: beer.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	zero := decimal.Zero
	_, payment, err := env.orders.MarkOrderAsPaid(ctx, order.ID, MarkOrderPaidRequest{PaymentMethod: "card", Amount: &zero})
	require.NoError(t, err)
	assertDecimal(t, "12.75", payment.Amount)
}

func TestMarkOrderAsPaid_ShortfallRollsBackEverything(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 10, "20.00")
	order, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = env.inventory.DecrementStock(ctx, vodka.ID, StockChangeRequest{Quantity: 9})
	require.NoError(t, err)

	_, _, err = env.orders.MarkOrderAsPaid(ctx, order.ID, MarkOrderPaidRequest{PaymentMethod: "cash"})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	reloaded, err := env.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)
	assert.Nil(t, reloaded.PaymentID)
	assert.Zero(t, env.count(t, "payments"))
	assert.Equal(t, 1, env.stockOf(t, vodka.ID))
}

func TestMarkOrderAsPaid_ClampPolicy(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyClamp)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 10, "20.00")
	order, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	_, err = env.inventory.DecrementStock(ctx, vodka.ID, StockChangeRequest{Quantity: 8})
	require.NoError(t, err)

	paid, _, err := env.orders.MarkOrderAsPaid(ctx, order.ID, MarkOrderPaidRequest{PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, paid.Status)
	assert.Equal(t, 0, env.stockOf(t, vodka.ID))

	reason := models.MovementReasonSale
	movements, _, err := env.inventory.ListMovements(ctx, models.MovementFilters{InventoryID: &vodka.ID, Reason: &reason})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, -2, movements[0].QuantityChanged)
}

func TestMarkOrderAsPaid_Errors(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 10, "20.00")

	_, _, err := env.orders.MarkOrderAsPaid(ctx, "missing", MarkOrderPaidRequest{PaymentMethod: "cash"})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, _, err = env.orders.MarkOrderAsPaid(ctx, "missing", MarkOrderPaidRequest{PaymentMethod: "bitcoin"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["payment_method"], "must be one of")

	order, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = env.orders.UpdateOrderStatus(ctx, order.ID, UpdateOrderStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	_, _, err = env.orders.MarkOrderAsPaid(ctx, order.ID, MarkOrderPaidRequest{PaymentMethod: "cash"})
	var transition *StatusTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, models.OrderStatusCancelled, transition.From)
	assert.Equal(t, 10, env.stockOf(t, vodka.ID))
}

func TestUpdateOrderStatus_ForwardOnly(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 10, "20.00")
	order, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := env.orders.UpdateOrderStatus(ctx, order.ID, UpdateOrderStatusRequest{Status: "delivered"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)

	_, err = env.orders.UpdateOrderStatus(ctx, order.ID, UpdateOrderStatusRequest{Status: "confirmed"})
	var transition *StatusTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, models.OrderStatusDelivered, transition.From)
	assert.Equal(t, models.OrderStatusConfirmed, transition.To)

	_, err = env.orders.UpdateOrderStatus(ctx, order.ID, UpdateOrderStatusRequest{Status: "shipped"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdateOrderStatus_CompletedFinalizesOrder(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 10, "20.00")
	order, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	paid, err := env.orders.UpdateOrderStatus(ctx, order.ID, UpdateOrderStatusRequest{Status: "Completed", PaymentMethod: "card"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, paid.Status)
	assert.Equal(t, 7, env.stockOf(t, vodka.ID))

	payments, _, err := env.payments.ListPayments(ctx, models.PaymentFilters{})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentMethodCard, payments[0].PaymentMethod)
	assertDecimal(t, "60.00", payments[0].Amount)

	_, err = env.orders.UpdateOrderStatus(ctx, order.ID, UpdateOrderStatusRequest{Status: "paid"})
	var paidErr *AlreadyPaidError
	assert.ErrorAs(t, err, &paidErr)
	assert.Equal(t, 7, env.stockOf(t, vodka.ID))
}

func TestAddAndRemoveOrderItem_KeepTotalInSync(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 5, "20.00")
	mixer := env.createItem(t, "Cola", 50, "1.10")
	order, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	special := decimal.RequireFromString("0.95")
	order, err = env.orders.AddOrderItem(ctx, order.ID, AddOrderItemRequest{InventoryID: mixer.ID, Quantity: 3, UnitPrice: &special})
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assertDecimal(t, "42.85", order.TotalAmount)

	_, err = env.orders.AddOrderItem(ctx, order.ID, AddOrderItemRequest{InventoryID: vodka.ID, Quantity: 4})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Available)

	var mixerLine string
	for _, it := range order.Items {
		if it.InventoryID == mixer.ID {
			mixerLine = it.ID
		}
	}
	order, err = env.orders.RemoveOrderItem(ctx, order.ID, mixerLine)
	require.NoError(t, err)
	assertDecimal(t, "40.00", order.TotalAmount)

	sum := decimal.Zero
	for _, it := range order.Items {
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, sum.Equal(order.TotalAmount))

	_, err = env.orders.RemoveOrderItem(ctx, order.ID, "missing")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestAddOrderItem_HugeQuantityCannotWrap(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 3, "20.00")
	order, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = env.orders.AddOrderItem(ctx, order.ID, AddOrderItemRequest{InventoryID: vodka.ID, Quantity: math.MaxInt})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be 100000 or less", verr.Fields["quantity"])

	_, err = env.orders.AddOrderItem(ctx, order.ID, AddOrderItemRequest{InventoryID: vodka.ID, Quantity: MaxLineQuantity})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, MaxLineQuantity, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	order, err = env.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assertDecimal(t, "20.00", order.TotalAmount)
}

func TestAddOrderItem_TerminalOrderConflict(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 10, "20.00")
	order, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, _, err = env.orders.MarkOrderAsPaid(ctx, order.ID, MarkOrderPaidRequest{PaymentMethod: "cash"})
	require.NoError(t, err)

	_, err = env.orders.AddOrderItem(ctx, order.ID, AddOrderItemRequest{InventoryID: vodka.ID, Quantity: 1})
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestDeleteOrder(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 10, "20.00")
	order, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, env.orders.DeleteOrder(ctx, order.ID))
	assert.Zero(t, env.count(t, "orders"))
	assert.Zero(t, env.count(t, "order_items"))

	err = env.orders.DeleteOrder(ctx, order.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestListOrders_Filters(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 10, "20.00")
	for i := 0; i < 3; i++ {
		_, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
			Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	pending := models.OrderStatusPending
	orders, total, err := env.orders.ListOrders(ctx, models.OrderFilters{Status: &pending, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, orders, 2)

	bad := "18-10-2026"
	_, _, err = env.orders.ListOrders(ctx, models.OrderFilters{Date: &bad})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
