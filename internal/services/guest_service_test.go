package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightclub_backoffice/internal/config"
	"nightclub_backoffice/internal/models"
)

func strPtr(s string) *string { return &s }

func TestGuestCRUD(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()

	guest, err := env.guests.CreateGuest(ctx, GuestRequest{
		FullName:    "  Dana Reyes ",
		Phone:       strPtr("+1 555 0100"),
		Email:       strPtr("dana@example.com"),
		DateOfBirth: strPtr("1994-03-12"),
		VIP:         true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dana Reyes", guest.FullName)
	require.NotNil(t, guest.DateOfBirth)
	assert.Equal(t, time.March, guest.DateOfBirth.Month())

	guests, total, err := env.guests.ListGuests(ctx, 1, 10, strPtr("REYES"))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, guest.ID, guests[0].ID)

	updated, err := env.guests.UpdateGuest(ctx, guest.ID, GuestRequest{FullName: "Dana R.", Phone: strPtr("+1 555 0100")})
	require.NoError(t, err)
	assert.False(t, updated.VIP)
	assert.Nil(t, updated.Email)

	require.NoError(t, env.guests.DeleteGuest(ctx, guest.ID))
	_, err = env.guests.GetGuest(ctx, guest.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCreateGuest_Validation(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)

	_, err := env.guests.CreateGuest(context.Background(), GuestRequest{
		FullName:    "D",
		Email:       strPtr("not-an-email"),
		DateOfBirth: strPtr("12/03/1994"),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be at least 2 characters", verr.Fields["full_name"])
	assert.Equal(t, "must be a valid email", verr.Fields["email"])
	assert.Equal(t, "must be a date in YYYY-MM-DD format", verr.Fields["date_of_birth"])
}

func TestCreateGuest_DuplicatePhoneConflict(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()

	_, err := env.guests.CreateGuest(ctx, GuestRequest{FullName: "First Guest", Phone: strPtr("555-1234")})
	require.NoError(t, err)
	_, err = env.guests.CreateGuest(ctx, GuestRequest{FullName: "Second Guest", Phone: strPtr("555-1234")})
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestDeleteGuest_ReferencedConflict(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 10, "20.00")

	guest, err := env.guests.CreateGuest(ctx, GuestRequest{FullName: "Regular Guest"})
	require.NoError(t, err)
	order, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		ClientID: guest.ID,
		Items:    []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, order.ClientName)
	assert.Equal(t, "Regular Guest", *order.ClientName)

	err = env.guests.DeleteGuest(ctx, guest.ID)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Reason, "1 order(s)")
}

func TestPayments(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()

	guest, err := env.guests.CreateGuest(ctx, GuestRequest{FullName: "Cover Charge"})
	require.NoError(t, err)

	payment, err := env.payments.CreatePayment(ctx, CreatePaymentRequest{
		GuestID:       guest.ID,
		Amount:        decimal.RequireFromString("15.00"),
		PaymentMethod: "Cash",
		Items:         strPtr("Door entry"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, models.PaymentMethodCash, payment.PaymentMethod)

	updated, err := env.payments.UpdatePaymentStatus(ctx, payment.ID, UpdatePaymentStatusRequest{Status: "refunded"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, updated.Status)

	refunded := models.PaymentStatusRefunded
	list, total, err := env.payments.ListPayments(ctx, models.PaymentFilters{Status: &refunded, GuestID: &guest.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, payment.ID, list[0].ID)

	_, err = env.payments.CreatePayment(ctx, CreatePaymentRequest{Amount: decimal.Zero, PaymentMethod: "cash"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be greater than 0", verr.Fields["amount"])

	_, err = env.payments.CreatePayment(ctx, CreatePaymentRequest{GuestID: "ghost", Amount: decimal.NewFromInt(5), PaymentMethod: "cash"})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = env.payments.UpdatePaymentStatus(ctx, "missing", UpdatePaymentStatusRequest{Status: "failed"})
	assert.ErrorAs(t, err, &nf)
}

func TestDashboardSummary(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	vodka := env.createItem(t, "Vodka", 10, "20.00")
	env.createItem(t, "Bitters", 1, "9.00")

	open, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	toPay, err := env.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{InventoryID: vodka.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	_, _, err = env.orders.MarkOrderAsPaid(ctx, toPay.ID, MarkOrderPaidRequest{PaymentMethod: "card"})
	require.NoError(t, err)
	_, err = env.guests.CreateGuest(ctx, GuestRequest{FullName: "Someone"})
	require.NoError(t, err)

	summary, err := env.reports.GetDashboardSummary(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PendingOrders)
	assertDecimal(t, open.TotalAmount.String(), summary.OpenOrdersValue)
	assert.Equal(t, 1, summary.PaymentsToday)
	assertDecimal(t, "40.00", summary.RevenueToday)
	assert.Equal(t, 1, summary.LowStockItems)
	assert.Equal(t, 1, summary.TotalGuests)
}
