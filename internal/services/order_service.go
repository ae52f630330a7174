package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"nightclub_backoffice/internal/metrics"
	"nightclub_backoffice/internal/models"
	"nightclub_backoffice/internal/repositories"
	"nightclub_backoffice/pkg/utils"
)

// anonymousClient is the placeholder the front desk sends for walk-in guests.
const anonymousClient = "anonymous"

// MaxLineQuantity bounds a single order line so subtotals fit NUMERIC(12,2).
const MaxLineQuantity = 100000

// --- Data Transfer Objects (DTOs) ---

// CreateOrderItemRequest is used for creating individual order items.
type CreateOrderItemRequest struct {
	InventoryID string `json:"inventory_id" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gt=0,lte=100000"`
}

// CreateOrderRequest is used for creating a new order.
// TotalAmount is accepted for compatibility and ignored; the total is always derived from the items.
type CreateOrderRequest struct {
	ClientID    string                   `json:"client_id"`
	Notes       *string                  `json:"notes"`
	Items       []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalAmount *decimal.Decimal         `json:"total_amount"`
}

// AddOrderItemRequest adds one line to an open order. UnitPrice defaults to the item's cost.
type AddOrderItemRequest struct {
	InventoryID string           `json:"inventory_id" validate:"required"`
	Quantity    int              `json:"quantity" validate:"gt=0,lte=100000"`
	UnitPrice   *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
}

// UpdateOrderStatusRequest is used for updating the status of an order.
type UpdateOrderStatusRequest struct {
	Status        string `json:"status" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=cash card transfer other"`
}

// MarkOrderPaidRequest finalizes an order. Amount omitted or zero means the order total.
type MarkOrderPaidRequest struct {
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=cash card transfer other"`
	Amount        *decimal.Decimal `json:"amount" validate:"omitempty,gte=0"`
}

// --- OrderService Interface ---
type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error)
	AddOrderItem(ctx context.Context, orderID string, req AddOrderItemRequest) (*models.Order, error)
	RemoveOrderItem(ctx context.Context, orderID, itemID string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, req UpdateOrderStatusRequest) (*models.Order, error)
	MarkOrderAsPaid(ctx context.Context, orderID string, req MarkOrderPaidRequest) (*models.Order, *models.Payment, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

// --- orderService Implementation ---
type orderService struct {
	orderRepo     repositories.OrderRepository
	inventoryRepo repositories.InventoryRepository
	paymentRepo   repositories.PaymentRepository
	guestRepo     repositories.GuestRepository
	ledger        *StockLedger
	metrics       *metrics.WorkflowMetrics
	db            *sql.DB // For managing transactions
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	or repositories.OrderRepository,
	ir repositories.InventoryRepository,
	pr repositories.PaymentRepository,
	gr repositories.GuestRepository,
	ledger *StockLedger,
	m *metrics.WorkflowMetrics,
	db *sql.DB,
) OrderService {
	return &orderService{
		orderRepo:     or,
		inventoryRepo: ir,
		paymentRepo:   pr,
		guestRepo:     gr,
		ledger:        ledger,
		metrics:       m,
		db:            db,
	}
}

// --- Method Implementations ---

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	for i := range req.Items {
		req.Items[i].InventoryID = strings.TrimSpace(req.Items[i].InventoryID)
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var clientID *string
	if id := strings.TrimSpace(req.ClientID); id != "" && id != anonymousClient {
		clientID = &id
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistence("failed to start database transaction", err)
	}
	defer tx.Rollback()

	if clientID != nil {
		if _, err := s.guestRepo.GetGuestByID(ctx, tx, *clientID); err != nil {
			return nil, notFoundOr(err, "guest", *clientID, "failed to verify client")
		}
	}

	// Duplicate lines for the same item are checked against stock as one quantity.
	requested := map[string]int{}
	var seen []string
	for _, line := range req.Items {
		if _, ok := requested[line.InventoryID]; !ok {
			seen = append(seen, line.InventoryID)
		}
		requested[line.InventoryID] = addQuantity(requested[line.InventoryID], line.Quantity)
	}

	items := make(map[string]*models.InventoryItem, len(seen))
	var checkErr error
	for _, id := range seen {
		item, err := s.inventoryRepo.GetItemByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				checkErr = multierr.Append(checkErr, &NotFoundError{Resource: "inventory item", ID: id})
				continue
			}
			return nil, persistence("failed to read inventory item", err)
		}
		items[id] = item
		if item.Stock < requested[id] {
			s.metrics.StockRejected()
			checkErr = multierr.Append(checkErr, &InsufficientStockError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Requested: requested[id],
				Available: item.Stock,
			})
		}
	}
	if checkErr != nil {
		return nil, checkErr
	}

	order := &models.Order{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		Status:      models.OrderStatusPending,
		Notes:       utils.TrimPtr(req.Notes),
		TotalAmount: decimal.Zero,
	}
	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, persistence("failed to create order", err)
	}

	for _, line := range req.Items {
		item := items[line.InventoryID]
		if err := s.insertLine(ctx, tx, order.ID, item, line.Quantity, item.Cost); err != nil {
			return nil, err
		}
	}
	if _, err := s.orderRepo.UpdateOrderTotal(ctx, tx, order.ID); err != nil {
		return nil, persistence("failed to compute order total", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, persistence("failed to commit order", err)
	}
	s.metrics.OrderCreated()
	utils.LogInfo("Order created", map[string]interface{}{"order_id": order.ID, "lines": len(req.Items)})

	return s.GetOrder(ctx, order.ID)
}

// addQuantity sums line quantities, saturating at math.MaxInt.
func addQuantity(total, quantity int) int {
	if quantity > math.MaxInt-total {
		return math.MaxInt
	}
	return total + quantity
}

func (s *orderService) insertLine(ctx context.Context, exec repositories.SQLExecutor, orderID string, item *models.InventoryItem, quantity int, unitPrice decimal.Decimal) error {
	unitPrice = unitPrice.Round(2)
	line := &models.OrderItem{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		InventoryID: item.ID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Subtotal:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}
	if err := s.orderRepo.CreateOrderItem(ctx, exec, line); err != nil {
		return persistence("failed to create order item", err)
	}
	return nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, s.db, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order", orderID, "failed to get order")
	}
	items, err := s.orderRepo.GetOrderItemsByOrderID(ctx, s.db, orderID)
	if err != nil {
		return nil, persistence("failed to get order items", err)
	}
	order.Items = items
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error) {
	if filters.Status != nil && *filters.Status != "" && !models.IsValidOrderStatus(*filters.Status) {
		return nil, 0, NewValidationError("status", "is not a valid order status")
	}
	if filters.Date != nil && *filters.Date != "" {
		if _, err := time.Parse("2006-01-02", *filters.Date); err != nil {
			return nil, 0, NewValidationError("date", "must be a date in YYYY-MM-DD format")
		}
	}
	orders, total, err := s.orderRepo.GetOrders(ctx, s.db, filters)
	if err != nil {
		return nil, 0, persistence("failed to list orders", err)
	}
	return orders, total, nil
}

// lockOpenOrder locks the order row and rejects terminal orders.
func (s *orderService) lockOpenOrder(ctx context.Context, tx *sql.Tx, orderID string) error {
	status, err := s.orderRepo.LockOrder(ctx, tx, orderID)
	if err != nil {
		return notFoundOr(err, "order", orderID, "failed to lock order")
	}
	if models.IsTerminalOrderStatus(status) {
		return &ConflictError{Resource: "order", Reason: fmt.Sprintf("order is %s and can no longer be modified", status)}
	}
	return nil
}

func (s *orderService) AddOrderItem(ctx context.Context, orderID string, req AddOrderItemRequest) (*models.Order, error) {
	req.InventoryID = strings.TrimSpace(req.InventoryID)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistence("failed to start database transaction", err)
	}
	defer tx.Rollback()

	if err := s.lockOpenOrder(ctx, tx, orderID); err != nil {
		return nil, err
	}
	item, err := s.inventoryRepo.GetItemByID(ctx, tx, req.InventoryID)
	if err != nil {
		return nil, notFoundOr(err, "inventory item", req.InventoryID, "failed to read inventory item")
	}
	already, err := s.orderRepo.SumOrderedQuantity(ctx, tx, orderID, item.ID)
	if err != nil {
		return nil, persistence("failed to read ordered quantity", err)
	}
	if req.Quantity > item.Stock-already {
		s.metrics.StockRejected()
		available := item.Stock - already
		if available < 0 {
			available = 0
		}
		return nil, &InsufficientStockError{
			ItemID:    item.ID,
			ItemName:  item.Name,
			Requested: req.Quantity,
			Available: available,
		}
	}

	unitPrice := item.Cost
	if req.UnitPrice != nil {
		unitPrice = *req.UnitPrice
	}
	if err := s.insertLine(ctx, tx, orderID, item, req.Quantity, unitPrice); err != nil {
		return nil, err
	}
	if _, err := s.orderRepo.UpdateOrderTotal(ctx, tx, orderID); err != nil {
		return nil, persistence("failed to compute order total", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, persistence("failed to commit order item", err)
	}
	return s.GetOrder(ctx, orderID)
}

// RemoveOrderItem drops a line from an open order. Stock is untouched because nothing was deducted yet.
func (s *orderService) RemoveOrderItem(ctx context.Context, orderID, itemID string) (*models.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistence("failed to start database transaction", err)
	}
	defer tx.Rollback()

	if err := s.lockOpenOrder(ctx, tx, orderID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.DeleteOrderItem(ctx, tx, itemID, orderID); err != nil {
		return nil, notFoundOr(err, "order item", itemID, "failed to remove order item")
	}
	if _, err := s.orderRepo.UpdateOrderTotal(ctx, tx, orderID); err != nil {
		return nil, persistence("failed to compute order total", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, persistence("failed to commit order item removal", err)
	}
	return s.GetOrder(ctx, orderID)
}

// UpdateOrderStatus moves an order forward through its lifecycle. Entering paid
// goes through the same finalization as MarkOrderAsPaid.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID string, req UpdateOrderStatusRequest) (*models.Order, error) {
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if req.Status == models.OrderStatusCompleted {
		req.Status = models.OrderStatusPaid
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !models.IsValidOrderStatus(req.Status) {
		return nil, NewValidationError("status", "must be one of: pending, confirmed, delivered, paid, cancelled")
	}

	if req.Status == models.OrderStatusPaid {
		method := req.PaymentMethod
		if method == "" {
			method = models.PaymentMethodOther
		}
		order, _, err := s.MarkOrderAsPaid(ctx, orderID, MarkOrderPaidRequest{PaymentMethod: method})
		return order, err
	}

	var from []string
	for _, st := range []string{models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusDelivered} {
		if models.CanTransitionOrder(st, req.Status) {
			from = append(from, st)
		}
	}
	ok, err := s.orderRepo.TransitionStatus(ctx, s.db, orderID, req.Status, from)
	if err != nil {
		return nil, persistence("failed to update order status", err)
	}
	if !ok {
		current, err := s.orderRepo.GetOrderByID(ctx, s.db, orderID)
		if err != nil {
			return nil, notFoundOr(err, "order", orderID, "failed to get order")
		}
		return nil, &StatusTransitionError{OrderID: orderID, From: current.Status, To: req.Status}
	}
	utils.LogInfo("Order status updated", map[string]interface{}{"order_id": orderID, "status": req.Status})
	return s.GetOrder(ctx, orderID)
}

func (s *orderService) MarkOrderAsPaid(ctx context.Context, orderID string, req MarkOrderPaidRequest) (*models.Order, *models.Payment, error) {
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if err := validateStruct(req); err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, persistence("failed to start database transaction", err)
	}
	defer tx.Rollback()

	payment, err := s.finalizeOrder(ctx, tx, orderID, req.PaymentMethod, req.Amount)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, persistence("failed to commit payment", err)
	}
	s.metrics.OrderPaid(req.PaymentMethod)
	utils.LogInfo("Order paid", map[string]interface{}{
		"order_id":   orderID,
		"payment_id": payment.ID,
		"amount":     payment.Amount.StringFixed(2),
		"method":     payment.PaymentMethod,
	})

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, payment, nil
}

// finalizeOrder claims the order for payment, records the payment, links it and
// deducts stock for every line, all on tx. Any error leaves tx to be rolled back.
func (s *orderService) finalizeOrder(ctx context.Context, tx *sql.Tx, orderID, method string, amount *decimal.Decimal) (*models.Payment, error) {
	claimed, err := s.orderRepo.TransitionStatus(ctx, tx, orderID, models.OrderStatusPaid, []string{
		models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusDelivered,
	})
	if err != nil {
		return nil, persistence("failed to claim order for payment", err)
	}
	if !claimed {
		current, err := s.orderRepo.GetOrderByID(ctx, tx, orderID)
		if err != nil {
			return nil, notFoundOr(err, "order", orderID, "failed to get order")
		}
		if current.Status == models.OrderStatusPaid {
			paid := &AlreadyPaidError{OrderID: orderID}
			if current.PaymentID != nil {
				paid.PaymentID = *current.PaymentID
			}
			return nil, paid
		}
		return nil, &StatusTransitionError{OrderID: orderID, From: current.Status, To: models.OrderStatusPaid}
	}

	order, err := s.orderRepo.GetOrderByID(ctx, tx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order", orderID, "failed to get order")
	}
	lines, err := s.orderRepo.GetOrderItemsByOrderID(ctx, tx, orderID)
	if err != nil {
		return nil, persistence("failed to get order items", err)
	}

	paid := order.TotalAmount
	if amount != nil && !amount.IsZero() {
		paid = *amount
	}
	description := "Order #" + orderID
	payment := &models.Payment{
		ID:            uuid.NewString(),
		GuestID:       order.ClientID,
		OrderID:       &order.ID,
		Amount:        paid.Round(2),
		PaymentMethod: method,
		Status:        models.PaymentStatusCompleted,
		Items:         &description,
	}
	if err := s.paymentRepo.CreatePayment(ctx, tx, payment); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, &AlreadyPaidError{OrderID: orderID}
		}
		return nil, persistence("failed to create payment", err)
	}
	if err := s.orderRepo.SetPaymentID(ctx, tx, orderID, payment.ID); err != nil {
		return nil, persistence("failed to link payment to order", err)
	}

	var stockErr error
	for _, line := range lines {
		_, err := s.ledger.Deduct(ctx, tx, line.InventoryID, line.Quantity, models.MovementReasonSale, &order.ID)
		if err == nil {
			continue
		}
		var shortfall *InsufficientStockError
		if errors.As(err, &shortfall) {
			stockErr = multierr.Append(stockErr, err)
			continue
		}
		return nil, err
	}
	if stockErr != nil {
		return nil, stockErr
	}
	return payment, nil
}

// DeleteOrder removes an order and its lines. Stock is not restored.
func (s *orderService) DeleteOrder(ctx context.Context, orderID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence("failed to start database transaction", err)
	}
	defer tx.Rollback()

	if _, err := s.orderRepo.LockOrder(ctx, tx, orderID); err != nil {
		return notFoundOr(err, "order", orderID, "failed to lock order")
	}
	if _, err := s.orderRepo.DeleteOrderItemsByOrderID(ctx, tx, orderID); err != nil {
		return persistence("failed to delete order items", err)
	}
	if err := s.orderRepo.DeleteOrder(ctx, tx, orderID); err != nil {
		return notFoundOr(err, "order", orderID, "failed to delete order")
	}
	if err := tx.Commit(); err != nil {
		return persistence("failed to commit order delete", err)
	}
	return nil
}
