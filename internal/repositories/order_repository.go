package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"nightclub_backoffice/internal/models"

	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	// Order methods
	CreateOrder(ctx context.Context, executor SQLExecutor, order *models.Order) error
	GetOrderByID(ctx context.Context, executor SQLExecutor, orderID string) (*models.Order, error)
	GetOrders(ctx context.Context, executor SQLExecutor, filters models.OrderFilters) ([]models.Order, int, error)
	// LockOrder touches the order row and returns its current status.
	LockOrder(ctx context.Context, executor SQLExecutor, orderID string) (string, error)
	// TransitionStatus moves the order to newStatus only while it is in one of fromStatuses.
	// It reports false when the row is missing or in another status.
	TransitionStatus(ctx context.Context, executor SQLExecutor, orderID, newStatus string, fromStatuses []string) (bool, error)
	SetPaymentID(ctx context.Context, executor SQLExecutor, orderID, paymentID string) error
	// UpdateOrderTotal recomputes total_amount from the current line items and persists it.
	UpdateOrderTotal(ctx context.Context, executor SQLExecutor, orderID string) (decimal.Decimal, error)
	OpenOrdersSummary(ctx context.Context, executor SQLExecutor) (int, decimal.Decimal, error)
	DeleteOrder(ctx context.Context, executor SQLExecutor, orderID string) error

	// OrderItem methods
	CreateOrderItem(ctx context.Context, executor SQLExecutor, item *models.OrderItem) error
	GetOrderItemsByOrderID(ctx context.Context, executor SQLExecutor, orderID string) ([]models.OrderItem, error)
	SumOrderedQuantity(ctx context.Context, executor SQLExecutor, orderID, inventoryID string) (int, error)
	DeleteOrderItem(ctx context.Context, executor SQLExecutor, itemID, orderID string) error
	DeleteOrderItemsByOrderID(ctx context.Context, executor SQLExecutor, orderID string) (int64, error)
}

type orderRepository struct{}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository() OrderRepository {
	return &orderRepository{}
}

// --- Order Methods ---

func (r *orderRepository) CreateOrder(ctx context.Context, executor SQLExecutor, order *models.Order) error {
	query := `INSERT INTO orders
	            (id, client_id, status, order_date, notes, total_amount, payment_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now().UTC()
	if order.OrderDate.IsZero() {
		order.OrderDate = now
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	_, err := executor.ExecContext(ctx, query,
		order.ID, order.ClientID, order.Status, order.OrderDate, order.Notes,
		order.TotalAmount, order.PaymentID, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return classify(err, "creating order")
	}
	return nil
}

const orderSelect = `
        SELECT
            o.id, o.client_id, o.status, o.order_date, o.notes, o.total_amount, o.payment_id,
            o.created_at, o.updated_at,
            g.full_name AS client_name`

func scanOrder(s scanner, o *models.Order, extra ...interface{}) error {
	var clientID, notes, paymentID, clientName sql.NullString
	dest := []interface{}{
		&o.ID, &clientID, &o.Status, &o.OrderDate, &notes, &o.TotalAmount, &paymentID,
		&o.CreatedAt, &o.UpdatedAt, &clientName,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	if clientID.Valid {
		o.ClientID = &clientID.String
	}
	if notes.Valid {
		o.Notes = &notes.String
	}
	if paymentID.Valid {
		o.PaymentID = &paymentID.String
	}
	if clientName.Valid {
		o.ClientName = &clientName.String
	}
	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, executor SQLExecutor, orderID string) (*models.Order, error) {
	order := &models.Order{}
	query := orderSelect + `
        FROM orders o
        LEFT JOIN guests g ON o.client_id = g.id
        WHERE o.id = $1`
	err := scanOrder(executor.QueryRowContext(ctx, query, orderID), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %s: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrders(ctx context.Context, executor SQLExecutor, filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(orderSelect + `,
            COUNT(*) OVER() AS total_count
        FROM orders o
        LEFT JOIN guests g ON o.client_id = g.id
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.ClientID != nil && *filters.ClientID != "" {
		conditions = append(conditions, fmt.Sprintf("o.client_id = $%d", argCounter))
		args = append(args, *filters.ClientID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.Date != nil && *filters.Date != "" {
		parsedDate, err := time.Parse("2006-01-02", *filters.Date)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid date filter format: %s, expected YYYY-MM-DD", *filters.Date)
		}
		startOfDay := time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, time.UTC)
		conditions = append(conditions, fmt.Sprintf("o.order_date >= $%d AND o.order_date < $%d", argCounter, argCounter+1))
		args = append(args, startOfDay, startOfDay.AddDate(0, 0, 1))
		argCounter += 2
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY o.order_date DESC, o.id")

	clause, args := pageClause(filters.Page, filters.PageSize, argCounter, args)
	queryBuilder.WriteString(clause)

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

func (r *orderRepository) LockOrder(ctx context.Context, executor SQLExecutor, orderID string) (string, error) {
	var status string
	query := `UPDATE orders SET updated_at = $1 WHERE id = $2 RETURNING status`
	err := executor.QueryRowContext(ctx, query, time.Now().UTC(), orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: locking order ID %s: %v", ErrDatabaseError, orderID, err)
	}
	return status, nil
}

func (r *orderRepository) TransitionStatus(ctx context.Context, executor SQLExecutor, orderID, newStatus string, fromStatuses []string) (bool, error) {
	if len(fromStatuses) == 0 {
		return false, nil
	}
	placeholders := make([]string, len(fromStatuses))
	args := []interface{}{newStatus, time.Now().UTC(), orderID}
	for i, s := range fromStatuses {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, s)
	}
	query := `UPDATE orders SET status = $1, updated_at = $2
	          WHERE id = $3 AND status IN (` + strings.Join(placeholders, ", ") + `)`

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, classify(err, fmt.Sprintf("updating order status for ID %s", orderID))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for order status update ID %s: %v", ErrDatabaseError, orderID, err)
	}
	return n == 1, nil
}

func (r *orderRepository) SetPaymentID(ctx context.Context, executor SQLExecutor, orderID, paymentID string) error {
	query := `UPDATE orders SET payment_id = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, paymentID, time.Now().UTC(), orderID)
	if err != nil {
		return classify(err, fmt.Sprintf("linking payment to order ID %s", orderID))
	}
	return rowsAffected(result, "linking payment to order ID "+orderID)
}

func (r *orderRepository) UpdateOrderTotal(ctx context.Context, executor SQLExecutor, orderID string) (decimal.Decimal, error) {
	rows, err := executor.QueryContext(ctx, `SELECT subtotal FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: reading subtotals for order ID %s: %v", ErrDatabaseError, orderID, err)
	}
	total := decimal.Zero
	for rows.Next() {
		var subtotal decimal.Decimal
		if err := rows.Scan(&subtotal); err != nil {
			rows.Close()
			return decimal.Zero, fmt.Errorf("%w: scanning subtotal for order ID %s: %v", ErrDatabaseError, orderID, err)
		}
		total = total.Add(subtotal)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return decimal.Zero, fmt.Errorf("%w: iterating subtotals for order ID %s: %v", ErrDatabaseError, orderID, err)
	}
	rows.Close()

	total = total.Round(2)
	result, err := executor.ExecContext(ctx,
		`UPDATE orders SET total_amount = $1, updated_at = $2 WHERE id = $3`,
		total, time.Now().UTC(), orderID)
	if err != nil {
		return decimal.Zero, classify(err, fmt.Sprintf("updating total for order ID %s", orderID))
	}
	if err := rowsAffected(result, "updating total for order ID "+orderID); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *orderRepository) OpenOrdersSummary(ctx context.Context, executor SQLExecutor) (int, decimal.Decimal, error) {
	rows, err := executor.QueryContext(ctx,
		`SELECT total_amount FROM orders WHERE status IN ($1, $2, $3)`,
		models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusDelivered)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("%w: querying open orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	count := 0
	value := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return 0, decimal.Zero, fmt.Errorf("%w: scanning open order total: %v", ErrDatabaseError, err)
		}
		count++
		value = value.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return 0, decimal.Zero, fmt.Errorf("%w: iterating open orders: %v", ErrDatabaseError, err)
	}
	return count, value, nil
}

func (r *orderRepository) DeleteOrder(ctx context.Context, executor SQLExecutor, orderID string) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return classify(err, fmt.Sprintf("deleting order ID %s", orderID))
	}
	return rowsAffected(result, "deleting order ID "+orderID)
}

// --- OrderItem Methods ---

func (r *orderRepository) CreateOrderItem(ctx context.Context, executor SQLExecutor, item *models.OrderItem) error {
	query := `INSERT INTO order_items
	            (id, order_id, inventory_id, quantity, unit_price, subtotal, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	_, err := executor.ExecContext(ctx, query,
		item.ID, item.OrderID, item.InventoryID, item.Quantity, item.UnitPrice, item.Subtotal, item.CreatedAt,
	)
	if err != nil {
		return classify(err, fmt.Sprintf("creating order item for order ID %s", item.OrderID))
	}
	return nil
}

func (r *orderRepository) GetOrderItemsByOrderID(ctx context.Context, executor SQLExecutor, orderID string) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := `
		SELECT
		    oi.id, oi.order_id, oi.inventory_id, oi.quantity, oi.unit_price, oi.subtotal, oi.created_at,
		    i.name AS inventory_name
		FROM order_items oi
		JOIN inventory i ON oi.inventory_id = i.id
		WHERE oi.order_id = $1
		ORDER BY oi.created_at, oi.id`

	rows, err := executor.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items for order ID %s: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.InventoryID, &item.Quantity, &item.UnitPrice, &item.Subtotal, &item.CreatedAt,
			&item.InventoryName,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning order item for order ID %s: %v", ErrDatabaseError, orderID, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows for order ID %s: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}

func (r *orderRepository) SumOrderedQuantity(ctx context.Context, executor SQLExecutor, orderID, inventoryID string) (int, error) {
	var n int
	query := `SELECT COALESCE(SUM(quantity), 0) FROM order_items WHERE order_id = $1 AND inventory_id = $2`
	if err := executor.QueryRowContext(ctx, query, orderID, inventoryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: summing quantity of item %s on order %s: %v", ErrDatabaseError, inventoryID, orderID, err)
	}
	return n, nil
}

func (r *orderRepository) DeleteOrderItem(ctx context.Context, executor SQLExecutor, itemID, orderID string) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM order_items WHERE id = $1 AND order_id = $2`, itemID, orderID)
	if err != nil {
		return classify(err, fmt.Sprintf("deleting order item ID %s", itemID))
	}
	return rowsAffected(result, "deleting order item ID "+itemID)
}

func (r *orderRepository) DeleteOrderItemsByOrderID(ctx context.Context, executor SQLExecutor, orderID string) (int64, error) {
	result, err := executor.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting order items for order ID %s: %v", ErrDatabaseError, orderID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for deleting order items for order ID %s: %v", ErrDatabaseError, orderID, err)
	}
	return n, nil
}
