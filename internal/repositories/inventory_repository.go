package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"nightclub_backoffice/internal/models"
)

// InventoryRepository defines the interface for inventory-related database operations.
type InventoryRepository interface {
	CreateItem(ctx context.Context, executor SQLExecutor, item *models.InventoryItem) error
	GetItemByID(ctx context.Context, executor SQLExecutor, id string) (*models.InventoryItem, error)
	GetItems(ctx context.Context, executor SQLExecutor, filters models.InventoryFilters) ([]models.InventoryItem, int, error)
	UpdateItem(ctx context.Context, executor SQLExecutor, item *models.InventoryItem) error
	DeleteItem(ctx context.Context, executor SQLExecutor, id string) error
	CountOrderReferences(ctx context.Context, executor SQLExecutor, id string) (int, error)
	CountLowStock(ctx context.Context, executor SQLExecutor) (int, error)

	// LockItem touches the row so concurrent writers on Postgres queue behind the
	// caller's transaction, and returns the stock it saw.
	LockItem(ctx context.Context, executor SQLExecutor, id string) (int, error)

	// DecrementStock subtracts quantity only if enough stock is on hand.
	// applied is false when the item is missing or short; stock is then unchanged.
	DecrementStock(ctx context.Context, executor SQLExecutor, id string, quantity int) (newStock int, applied bool, err error)
	// ClampDecrementStock subtracts quantity, flooring the result at zero.
	ClampDecrementStock(ctx context.Context, executor SQLExecutor, id string, quantity int) (int, error)
	// IncrementStock adds quantity and records the supplier order time.
	IncrementStock(ctx context.Context, executor SQLExecutor, id string, quantity int, orderedAt time.Time, supplier *string) (int, error)
}

type inventoryRepository struct{}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository() InventoryRepository {
	return &inventoryRepository{}
}

const inventoryColumns = `id, name, category, stock, unit, threshold, cost, supplier, last_ordered, created_at, updated_at`

func scanInventoryItem(s scanner, item *models.InventoryItem, extra ...interface{}) error {
	var supplier sql.NullString
	var lastOrdered sql.NullTime
	dest := []interface{}{
		&item.ID, &item.Name, &item.Category, &item.Stock, &item.Unit, &item.Threshold,
		&item.Cost, &supplier, &lastOrdered, &item.CreatedAt, &item.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	if supplier.Valid {
		item.Supplier = &supplier.String
	}
	if lastOrdered.Valid {
		t := lastOrdered.Time
		item.LastOrdered = &t
	}
	return nil
}

func (r *inventoryRepository) CreateItem(ctx context.Context, executor SQLExecutor, item *models.InventoryItem) error {
	query := `INSERT INTO inventory (` + inventoryColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}

	_, err := executor.ExecContext(ctx, query,
		item.ID, item.Name, item.Category, item.Stock, item.Unit, item.Threshold,
		item.Cost, item.Supplier, item.LastOrdered, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return classify(err, "creating inventory item")
	}
	return nil
}

func (r *inventoryRepository) GetItemByID(ctx context.Context, executor SQLExecutor, id string) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE id = $1`
	err := scanInventoryItem(executor.QueryRowContext(ctx, query, id), item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting inventory item by ID %s: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

func (r *inventoryRepository) GetItems(ctx context.Context, executor SQLExecutor, filters models.InventoryFilters) ([]models.InventoryItem, int, error) {
	items := []models.InventoryItem{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + inventoryColumns + `, COUNT(*) OVER() AS total_count FROM inventory`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.Category != nil && *filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCounter))
		args = append(args, *filters.Category)
		argCounter++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(COALESCE(supplier, '')) LIKE $%d)", argCounter, argCounter))
		args = append(args, "%"+strings.ToLower(*filters.Search)+"%")
		argCounter++
	}
	if filters.LowStock {
		conditions = append(conditions, "stock <= threshold")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY category ASC, name ASC")

	clause, args := pageClause(filters.Page, filters.PageSize, argCounter, args)
	queryBuilder.WriteString(clause)

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying inventory: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InventoryItem
		if err := scanInventoryItem(rows, &item, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning inventory item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating inventory rows: %v", ErrDatabaseError, err)
	}
	return items, totalCount, nil
}

func (r *inventoryRepository) UpdateItem(ctx context.Context, executor SQLExecutor, item *models.InventoryItem) error {
	query := `UPDATE inventory SET
	            name = $1, category = $2, stock = $3, unit = $4, threshold = $5,
	            cost = $6, supplier = $7, last_ordered = $8, updated_at = $9
	          WHERE id = $10`

	item.UpdatedAt = time.Now().UTC()
	result, err := executor.ExecContext(ctx, query,
		item.Name, item.Category, item.Stock, item.Unit, item.Threshold,
		item.Cost, item.Supplier, item.LastOrdered, item.UpdatedAt, item.ID,
	)
	if err != nil {
		return classify(err, fmt.Sprintf("updating inventory item ID %s", item.ID))
	}
	return rowsAffected(result, "updating inventory item ID "+item.ID)
}

func (r *inventoryRepository) DeleteItem(ctx context.Context, executor SQLExecutor, id string) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return classify(err, fmt.Sprintf("deleting inventory item ID %s", id))
	}
	return rowsAffected(result, "deleting inventory item ID "+id)
}

func (r *inventoryRepository) CountOrderReferences(ctx context.Context, executor SQLExecutor, id string) (int, error) {
	var n int
	err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_items WHERE inventory_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: counting order references for inventory item ID %s: %v", ErrDatabaseError, id, err)
	}
	return n, nil
}

func (r *inventoryRepository) CountLowStock(ctx context.Context, executor SQLExecutor) (int, error) {
	var n int
	err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory WHERE stock <= threshold`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: counting low stock items: %v", ErrDatabaseError, err)
	}
	return n, nil
}

func (r *inventoryRepository) LockItem(ctx context.Context, executor SQLExecutor, id string) (int, error) {
	var stock int
	query := `UPDATE inventory SET updated_at = $1 WHERE id = $2 RETURNING stock`
	err := executor.QueryRowContext(ctx, query, time.Now().UTC(), id).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: locking inventory item ID %s: %v", ErrDatabaseError, id, err)
	}
	return stock, nil
}

func (r *inventoryRepository) DecrementStock(ctx context.Context, executor SQLExecutor, id string, quantity int) (int, bool, error) {
	var newStock int
	query := `UPDATE inventory
	          SET stock = stock - $1, updated_at = $2
	          WHERE id = $3 AND stock >= $1
	          RETURNING stock`
	err := executor.QueryRowContext(ctx, query, quantity, time.Now().UTC(), id).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, classify(err, fmt.Sprintf("decrementing stock for item ID %s", id))
	}
	return newStock, true, nil
}

func (r *inventoryRepository) ClampDecrementStock(ctx context.Context, executor SQLExecutor, id string, quantity int) (int, error) {
	var newStock int
	query := `UPDATE inventory
	          SET stock = CASE WHEN stock >= $1 THEN stock - $1 ELSE 0 END, updated_at = $2
	          WHERE id = $3
	          RETURNING stock`
	err := executor.QueryRowContext(ctx, query, quantity, time.Now().UTC(), id).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, classify(err, fmt.Sprintf("clamping stock for item ID %s", id))
	}
	return newStock, nil
}

func (r *inventoryRepository) IncrementStock(ctx context.Context, executor SQLExecutor, id string, quantity int, orderedAt time.Time, supplier *string) (int, error) {
	var newStock int
	query := `UPDATE inventory
	          SET stock = stock + $1, last_ordered = $2, supplier = COALESCE($3, supplier), updated_at = $4
	          WHERE id = $5
	          RETURNING stock`
	err := executor.QueryRowContext(ctx, query, quantity, orderedAt, supplier, time.Now().UTC(), id).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, classify(err, fmt.Sprintf("restocking item ID %s", id))
	}
	return newStock, nil
}
