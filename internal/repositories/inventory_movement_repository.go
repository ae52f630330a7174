package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"nightclub_backoffice/internal/models"
)

// InventoryMovementRepository defines the interface for the stock audit trail.
type InventoryMovementRepository interface {
	CreateMovement(ctx context.Context, executor SQLExecutor, movement *models.InventoryMovement) error
	GetMovements(ctx context.Context, executor SQLExecutor, filters models.MovementFilters) ([]models.InventoryMovement, int, error)
}

type inventoryMovementRepository struct{}

// NewInventoryMovementRepository creates a new instance of InventoryMovementRepository.
func NewInventoryMovementRepository() InventoryMovementRepository {
	return &inventoryMovementRepository{}
}

// CreateMovement appends a movement, snapshotting the item name so the row outlives the item.
func (r *inventoryMovementRepository) CreateMovement(ctx context.Context, executor SQLExecutor, movement *models.InventoryMovement) error {
	query := `INSERT INTO inventory_movements
	          (id, inventory_id, inventory_name, quantity_changed, stock_after, reason, order_id, staff_id, note, created_at)
	          VALUES ($1, $2, (SELECT name FROM inventory WHERE id = $2), $3, $4, $5, $6, $7, $8, $9)`
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}

	_, err := executor.ExecContext(ctx, query,
		movement.ID, movement.InventoryID, movement.QuantityChanged, movement.StockAfter,
		movement.Reason, movement.OrderID, movement.StaffID, movement.Note, movement.CreatedAt,
	)
	if err != nil {
		return classify(err, "creating inventory movement")
	}
	return nil
}

func (r *inventoryMovementRepository) GetMovements(ctx context.Context, executor SQLExecutor, filters models.MovementFilters) ([]models.InventoryMovement, int, error) {
	movements := []models.InventoryMovement{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    im.id, im.inventory_id, im.quantity_changed, im.stock_after, im.reason,
	    im.order_id, im.staff_id, im.note, im.created_at,
	    im.inventory_name,
	    COUNT(*) OVER() AS total_count
	  FROM inventory_movements im`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.InventoryID != nil && *filters.InventoryID != "" {
		conditions = append(conditions, fmt.Sprintf("im.inventory_id = $%d", argCount))
		args = append(args, *filters.InventoryID)
		argCount++
	}
	if filters.Reason != nil && *filters.Reason != "" {
		conditions = append(conditions, fmt.Sprintf("im.reason = $%d", argCount))
		args = append(args, *filters.Reason)
		argCount++
	}
	if filters.OrderID != nil && *filters.OrderID != "" {
		conditions = append(conditions, fmt.Sprintf("im.order_id = $%d", argCount))
		args = append(args, *filters.OrderID)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY im.created_at DESC, im.id")
	clause, args := pageClause(filters.Page, filters.PageSize, argCount, args)
	queryBuilder.WriteString(clause)

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting inventory movements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var movement models.InventoryMovement
		var orderID, staffID, note sql.NullString

		if err := rows.Scan(
			&movement.ID, &movement.InventoryID, &movement.QuantityChanged, &movement.StockAfter, &movement.Reason,
			&orderID, &staffID, &note, &movement.CreatedAt,
			&movement.InventoryName,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning inventory movement: %v", ErrDatabaseError, err)
		}
		if orderID.Valid {
			movement.OrderID = &orderID.String
		}
		if staffID.Valid {
			movement.StaffID = &staffID.String
		}
		if note.Valid {
			movement.Note = &note.String
		}
		movements = append(movements, movement)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating inventory movements: %v", ErrDatabaseError, err)
	}

	return movements, totalCount, nil
}
