package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"nightclub_backoffice/internal/config"
	"nightclub_backoffice/internal/metrics"
	"nightclub_backoffice/internal/models"
	"nightclub_backoffice/internal/repositories"
	"nightclub_backoffice/pkg/utils"
)

type staffIDKey struct{}

// WithStaffID attaches the acting staff member to ctx so stock movements can record who made them.
func WithStaffID(ctx context.Context, staffID string) context.Context {
	if staffID == "" {
		return ctx
	}
	return context.WithValue(ctx, staffIDKey{}, staffID)
}

func staffIDFrom(ctx context.Context) *string {
	if v, ok := ctx.Value(staffIDKey{}).(string); ok && v != "" {
		return &v
	}
	return nil
}

// StockLedger is the only code path that takes units out of stock. Every change
// is a single conditional UPDATE followed by a movement row on the same executor.
type StockLedger struct {
	inventoryRepo repositories.InventoryRepository
	movementRepo  repositories.InventoryMovementRepository
	policy        string
	metrics       *metrics.WorkflowMetrics
}

// NewStockLedger creates a ledger enforcing the given stock policy (reject or clamp).
func NewStockLedger(
	ir repositories.InventoryRepository,
	mr repositories.InventoryMovementRepository,
	policy string,
	m *metrics.WorkflowMetrics,
) *StockLedger {
	return &StockLedger{inventoryRepo: ir, movementRepo: mr, policy: policy, metrics: m}
}

// Policy returns the configured stock policy.
func (l *StockLedger) Policy() string {
	return l.policy
}

// Deduct removes quantity units of an item and returns the resulting stock.
// Under the reject policy a shortfall changes nothing and yields *InsufficientStockError;
// under the clamp policy stock is floored at zero.
func (l *StockLedger) Deduct(ctx context.Context, exec repositories.SQLExecutor, itemID string, quantity int, reason string, orderID *string) (int, error) {
	if quantity <= 0 {
		return 0, NewValidationError("quantity", "must be greater than 0")
	}

	newStock, applied, err := l.inventoryRepo.DecrementStock(ctx, exec, itemID, quantity)
	if err != nil {
		return 0, persistence("failed to decrement stock", err)
	}

	if !applied {
		item, err := l.inventoryRepo.GetItemByID(ctx, exec, itemID)
		if err != nil {
			return 0, notFoundOr(err, "inventory item", itemID, "failed to read inventory item")
		}
		if l.policy != config.StockPolicyClamp {
			l.metrics.StockRejected()
			return 0, &InsufficientStockError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Requested: quantity,
				Available: item.Stock,
			}
		}

		// The row stays locked between reading the level and flooring it, so before-after is what was removed.
		before, err := l.inventoryRepo.LockItem(ctx, exec, itemID)
		if err != nil {
			return 0, notFoundOr(err, "inventory item", itemID, "failed to lock inventory item")
		}
		newStock, err = l.inventoryRepo.ClampDecrementStock(ctx, exec, itemID, quantity)
		if err != nil {
			return 0, notFoundOr(err, "inventory item", itemID, "failed to clamp stock")
		}
		change := newStock - before
		l.metrics.StockClamped()
		note := fmt.Sprintf("requested %d, only %d on hand; stock floored at 0", quantity, before)
		utils.LogWarn(nil, "Stock clamped to zero", map[string]interface{}{
			"item_id":   itemID,
			"requested": quantity,
			"available": before,
		})
		if err := l.record(ctx, exec, itemID, change, newStock, reason, orderID, &note); err != nil {
			return 0, err
		}
		return newStock, nil
	}

	if err := l.record(ctx, exec, itemID, -quantity, newStock, reason, orderID, nil); err != nil {
		return 0, err
	}
	return newStock, nil
}

// record appends a movement row for a stock change that has already been applied.
func (l *StockLedger) record(ctx context.Context, exec repositories.SQLExecutor, itemID string, change, stockAfter int, reason string, orderID, note *string) error {
	movement := &models.InventoryMovement{
		ID:              uuid.NewString(),
		InventoryID:     itemID,
		QuantityChanged: change,
		StockAfter:      stockAfter,
		Reason:          reason,
		OrderID:         orderID,
		StaffID:         staffIDFrom(ctx),
		Note:            note,
	}
	if err := l.movementRepo.CreateMovement(ctx, exec, movement); err != nil {
		return persistence("failed to record inventory movement", err)
	}
	l.metrics.StockMoved(reason, change)
	return nil
}
