package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nightclub_backoffice/internal/models"
	"nightclub_backoffice/internal/repositories"
	"nightclub_backoffice/pkg/utils"
)

// --- DTOs ---

// InventoryItemRequest carries the editable fields of an inventory item.
type InventoryItemRequest struct {
	Name      string          `json:"name" validate:"required,min=2"`
	Category  string          `json:"category" validate:"required"`
	Stock     int             `json:"stock" validate:"gte=0"`
	Unit      string          `json:"unit" validate:"required"`
	Threshold int             `json:"threshold" validate:"gte=1"`
	Cost      decimal.Decimal `json:"cost" validate:"gte=0"`
	Supplier  *string         `json:"supplier"`
}

func (r *InventoryItemRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	r.Unit = strings.TrimSpace(r.Unit)
	r.Supplier = utils.TrimPtr(r.Supplier)
}

// StockChangeRequest is used for manual decrements and restocks.
type StockChangeRequest struct {
	Quantity int     `json:"quantity" validate:"gt=0,lte=100000"`
	Supplier *string `json:"supplier"`
}

// --- InventoryService Interface ---
type InventoryService interface {
	CreateItem(ctx context.Context, req InventoryItemRequest) (*models.InventoryItem, error)
	GetItem(ctx context.Context, id string) (*models.InventoryItem, error)
	ListItems(ctx context.Context, filters models.InventoryFilters) ([]models.InventoryItem, int, error)
	UpdateItem(ctx context.Context, id string, req InventoryItemRequest) (*models.InventoryItem, error)
	DeleteItem(ctx context.Context, id string) error
	DecrementStock(ctx context.Context, id string, req StockChangeRequest) (*models.InventoryItem, error)
	RestockItem(ctx context.Context, id string, req StockChangeRequest) (*models.InventoryItem, error)
	ListMovements(ctx context.Context, filters models.MovementFilters) ([]models.InventoryMovement, int, error)
	LowStockReport(ctx context.Context) ([]models.InventoryReportItem, error)
}

type inventoryService struct {
	inventoryRepo repositories.InventoryRepository
	movementRepo  repositories.InventoryMovementRepository
	ledger        *StockLedger
	db            *sql.DB
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(
	ir repositories.InventoryRepository,
	mr repositories.InventoryMovementRepository,
	ledger *StockLedger,
	db *sql.DB,
) InventoryService {
	return &inventoryService{
		inventoryRepo: ir,
		movementRepo:  mr,
		ledger:        ledger,
		db:            db,
	}
}

func (s *inventoryService) CreateItem(ctx context.Context, req InventoryItemRequest) (*models.InventoryItem, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistence("failed to start database transaction", err)
	}
	defer tx.Rollback()

	item := &models.InventoryItem{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Category:  req.Category,
		Stock:     req.Stock,
		Unit:      req.Unit,
		Threshold: req.Threshold,
		Cost:      req.Cost.Round(2),
		Supplier:  req.Supplier,
	}
	if err := s.inventoryRepo.CreateItem(ctx, tx, item); err != nil {
		return nil, persistence("failed to create inventory item", err)
	}
	if item.Stock > 0 {
		if err := s.ledger.record(ctx, tx, item.ID, item.Stock, item.Stock, models.MovementReasonInitial, nil, nil); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, persistence("failed to commit inventory item", err)
	}
	utils.LogInfo("Inventory item created", map[string]interface{}{"item_id": item.ID, "stock": item.Stock})
	return item, nil
}

func (s *inventoryService) GetItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	item, err := s.inventoryRepo.GetItemByID(ctx, s.db, id)
	if err != nil {
		return nil, notFoundOr(err, "inventory item", id, "failed to get inventory item")
	}
	return item, nil
}

func (s *inventoryService) ListItems(ctx context.Context, filters models.InventoryFilters) ([]models.InventoryItem, int, error) {
	items, total, err := s.inventoryRepo.GetItems(ctx, s.db, filters)
	if err != nil {
		return nil, 0, persistence("failed to list inventory items", err)
	}
	return items, total, nil
}

// UpdateItem replaces the editable fields. A stock change is recorded as an adjustment.
func (s *inventoryService) UpdateItem(ctx context.Context, id string, req InventoryItemRequest) (*models.InventoryItem, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistence("failed to start database transaction", err)
	}
	defer tx.Rollback()

	if _, err := s.inventoryRepo.LockItem(ctx, tx, id); err != nil {
		return nil, notFoundOr(err, "inventory item", id, "failed to lock inventory item")
	}
	item, err := s.inventoryRepo.GetItemByID(ctx, tx, id)
	if err != nil {
		return nil, notFoundOr(err, "inventory item", id, "failed to get inventory item")
	}
	delta := req.Stock - item.Stock

	item.Name = req.Name
	item.Category = req.Category
	item.Stock = req.Stock
	item.Unit = req.Unit
	item.Threshold = req.Threshold
	item.Cost = req.Cost.Round(2)
	item.Supplier = req.Supplier
	if err := s.inventoryRepo.UpdateItem(ctx, tx, item); err != nil {
		return nil, notFoundOr(err, "inventory item", id, "failed to update inventory item")
	}
	if delta != 0 {
		if err := s.ledger.record(ctx, tx, id, delta, item.Stock, models.MovementReasonAdjustment, nil, nil); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, persistence("failed to commit inventory update", err)
	}
	return item, nil
}

// DeleteItem refuses to remove items still referenced by order lines. The stock audit trail is kept.
func (s *inventoryService) DeleteItem(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence("failed to start database transaction", err)
	}
	defer tx.Rollback()

	stock, err := s.inventoryRepo.LockItem(ctx, tx, id)
	if err != nil {
		return notFoundOr(err, "inventory item", id, "failed to lock inventory item")
	}
	refs, err := s.inventoryRepo.CountOrderReferences(ctx, tx, id)
	if err != nil {
		return persistence("failed to check order references", err)
	}
	if refs > 0 {
		return &ConflictError{
			Resource: "inventory item",
			Reason:   fmt.Sprintf("item is referenced by %d order item(s)", refs),
		}
	}
	// Movements outlive the item; close its trail at zero so the history still sums to the last level.
	if stock > 0 {
		note := "item deleted"
		if err := s.ledger.record(ctx, tx, id, -stock, 0, models.MovementReasonAdjustment, nil, &note); err != nil {
			return err
		}
	}
	if err := s.inventoryRepo.DeleteItem(ctx, tx, id); err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return &ConflictError{Resource: "inventory item", Reason: "item is still referenced"}
		}
		return notFoundOr(err, "inventory item", id, "failed to delete inventory item")
	}
	if err := tx.Commit(); err != nil {
		return persistence("failed to commit inventory delete", err)
	}
	return nil
}

// DecrementStock takes units out of stock outside of an order, e.g. breakage.
func (s *inventoryService) DecrementStock(ctx context.Context, id string, req StockChangeRequest) (*models.InventoryItem, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistence("failed to start database transaction", err)
	}
	defer tx.Rollback()

	if _, err := s.ledger.Deduct(ctx, tx, id, req.Quantity, models.MovementReasonAdjustment, nil); err != nil {
		return nil, err
	}
	item, err := s.inventoryRepo.GetItemByID(ctx, tx, id)
	if err != nil {
		return nil, notFoundOr(err, "inventory item", id, "failed to get inventory item")
	}
	if err := tx.Commit(); err != nil {
		return nil, persistence("failed to commit stock decrement", err)
	}
	return item, nil
}

// RestockItem adds delivered units, stamps last_ordered and optionally switches supplier.
func (s *inventoryService) RestockItem(ctx context.Context, id string, req StockChangeRequest) (*models.InventoryItem, error) {
	req.Supplier = utils.TrimPtr(req.Supplier)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistence("failed to start database transaction", err)
	}
	defer tx.Rollback()

	newStock, err := s.inventoryRepo.IncrementStock(ctx, tx, id, req.Quantity, time.Now().UTC(), req.Supplier)
	if err != nil {
		return nil, notFoundOr(err, "inventory item", id, "failed to restock inventory item")
	}
	if err := s.ledger.record(ctx, tx, id, req.Quantity, newStock, models.MovementReasonRestock, nil, nil); err != nil {
		return nil, err
	}
	item, err := s.inventoryRepo.GetItemByID(ctx, tx, id)
	if err != nil {
		return nil, notFoundOr(err, "inventory item", id, "failed to get inventory item")
	}
	if err := tx.Commit(); err != nil {
		return nil, persistence("failed to commit restock", err)
	}
	return item, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, filters models.MovementFilters) ([]models.InventoryMovement, int, error) {
	movements, total, err := s.movementRepo.GetMovements(ctx, s.db, filters)
	if err != nil {
		return nil, 0, persistence("failed to list inventory movements", err)
	}
	return movements, total, nil
}

// LowStockReport lists every item at or below its reorder threshold.
func (s *inventoryService) LowStockReport(ctx context.Context) ([]models.InventoryReportItem, error) {
	items, _, err := s.inventoryRepo.GetItems(ctx, s.db, models.InventoryFilters{LowStock: true})
	if err != nil {
		return nil, persistence("failed to build low stock report", err)
	}
	report := make([]models.InventoryReportItem, 0, len(items))
	for _, item := range items {
		report = append(report, models.InventoryReportItem{
			ItemID:      item.ID,
			ItemName:    item.Name,
			Category:    item.Category,
			Stock:       item.Stock,
			Threshold:   item.Threshold,
			Unit:        item.Unit,
			Supplier:    item.Supplier,
			LastOrdered: item.LastOrdered,
		})
	}
	return report, nil
}
