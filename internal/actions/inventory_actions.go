package actions

import (
	"context"

	"nightclub_backoffice/internal/models"
	"nightclub_backoffice/internal/services"
)

type inventoryQuery struct {
	PageQuery
	Category string `json:"category"`
	Search   string `json:"search"`
	LowStock bool   `json:"low_stock"`
}

type movementQuery struct {
	PageQuery
	InventoryID string `json:"inventory_id"`
	Reason      string `json:"reason"`
	OrderID     string `json:"order_id"`
}

func (a *Actions) ListInventory(ctx context.Context, in Input) Result {
	var q inventoryQuery
	if fields := decode(in, &q); fields != nil {
		return invalid(fields)
	}
	page, size := q.normalized()
	items, total, err := a.inventory.ListItems(ctx, models.InventoryFilters{
		Category: optional(q.Category),
		Search:   optional(q.Search),
		LowStock: q.LowStock,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return fail(err, "Failed to retrieve inventory items")
	}
	return ok(Page{Items: items, Total: total, Page: page, PageSize: size}, "")
}

func (a *Actions) GetInventoryItem(ctx context.Context, id string) Result {
	item, err := a.inventory.GetItem(ctx, id)
	if err != nil {
		return fail(err, "Failed to retrieve inventory item")
	}
	return ok(item, "")
}

func (a *Actions) CreateInventoryItem(ctx context.Context, in Input) Result {
	var req services.InventoryItemRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	item, err := a.inventory.CreateItem(ctx, req)
	if err != nil {
		return fail(err, "Failed to create inventory item")
	}
	return created(item, "Inventory item created")
}

func (a *Actions) UpdateInventoryItem(ctx context.Context, id string, in Input) Result {
	var req services.InventoryItemRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	item, err := a.inventory.UpdateItem(ctx, id, req)
	if err != nil {
		return fail(err, "Failed to update inventory item")
	}
	return ok(item, "Inventory item updated")
}

func (a *Actions) DeleteInventoryItem(ctx context.Context, id string) Result {
	if err := a.inventory.DeleteItem(ctx, id); err != nil {
		return fail(err, "Failed to delete inventory item")
	}
	return ok(nil, "Inventory item deleted")
}

func (a *Actions) DecrementStock(ctx context.Context, id string, in Input) Result {
	var req services.StockChangeRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	item, err := a.inventory.DecrementStock(ctx, id, req)
	if err != nil {
		return fail(err, "Failed to decrement stock")
	}
	return ok(item, "Stock updated")
}

func (a *Actions) RestockItem(ctx context.Context, id string, in Input) Result {
	var req services.StockChangeRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	item, err := a.inventory.RestockItem(ctx, id, req)
	if err != nil {
		return fail(err, "Failed to restock inventory item")
	}
	return ok(item, "Item restocked")
}

func (a *Actions) ListMovements(ctx context.Context, in Input) Result {
	var q movementQuery
	if fields := decode(in, &q); fields != nil {
		return invalid(fields)
	}
	page, size := q.normalized()
	movements, total, err := a.inventory.ListMovements(ctx, models.MovementFilters{
		InventoryID: optional(q.InventoryID),
		Reason:      optional(q.Reason),
		OrderID:     optional(q.OrderID),
		Page:        page,
		PageSize:    size,
	})
	if err != nil {
		return fail(err, "Failed to retrieve inventory movements")
	}
	return ok(Page{Items: movements, Total: total, Page: page, PageSize: size}, "")
}

func (a *Actions) LowStockReport(ctx context.Context) Result {
	report, err := a.inventory.LowStockReport(ctx)
	if err != nil {
		return fail(err, "Failed to build low stock report")
	}
	return ok(report, "")
}
