package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"nightclub_backoffice/internal/actions"
)

// InventoryHandler exposes the inventory ledger.
type InventoryHandler struct {
	actions *actions.Actions
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(a *actions.Actions) *InventoryHandler {
	return &InventoryHandler{actions: a}
}

// GetItems handles GET /inventory with category, search, low_stock and paging query parameters.
func (h *InventoryHandler) GetItems(c *gin.Context) {
	respond(c, h.actions.ListInventory(requestContext(c), queryInput(c)))
}

func (h *InventoryHandler) GetItemByID(c *gin.Context) {
	respond(c, h.actions.GetInventoryItem(requestContext(c), c.Param("id")))
}

func (h *InventoryHandler) CreateItem(c *gin.Context) {
	withBody(c, h.actions.CreateInventoryItem)
}

func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id := c.Param("id")
	withBody(c, func(ctx context.Context, in actions.Input) actions.Result {
		return h.actions.UpdateInventoryItem(ctx, id, in)
	})
}

func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	respond(c, h.actions.DeleteInventoryItem(requestContext(c), c.Param("id")))
}

// DecrementStock handles POST /inventory/:id/decrement.
func (h *InventoryHandler) DecrementStock(c *gin.Context) {
	id := c.Param("id")
	withBody(c, func(ctx context.Context, in actions.Input) actions.Result {
		return h.actions.DecrementStock(ctx, id, in)
	})
}

// RestockItem handles POST /inventory/:id/restock.
func (h *InventoryHandler) RestockItem(c *gin.Context) {
	id := c.Param("id")
	withBody(c, func(ctx context.Context, in actions.Input) actions.Result {
		return h.actions.RestockItem(ctx, id, in)
	})
}
