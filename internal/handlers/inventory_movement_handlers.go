package handlers

import (
	"github.com/gin-gonic/gin"

	"nightclub_backoffice/internal/actions"
)

// InventoryMovementHandler serves the read-only stock audit trail.
type InventoryMovementHandler struct {
	actions *actions.Actions
}

// NewInventoryMovementHandler creates a new InventoryMovementHandler.
func NewInventoryMovementHandler(a *actions.Actions) *InventoryMovementHandler {
	return &InventoryMovementHandler{actions: a}
}

// GetMovements handles GET /inventory-movements?inventory_id=&reason=&order_id=.
func (h *InventoryMovementHandler) GetMovements(c *gin.Context) {
	respond(c, h.actions.ListMovements(requestContext(c), queryInput(c)))
}

// GetItemMovements handles GET /inventory/:id/movements.
func (h *InventoryMovementHandler) GetItemMovements(c *gin.Context) {
	in := queryInput(c)
	in["inventory_id"] = c.Param("id")
	respond(c, h.actions.ListMovements(requestContext(c), in))
}
