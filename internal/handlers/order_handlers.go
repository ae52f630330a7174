package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"nightclub_backoffice/internal/actions"
)

// OrderHandler exposes the order workflow.
type OrderHandler struct {
	actions *actions.Actions
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(a *actions.Actions) *OrderHandler {
	return &OrderHandler{actions: a}
}

// CreateOrder handles the creation of a new order with its items
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	withBody(c, h.actions.CreateOrder)
}

// GetOrders handles fetching orders filtered by client_id, status and date (YYYY-MM-DD)
func (h *OrderHandler) GetOrders(c *gin.Context) {
	respond(c, h.actions.ListOrders(requestContext(c), queryInput(c)))
}

// GetOrderByID handles fetching a single order by its ID
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	respond(c, h.actions.GetOrder(requestContext(c), c.Param("id")))
}

func (h *OrderHandler) AddOrderItem(c *gin.Context) {
	orderID := c.Param("id")
	withBody(c, func(ctx context.Context, in actions.Input) actions.Result {
		return h.actions.AddOrderItem(ctx, orderID, in)
	})
}

func (h *OrderHandler) RemoveOrderItem(c *gin.Context) {
	respond(c, h.actions.RemoveOrderItem(requestContext(c), c.Param("id"), c.Param("itemId")))
}

// UpdateOrderStatus handles updating the status of an order
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")
	withBody(c, func(ctx context.Context, in actions.Input) actions.Result {
		return h.actions.UpdateOrderStatus(ctx, orderID, in)
	})
}

// MarkOrderAsPaid handles POST /orders/:id/pay.
func (h *OrderHandler) MarkOrderAsPaid(c *gin.Context) {
	orderID := c.Param("id")
	withBody(c, func(ctx context.Context, in actions.Input) actions.Result {
		return h.actions.MarkOrderAsPaid(ctx, orderID, in)
	})
}

// DeleteOrder handles deleting an order
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	respond(c, h.actions.DeleteOrder(requestContext(c), c.Param("id")))
}
