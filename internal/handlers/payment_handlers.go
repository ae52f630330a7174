package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"nightclub_backoffice/internal/actions"
)

type PaymentHandler struct {
	actions *actions.Actions
}

func NewPaymentHandler(a *actions.Actions) *PaymentHandler {
	return &PaymentHandler{actions: a}
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	withBody(c, h.actions.CreatePayment)
}

// GetPayments accepts guest_id, status, method and a from/to payment date range.
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	respond(c, h.actions.ListPayments(requestContext(c), queryInput(c)))
}

func (h *PaymentHandler) GetPaymentByID(c *gin.Context) {
	respond(c, h.actions.GetPayment(requestContext(c), c.Param("id")))
}

func (h *PaymentHandler) UpdatePaymentStatus(c *gin.Context) {
	id := c.Param("id")
	withBody(c, func(ctx context.Context, in actions.Input) actions.Result {
		return h.actions.UpdatePaymentStatus(ctx, id, in)
	})
}
