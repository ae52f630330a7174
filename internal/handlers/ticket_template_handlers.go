package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"nightclub_backoffice/internal/actions"
)

// TicketTemplateHandler handles HTTP requests for ticket templates.
type TicketTemplateHandler struct {
	actions *actions.Actions
}

// NewTicketTemplateHandler creates a new TicketTemplateHandler.
func NewTicketTemplateHandler(a *actions.Actions) *TicketTemplateHandler {
	return &TicketTemplateHandler{actions: a}
}

// GetTemplates lists templates, default first.
func (h *TicketTemplateHandler) GetTemplates(c *gin.Context) {
	respond(c, h.actions.ListTicketTemplates(requestContext(c)))
}

func (h *TicketTemplateHandler) GetTemplateByID(c *gin.Context) {
	respond(c, h.actions.GetTicketTemplate(requestContext(c), c.Param("id")))
}

// CreateTemplate accepts categories either as a JSON array or as a JSON string form field.
func (h *TicketTemplateHandler) CreateTemplate(c *gin.Context) {
	withBody(c, h.actions.CreateTicketTemplate)
}

func (h *TicketTemplateHandler) UpdateTemplate(c *gin.Context) {
	id := c.Param("id")
	withBody(c, func(ctx context.Context, in actions.Input) actions.Result {
		return h.actions.UpdateTicketTemplate(ctx, id, in)
	})
}

func (h *TicketTemplateHandler) DeleteTemplate(c *gin.Context) {
	respond(c, h.actions.DeleteTicketTemplate(requestContext(c), c.Param("id")))
}

// InitializeTemplates seeds the stock templates into an empty store.
func (h *TicketTemplateHandler) InitializeTemplates(c *gin.Context) {
	respond(c, h.actions.InitializeTicketTemplates(requestContext(c)))
}
