package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"nightclub_backoffice/internal/actions"
)

// GuestHandler handles HTTP requests for guest records.
type GuestHandler struct {
	actions *actions.Actions
}

// NewGuestHandler creates a new GuestHandler.
func NewGuestHandler(a *actions.Actions) *GuestHandler {
	return &GuestHandler{actions: a}
}

// CreateGuest handles the creation of a new guest.
func (h *GuestHandler) CreateGuest(c *gin.Context) {
	withBody(c, h.actions.CreateGuest)
}

// GetGuests handles fetching guests with pagination and an optional search term.
func (h *GuestHandler) GetGuests(c *gin.Context) {
	respond(c, h.actions.ListGuests(requestContext(c), queryInput(c)))
}

// GetGuestByID handles fetching a single guest by ID.
func (h *GuestHandler) GetGuestByID(c *gin.Context) {
	respond(c, h.actions.GetGuest(requestContext(c), c.Param("id")))
}

// UpdateGuest handles updating an existing guest.
func (h *GuestHandler) UpdateGuest(c *gin.Context) {
	id := c.Param("id")
	withBody(c, func(ctx context.Context, in actions.Input) actions.Result {
		return h.actions.UpdateGuest(ctx, id, in)
	})
}

// DeleteGuest handles deleting a guest.
func (h *GuestHandler) DeleteGuest(c *gin.Context) {
	respond(c, h.actions.DeleteGuest(requestContext(c), c.Param("id")))
}
