package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketType is a purchasable ticket within a category.
type TicketType struct {
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	Available bool            `json:"available"`
}

// TicketCategory groups ticket types (e.g. "General Admission", "VIP").
type TicketCategory struct {
	Name        string       `json:"name" validate:"required"`
	Description *string      `json:"description,omitempty"`
	Tickets     []TicketType `json:"tickets" validate:"dive"`
}

// TicketTemplate is a reusable ticketing configuration for events.
// Categories are persisted as a JSON document.
type TicketTemplate struct {
	ID          string           `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description *string          `json:"description,omitempty" db:"description"`
	Categories  []TicketCategory `json:"categories" db:"categories"`
	IsDefault   bool             `json:"is_default" db:"is_default"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}
