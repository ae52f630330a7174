package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus values. paid and cancelled are terminal.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDelivered = "delivered"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"

	// OrderStatusCompleted is accepted from callers as a synonym for paid.
	OrderStatusCompleted = "completed"
)

// orderStatusRank orders the happy path; transitions may only move forward.
var orderStatusRank = map[string]int{
	OrderStatusPending:   0,
	OrderStatusConfirmed: 1,
	OrderStatusDelivered: 2,
	OrderStatusPaid:      3,
}

// IsValidOrderStatus checks if the provided status string is a known order status.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDelivered, OrderStatusPaid, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminalOrderStatus reports whether no further transition is allowed.
func IsTerminalOrderStatus(status string) bool {
	return status == OrderStatusPaid || status == OrderStatusCancelled
}

// CanTransitionOrder reports whether an order may move from one status to another.
func CanTransitionOrder(from, to string) bool {
	if IsTerminalOrderStatus(from) || from == to {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	fromRank, okFrom := orderStatusRank[from]
	toRank, okTo := orderStatusRank[to]
	return okFrom && okTo && toRank > fromRank
}

// Order is a bar tab or table order. ClientID is nil for walk-in guests.
type Order struct {
	ID          string          `json:"id" db:"id"`
	ClientID    *string         `json:"client_id" db:"client_id"`
	ClientName  *string         `json:"client_name,omitempty"`
	Status      string          `json:"status" db:"status"`
	OrderDate   time.Time       `json:"order_date" db:"order_date"`
	Notes       *string         `json:"notes,omitempty" db:"notes"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaymentID   *string         `json:"payment_id,omitempty" db:"payment_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	Items       []OrderItem     `json:"items,omitempty"`
}

// OrderItem is one line of an order. UnitPrice is frozen at insertion time.
type OrderItem struct {
	ID            string          `json:"id" db:"id"`
	OrderID       string          `json:"order_id" db:"order_id"`
	InventoryID   string          `json:"inventory_id" db:"inventory_id"`
	InventoryName string          `json:"inventory_name,omitempty"`
	Quantity      int             `json:"quantity" db:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// OrderFilters defines the available filters for querying orders.
// This struct is used by both the service and repository layers.
type OrderFilters struct {
	ClientID *string `form:"client_id"`
	Status   *string `form:"status"`
	Date     *string `form:"date"` // Expected format YYYY-MM-DD
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
