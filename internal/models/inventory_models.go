package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is a stocked product (bottles, mixers, equipment) with its on-hand count.
type InventoryItem struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Category    string          `json:"category" db:"category"`
	Stock       int             `json:"stock" db:"stock"`
	Unit        string          `json:"unit" db:"unit"`
	Threshold   int             `json:"threshold" db:"threshold"`
	Cost        decimal.Decimal `json:"cost" db:"cost"`
	Supplier    *string         `json:"supplier,omitempty" db:"supplier"`
	LastOrdered *time.Time      `json:"last_ordered,omitempty" db:"last_ordered"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// IsLowStock reports whether the item is at or below its reorder threshold.
func (i InventoryItem) IsLowStock() bool {
	return i.Stock <= i.Threshold
}

// InventoryFilters narrows inventory listings.
type InventoryFilters struct {
	Category *string `form:"category"`
	Search   *string `form:"search"`
	LowStock bool    `form:"low_stock"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// Movement reasons recorded in the stock audit trail.
const (
	MovementReasonInitial    = "initial"
	MovementReasonSale       = "sale"
	MovementReasonRestock    = "restock"
	MovementReasonAdjustment = "adjustment"
)

// InventoryMovement is one entry of the stock audit trail.
type InventoryMovement struct {
	ID              string    `json:"id" db:"id"`
	InventoryID     string    `json:"inventory_id" db:"inventory_id"`
	InventoryName   string    `json:"inventory_name,omitempty"`
	QuantityChanged int       `json:"quantity_changed" db:"quantity_changed"`
	StockAfter      int       `json:"stock_after" db:"stock_after"`
	Reason          string    `json:"reason" db:"reason"`
	OrderID         *string   `json:"order_id,omitempty" db:"order_id"`
	StaffID         *string   `json:"staff_id,omitempty" db:"staff_id"`
	Note            *string   `json:"note,omitempty" db:"note"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// MovementFilters narrows the stock audit trail.
type MovementFilters struct {
	InventoryID *string
	Reason      *string
	OrderID     *string
	Page        int
	PageSize    int
}
