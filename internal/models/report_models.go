package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSummary is the headline numbers shown on the back-office dashboard.
type DashboardSummary struct {
	Date            string          `json:"date"` // YYYY-MM-DD
	PendingOrders   int             `json:"pending_orders"`
	OpenOrdersValue decimal.Decimal `json:"open_orders_value"`
	RevenueToday    decimal.Decimal `json:"revenue_today"`
	PaymentsToday   int             `json:"payments_today"`
	LowStockItems   int             `json:"low_stock_items"`
	TotalGuests     int             `json:"total_guests"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// InventoryReportItem represents one row of the low-stock report.
type InventoryReportItem struct {
	ItemID      string     `json:"item_id"`
	ItemName    string     `json:"item_name"`
	Category    string     `json:"category"`
	Stock       int        `json:"stock"`
	Threshold   int        `json:"threshold"`
	Unit        string     `json:"unit"`
	Supplier    *string    `json:"supplier,omitempty"`
	LastOrdered *time.Time `json:"last_ordered,omitempty"`
}
