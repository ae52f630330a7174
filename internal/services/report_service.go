package services

import (
	"context"
	"database/sql"
	"time"

	"nightclub_backoffice/internal/models"
	"nightclub_backoffice/internal/repositories"
)

// ReportService builds read-only summaries for the dashboard.
type ReportService interface {
	GetDashboardSummary(ctx context.Context, day time.Time) (*models.DashboardSummary, error)
}

type reportService struct {
	orderRepo     repositories.OrderRepository
	paymentRepo   repositories.PaymentRepository
	inventoryRepo repositories.InventoryRepository
	guestRepo     repositories.GuestRepository
	db            *sql.DB
}

// NewReportService creates a new instance of ReportService.
func NewReportService(
	or repositories.OrderRepository,
	pr repositories.PaymentRepository,
	ir repositories.InventoryRepository,
	gr repositories.GuestRepository,
	db *sql.DB,
) ReportService {
	return &reportService{orderRepo: or, paymentRepo: pr, inventoryRepo: ir, guestRepo: gr, db: db}
}

// GetDashboardSummary reports open orders, the day's completed revenue, low stock and guest counts.
// day is interpreted as a UTC calendar day.
func (s *reportService) GetDashboardSummary(ctx context.Context, day time.Time) (*models.DashboardSummary, error) {
	day = day.UTC()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	openCount, openValue, err := s.orderRepo.OpenOrdersSummary(ctx, s.db)
	if err != nil {
		return nil, persistence("failed to summarize open orders", err)
	}
	paymentCount, revenue, err := s.paymentRepo.CompletedTotals(ctx, s.db, start, end)
	if err != nil {
		return nil, persistence("failed to total payments", err)
	}
	lowStock, err := s.inventoryRepo.CountLowStock(ctx, s.db)
	if err != nil {
		return nil, persistence("failed to count low stock items", err)
	}
	guests, err := s.guestRepo.CountGuests(ctx, s.db)
	if err != nil {
		return nil, persistence("failed to count guests", err)
	}

	return &models.DashboardSummary{
		Date:            start.Format("2006-01-02"),
		PendingOrders:   openCount,
		OpenOrdersValue: openValue.Round(2),
		RevenueToday:    revenue.Round(2),
		PaymentsToday:   paymentCount,
		LowStockItems:   lowStock,
		TotalGuests:     guests,
		GeneratedAt:     time.Now().UTC(),
	}, nil
}
