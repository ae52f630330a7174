package handlers

import (
	"github.com/gin-gonic/gin"

	"nightclub_backoffice/internal/actions"
)

// ReportHandler serves dashboard and stock reports.
type ReportHandler struct {
	actions *actions.Actions
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(a *actions.Actions) *ReportHandler {
	return &ReportHandler{actions: a}
}

// GetDashboardSummary handles GET /dashboard/summary?date=YYYY-MM-DD.
func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	respond(c, h.actions.DashboardSummary(requestContext(c), queryInput(c)))
}

// GetLowStockReport handles GET /reports/low-stock.
func (h *ReportHandler) GetLowStockReport(c *gin.Context) {
	respond(c, h.actions.LowStockReport(requestContext(c)))
}
