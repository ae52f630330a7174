package router

import (
	"nightclub_backoffice/internal/handlers"
	"nightclub_backoffice/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Roles carried in staff tokens.
const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
	RoleStaff   = "Staff"
)

var (
	anyRole     = middleware.RoleAuthMiddleware(RoleAdmin, RoleManager, RoleStaff)
	managerRole = middleware.RoleAuthMiddleware(RoleAdmin, RoleManager)
)

// SetupInventoryRoutes sets up the inventory ledger routes.
func SetupInventoryRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler, movementHandler *handlers.InventoryMovementHandler) {
	inventoryRoutes := authenticatedGroup.Group("/inventory")
	inventoryRoutes.Use(anyRole)
	{
		inventoryRoutes.GET("", inventoryHandler.GetItems)
		inventoryRoutes.POST("", inventoryHandler.CreateItem)
		inventoryRoutes.GET("/:id", inventoryHandler.GetItemByID)
		inventoryRoutes.PUT("/:id", inventoryHandler.UpdateItem)
		inventoryRoutes.DELETE("/:id", managerRole, inventoryHandler.DeleteItem)
		inventoryRoutes.POST("/:id/decrement", inventoryHandler.DecrementStock)
		inventoryRoutes.POST("/:id/restock", inventoryHandler.RestockItem)
		inventoryRoutes.GET("/:id/movements", movementHandler.GetItemMovements)
	}

	authenticatedGroup.GET("/inventory-movements", anyRole, movementHandler.GetMovements)
}

// SetupOrderRoutes sets up the order routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	orderRoutes.Use(anyRole)
	{
		orderRoutes.POST("", orderHandler.CreateOrder)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.POST("/:id/items", orderHandler.AddOrderItem)
		orderRoutes.DELETE("/:id/items/:itemId", orderHandler.RemoveOrderItem)
		orderRoutes.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
		orderRoutes.POST("/:id/pay", orderHandler.MarkOrderAsPaid)
		orderRoutes.DELETE("/:id", managerRole, orderHandler.DeleteOrder)
	}
}

// SetupTicketTemplateRoutes sets up the ticket template routes.
func SetupTicketTemplateRoutes(authenticatedGroup *gin.RouterGroup, templateHandler *handlers.TicketTemplateHandler) {
	templateRoutes := authenticatedGroup.Group("/ticket-templates")
	templateRoutes.Use(anyRole)
	{
		templateRoutes.GET("", templateHandler.GetTemplates)
		templateRoutes.GET("/:id", templateHandler.GetTemplateByID)
		templateRoutes.POST("", managerRole, templateHandler.CreateTemplate)
		templateRoutes.PUT("/:id", managerRole, templateHandler.UpdateTemplate)
		templateRoutes.DELETE("/:id", managerRole, templateHandler.DeleteTemplate)
		templateRoutes.POST("/initialize", managerRole, templateHandler.InitializeTemplates)
	}
}

// SetupGuestRoutes sets up the guest routes.
func SetupGuestRoutes(authenticatedGroup *gin.RouterGroup, guestHandler *handlers.GuestHandler) {
	guestRoutes := authenticatedGroup.Group("/guests")
	guestRoutes.Use(anyRole)
	{
		guestRoutes.POST("", guestHandler.CreateGuest)
		guestRoutes.GET("", guestHandler.GetGuests)
		guestRoutes.GET("/:id", guestHandler.GetGuestByID)
		guestRoutes.PUT("/:id", guestHandler.UpdateGuest)
		guestRoutes.DELETE("/:id", managerRole, guestHandler.DeleteGuest)
	}
}

// SetupPaymentRoutes sets up the payment routes.
func SetupPaymentRoutes(authenticatedGroup *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	paymentRoutes := authenticatedGroup.Group("/payments")
	paymentRoutes.Use(anyRole)
	{
		paymentRoutes.POST("", paymentHandler.CreatePayment)
		paymentRoutes.GET("", paymentHandler.GetPayments)
		paymentRoutes.GET("/:id", paymentHandler.GetPaymentByID)
		paymentRoutes.PATCH("/:id/status", managerRole, paymentHandler.UpdatePaymentStatus)
	}
}

// SetupReportRoutes sets up the report and dashboard routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	authenticatedGroup.GET("/dashboard/summary", anyRole, reportHandler.GetDashboardSummary)

	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(anyRole)
	{
		reportRoutes.GET("/low-stock", reportHandler.GetLowStockReport)
	}
}
