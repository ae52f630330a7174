package router

import (
	"database/sql"
	"net/http"

	"nightclub_backoffice/internal/actions"
	"nightclub_backoffice/internal/handlers"
	"nightclub_backoffice/internal/metrics"
	"nightclub_backoffice/internal/middleware"
	"nightclub_backoffice/internal/repositories"
	"nightclub_backoffice/internal/services"
	"nightclub_backoffice/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything Setup needs from the process: storage, policy, auth and metrics.
type Deps struct {
	DB                 *sql.DB
	StockPolicy        string
	Verifier           *utils.TokenVerifier
	Registry           *prometheus.Registry
	CORSAllowedOrigins []string
}

// NewActions builds the repository, service and action layers over one database.
func NewActions(db *sql.DB, stockPolicy string, reg prometheus.Registerer) *actions.Actions {
	// Initialize Repositories
	inventoryRepo := repositories.NewInventoryRepository()
	movementRepo := repositories.NewInventoryMovementRepository()
	orderRepo := repositories.NewOrderRepository()
	paymentRepo := repositories.NewPaymentRepository()
	guestRepo := repositories.NewGuestRepository()
	templateRepo := repositories.NewTicketTemplateRepository()

	// Initialize Services
	workflowMetrics := metrics.NewWorkflowMetrics(reg)
	ledger := services.NewStockLedger(inventoryRepo, movementRepo, stockPolicy, workflowMetrics)

	return actions.New(
		services.NewInventoryService(inventoryRepo, movementRepo, ledger, db),
		services.NewOrderService(orderRepo, inventoryRepo, paymentRepo, guestRepo, ledger, workflowMetrics, db),
		services.NewTicketTemplateService(templateRepo, db),
		services.NewGuestService(guestRepo, db),
		services.NewPaymentService(paymentRepo, guestRepo, db),
		services.NewReportService(orderRepo, paymentRepo, inventoryRepo, guestRepo, db),
	)
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, deps Deps) {
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = deps.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	var reg prometheus.Registerer
	if deps.Registry != nil {
		reg = deps.Registry
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	a := NewActions(deps.DB, deps.StockPolicy, reg)

	// Initialize Handlers
	inventoryHandler := handlers.NewInventoryHandler(a)
	movementHandler := handlers.NewInventoryMovementHandler(a)
	orderHandler := handlers.NewOrderHandler(a)
	templateHandler := handlers.NewTicketTemplateHandler(a)
	guestHandler := handlers.NewGuestHandler(a)
	paymentHandler := handlers.NewPaymentHandler(a)
	reportHandler := handlers.NewReportHandler(a)

	apiV1 := engine.Group("/api/v1")

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(deps.Verifier))
	{
		SetupInventoryRoutes(authenticated, inventoryHandler, movementHandler)
		SetupOrderRoutes(authenticated, orderHandler)
		SetupTicketTemplateRoutes(authenticated, templateHandler)
		SetupGuestRoutes(authenticated, guestHandler)
		SetupPaymentRoutes(authenticated, paymentHandler)
		SetupReportRoutes(authenticated, reportHandler)
	}
}
