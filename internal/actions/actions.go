package actions

import (
	"nightclub_backoffice/internal/services"
)

// Actions adapts flat form submissions to the service layer.
type Actions struct {
	inventory services.InventoryService
	orders    services.OrderService
	templates services.TicketTemplateService
	guests    services.GuestService
	payments  services.PaymentService
	reports   services.ReportService
}

// New creates the action set over the given services.
func New(
	inventory services.InventoryService,
	orders services.OrderService,
	templates services.TicketTemplateService,
	guests services.GuestService,
	payments services.PaymentService,
	reports services.ReportService,
) *Actions {
	return &Actions{
		inventory: inventory,
		orders:    orders,
		templates: templates,
		guests:    guests,
		payments:  payments,
		reports:   reports,
	}
}
