package actions

import (
	"context"
	"fmt"
	"net/http"

	"nightclub_backoffice/internal/services"
	"nightclub_backoffice/pkg/utils"
)

func (a *Actions) ListTicketTemplates(ctx context.Context) Result {
	templates, err := a.templates.ListTemplates(ctx)
	if err != nil {
		return fail(err, "Failed to retrieve ticket templates")
	}
	return ok(templates, "")
}

func (a *Actions) GetTicketTemplate(ctx context.Context, id string) Result {
	tmpl, err := a.templates.GetTemplate(ctx, id)
	if err != nil {
		return fail(err, "Failed to retrieve ticket template")
	}
	return ok(tmpl, "")
}

func (a *Actions) CreateTicketTemplate(ctx context.Context, in Input) Result {
	var req services.TicketTemplateRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	tmpl, err := a.templates.CreateTemplate(ctx, req)
	if err != nil {
		return fail(err, "Failed to create ticket template")
	}
	return created(tmpl, "Ticket template created")
}

func (a *Actions) UpdateTicketTemplate(ctx context.Context, id string, in Input) Result {
	var req services.TicketTemplateRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	tmpl, err := a.templates.UpdateTemplate(ctx, id, req)
	if err != nil {
		return fail(err, "Failed to update ticket template")
	}
	return ok(tmpl, "Ticket template updated")
}

func (a *Actions) DeleteTicketTemplate(ctx context.Context, id string) Result {
	if err := a.templates.DeleteTemplate(ctx, id); err != nil {
		return fail(err, "Failed to delete ticket template")
	}
	return ok(nil, "Ticket template deleted")
}

// InitializeTicketTemplates seeds the stock templates. It fails soft: any error
// becomes an unsuccessful Result carrying a message, never a 5xx.
func (a *Actions) InitializeTicketTemplates(ctx context.Context) Result {
	n, err := a.templates.InitializeTemplates(ctx)
	if err != nil {
		utils.LogWarn(err, "Ticket template initialization failed")
		return Result{
			Success: false,
			Message: "Ticket templates could not be initialized: " + err.Error(),
			Status:  http.StatusOK,
		}
	}
	if n == 0 {
		return ok(nil, "Ticket templates already initialized")
	}
	return ok(nil, fmt.Sprintf("Initialized %d ticket templates", n))
}
