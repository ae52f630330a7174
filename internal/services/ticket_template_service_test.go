package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightclub_backoffice/internal/config"
	"nightclub_backoffice/internal/models"
)

func templateRequest(name string, isDefault bool) TicketTemplateRequest {
	return TicketTemplateRequest{
		Name:      name,
		IsDefault: isDefault,
		Categories: []models.TicketCategory{{
			Name: "General Admission",
			Tickets: []models.TicketType{
				{Name: "Standard", Price: decimal.RequireFromString("25.50"), Available: true},
			},
		}},
	}
}

func defaults(t *testing.T, env *testEnv) []string {
	t.Helper()
	templates, err := env.templates.ListTemplates(context.Background())
	require.NoError(t, err)
	var names []string
	for _, tmpl := range templates {
		if tmpl.IsDefault {
			names = append(names, tmpl.Name)
		}
	}
	return names
}

func TestCreateTemplate_SwapsDefault(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()

	a, err := env.templates.CreateTemplate(ctx, templateRequest("AA", true))
	require.NoError(t, err)
	b, err := env.templates.CreateTemplate(ctx, templateRequest("BB", true))
	require.NoError(t, err)

	reloadedA, err := env.templates.GetTemplate(ctx, a.ID)
	require.NoError(t, err)
	reloadedB, err := env.templates.GetTemplate(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, reloadedA.IsDefault)
	assert.True(t, reloadedB.IsDefault)
	assert.Equal(t, []string{"BB"}, defaults(t, env))

	templates, err := env.templates.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BB", templates[0].Name, "default listed first")
}

func TestCreateTemplate_FirstTemplateBecomesDefault(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)

	tmpl, err := env.templates.CreateTemplate(context.Background(), templateRequest("Weeknight", false))
	require.NoError(t, err)
	assert.True(t, tmpl.IsDefault)
}

func TestCreateTemplate_CategoriesRoundTrip(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()
	desc := "Lounge access"
	req := TicketTemplateRequest{
		Name: "Gala",
		Categories: []models.TicketCategory{
			{Name: "VIP", Description: &desc, Tickets: []models.TicketType{
				{Name: "Gold", Price: decimal.RequireFromString("120.00"), Available: true},
				{Name: "Platinum", Price: decimal.RequireFromString("199.99"), Available: false},
			}},
			{Name: "Guest List"},
		},
	}

	created, err := env.templates.CreateTemplate(ctx, req)
	require.NoError(t, err)
	got, err := env.templates.GetTemplate(ctx, created.ID)
	require.NoError(t, err)

	require.Len(t, got.Categories, 2)
	vip := got.Categories[0]
	assert.Equal(t, "VIP", vip.Name)
	require.NotNil(t, vip.Description)
	assert.Equal(t, desc, *vip.Description)
	require.Len(t, vip.Tickets, 2)
	assert.Equal(t, "Platinum", vip.Tickets[1].Name)
	assertDecimal(t, "199.99", vip.Tickets[1].Price)
	assert.False(t, vip.Tickets[1].Available)
	assert.Equal(t, "Guest List", got.Categories[1].Name)
	assert.NotNil(t, got.Categories[1].Tickets)
	assert.Empty(t, got.Categories[1].Tickets)
}

func TestCreateTemplate_Validation(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)

	_, err := env.templates.CreateTemplate(context.Background(), TicketTemplateRequest{Name: "X"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be at least 2 characters", verr.Fields["name"])
	assert.Equal(t, "is required", verr.Fields["categories"])

	_, err = env.templates.CreateTemplate(context.Background(), TicketTemplateRequest{
		Name: "Night",
		Categories: []models.TicketCategory{{
			Name:    " ",
			Tickets: []models.TicketType{{Name: "", Price: decimal.NewFromInt(-5)}},
		}},
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["categories[0].name"])
	assert.Equal(t, "is required", verr.Fields["categories[0].tickets[0].name"])
	assert.Equal(t, "must be 0 or more", verr.Fields["categories[0].tickets[0].price"])
}

func TestUpdateTemplate_UnsetDefaultPromotesByName(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()

	only, err := env.templates.CreateTemplate(ctx, templateRequest("Solo", true))
	require.NoError(t, err)
	updated, err := env.templates.UpdateTemplate(ctx, only.ID, templateRequest("Solo", false))
	require.NoError(t, err)
	assert.True(t, updated.IsDefault, "the only template stays default")

	_, err = env.templates.CreateTemplate(ctx, templateRequest("Zeta", false))
	require.NoError(t, err)
	_, err = env.templates.CreateTemplate(ctx, templateRequest("Alpha", false))
	require.NoError(t, err)

	_, err = env.templates.UpdateTemplate(ctx, only.ID, templateRequest("Solo", false))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, defaults(t, env))

	_, err = env.templates.UpdateTemplate(ctx, only.ID, templateRequest("Solo Renamed", true))
	require.NoError(t, err)
	assert.Equal(t, []string{"Solo Renamed"}, defaults(t, env))

	_, err = env.templates.UpdateTemplate(ctx, "missing", templateRequest("Ghost", false))
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestDeleteTemplate_PromotesNextDefault(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()

	def, err := env.templates.CreateTemplate(ctx, templateRequest("Main", true))
	require.NoError(t, err)
	_, err = env.templates.CreateTemplate(ctx, templateRequest("Later", false))
	require.NoError(t, err)
	_, err = env.templates.CreateTemplate(ctx, templateRequest("Early", false))
	require.NoError(t, err)

	require.NoError(t, env.templates.DeleteTemplate(ctx, def.ID))
	assert.Equal(t, []string{"Early"}, defaults(t, env))

	err = env.templates.DeleteTemplate(ctx, def.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestDeleteTemplate_LastOneLeavesNone(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()

	tmpl, err := env.templates.CreateTemplate(ctx, templateRequest("Only", true))
	require.NoError(t, err)
	require.NoError(t, env.templates.DeleteTemplate(ctx, tmpl.ID))
	assert.Zero(t, env.count(t, "ticket_templates"))
}

func TestInitializeTemplates_Idempotent(t *testing.T) {
	env := newTestEnv(t, config.StockPolicyReject)
	ctx := context.Background()

	created, err := env.templates.InitializeTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, []string{"Standard Nightclub"}, defaults(t, env))

	created, err = env.templates.InitializeTemplates(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, 2, env.count(t, "ticket_templates"))
}
