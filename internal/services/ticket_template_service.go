package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nightclub_backoffice/internal/models"
	"nightclub_backoffice/internal/repositories"
	"nightclub_backoffice/pkg/utils"
)

// TicketTemplateRequest carries the editable fields of a ticket template.
type TicketTemplateRequest struct {
	Name        string                  `json:"name" validate:"required,min=2"`
	Description *string                 `json:"description"`
	Categories  []models.TicketCategory `json:"categories" validate:"required,min=1,dive"`
	IsDefault   bool                    `json:"is_default"`
}

func (r *TicketTemplateRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = utils.TrimPtr(r.Description)
	for i := range r.Categories {
		c := &r.Categories[i]
		c.Name = strings.TrimSpace(c.Name)
		c.Description = utils.TrimPtr(c.Description)
		if c.Tickets == nil {
			c.Tickets = []models.TicketType{}
		}
		for j := range c.Tickets {
			c.Tickets[j].Name = strings.TrimSpace(c.Tickets[j].Name)
			c.Tickets[j].Price = c.Tickets[j].Price.Round(2)
		}
	}
}

// TicketTemplateService manages ticket templates. At most one template is the
// default at any time; whenever templates exist, one of them is.
type TicketTemplateService interface {
	ListTemplates(ctx context.Context) ([]models.TicketTemplate, error)
	GetTemplate(ctx context.Context, id string) (*models.TicketTemplate, error)
	CreateTemplate(ctx context.Context, req TicketTemplateRequest) (*models.TicketTemplate, error)
	UpdateTemplate(ctx context.Context, id string, req TicketTemplateRequest) (*models.TicketTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
	// InitializeTemplates seeds the stock templates into an empty store and reports how many were created.
	InitializeTemplates(ctx context.Context) (int, error)
}

type ticketTemplateService struct {
	repo repositories.TicketTemplateRepository
	db   *sql.DB
}

// NewTicketTemplateService creates a new instance of TicketTemplateService.
func NewTicketTemplateService(repo repositories.TicketTemplateRepository, db *sql.DB) TicketTemplateService {
	return &ticketTemplateService{repo: repo, db: db}
}

func (s *ticketTemplateService) ListTemplates(ctx context.Context) ([]models.TicketTemplate, error) {
	templates, err := s.repo.GetTemplates(ctx, s.db)
	if err != nil {
		return nil, persistence("failed to list ticket templates", err)
	}
	return templates, nil
}

func (s *ticketTemplateService) GetTemplate(ctx context.Context, id string) (*models.TicketTemplate, error) {
	tmpl, err := s.repo.GetTemplateByID(ctx, s.db, id)
	if err != nil {
		return nil, notFoundOr(err, "ticket template", id, "failed to get ticket template")
	}
	return tmpl, nil
}

func (s *ticketTemplateService) CreateTemplate(ctx context.Context, req TicketTemplateRequest) (*models.TicketTemplate, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	tmpl := &models.TicketTemplate{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Categories:  req.Categories,
		IsDefault:   req.IsDefault,
	}

	// A concurrent writer may claim the default between our clear and insert; one retry settles it.
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = s.insertTemplate(ctx, tmpl)
		if err == nil || !errors.Is(err, repositories.ErrDuplicateKey) {
			break
		}
		utils.LogWarn(err, "Default ticket template changed concurrently, retrying", map[string]interface{}{"attempt": attempt + 1})
	}
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, &ConflictError{Resource: "ticket template", Reason: "another template became default concurrently"}
		}
		return nil, persistence("failed to create ticket template", err)
	}
	return tmpl, nil
}

func (s *ticketTemplateService) insertTemplate(ctx context.Context, tmpl *models.TicketTemplate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	count, err := s.repo.CountTemplates(ctx, tx)
	if err != nil {
		return err
	}
	isDefault := tmpl.IsDefault || count == 0
	if isDefault {
		if err := s.repo.ClearDefault(ctx, tx, tmpl.ID); err != nil {
			return err
		}
	}
	tmpl.IsDefault = isDefault
	if err := s.repo.CreateTemplate(ctx, tx, tmpl); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *ticketTemplateService) UpdateTemplate(ctx context.Context, id string, req TicketTemplateRequest) (*models.TicketTemplate, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistence("failed to start database transaction", err)
	}
	defer tx.Rollback()

	current, err := s.repo.GetTemplateByID(ctx, tx, id)
	if err != nil {
		return nil, notFoundOr(err, "ticket template", id, "failed to get ticket template")
	}

	tmpl := &models.TicketTemplate{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Categories:  req.Categories,
		IsDefault:   req.IsDefault,
		CreatedAt:   current.CreatedAt,
	}

	switch {
	case req.IsDefault && !current.IsDefault:
		if err := s.repo.ClearDefault(ctx, tx, id); err != nil {
			return nil, persistence("failed to clear default ticket template", err)
		}
		if err := s.repo.UpdateTemplate(ctx, tx, tmpl); err != nil {
			return nil, s.writeError(err, "failed to update ticket template")
		}
	case !req.IsDefault && current.IsDefault:
		if err := s.repo.UpdateTemplate(ctx, tx, tmpl); err != nil {
			return nil, s.writeError(err, "failed to update ticket template")
		}
		if _, err := s.repo.PromoteFirst(ctx, tx, id); err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				return nil, s.writeError(err, "failed to promote default ticket template")
			}
			// Only template left: it stays the default.
			tmpl.IsDefault = true
			if err := s.repo.UpdateTemplate(ctx, tx, tmpl); err != nil {
				return nil, s.writeError(err, "failed to update ticket template")
			}
		}
	default:
		if err := s.repo.UpdateTemplate(ctx, tx, tmpl); err != nil {
			return nil, s.writeError(err, "failed to update ticket template")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, persistence("failed to commit ticket template", err)
	}
	return tmpl, nil
}

// DeleteTemplate removes a template; deleting the default promotes the first remaining one by name.
func (s *ticketTemplateService) DeleteTemplate(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence("failed to start database transaction", err)
	}
	defer tx.Rollback()

	current, err := s.repo.GetTemplateByID(ctx, tx, id)
	if err != nil {
		return notFoundOr(err, "ticket template", id, "failed to get ticket template")
	}
	if err := s.repo.DeleteTemplate(ctx, tx, id); err != nil {
		return notFoundOr(err, "ticket template", id, "failed to delete ticket template")
	}
	if current.IsDefault {
		promoted, err := s.repo.PromoteFirst(ctx, tx, id)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return s.writeError(err, "failed to promote default ticket template")
		}
		if promoted != "" {
			utils.LogInfo("Default ticket template promoted", map[string]interface{}{"deleted_id": id, "promoted_id": promoted})
		}
	}
	if err := tx.Commit(); err != nil {
		return persistence("failed to commit ticket template delete", err)
	}
	return nil
}

func (s *ticketTemplateService) writeError(err error, op string) error {
	if errors.Is(err, repositories.ErrDuplicateKey) {
		return &ConflictError{Resource: "ticket template", Reason: "another template became default concurrently"}
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return &NotFoundError{Resource: "ticket template"}
	}
	return persistence(op, err)
}

func (s *ticketTemplateService) InitializeTemplates(ctx context.Context) (int, error) {
	count, err := s.repo.CountTemplates(ctx, s.db)
	if err != nil {
		return 0, persistence("failed to count ticket templates", err)
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	for _, req := range DefaultTicketTemplates() {
		if _, err := s.CreateTemplate(ctx, req); err != nil {
			return created, err
		}
		created++
	}
	utils.LogInfo("Ticket templates initialized", map[string]interface{}{"created": created})
	return created, nil
}

// DefaultTicketTemplates returns the templates seeded into an empty store.
func DefaultTicketTemplates() []TicketTemplateRequest {
	price := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	standardDesc := "Regular club night pricing"
	eventDesc := "Pricing for headliner and themed nights"
	gaDesc := "Entry to the main floor"
	vipDesc := "Entry plus VIP lounge access"
	tableDesc := "Reserved table with bottle service"

	return []TicketTemplateRequest{
		{
			Name:        "Standard Nightclub",
			Description: &standardDesc,
			IsDefault:   true,
			Categories: []models.TicketCategory{
				{
					Name:        "General Admission",
					Description: &gaDesc,
					Tickets: []models.TicketType{
						{Name: "Early Bird", Price: price(15), Available: true},
						{Name: "Standard", Price: price(25), Available: true},
						{Name: "At the Door", Price: price(30), Available: true},
					},
				},
				{
					Name:        "VIP",
					Description: &vipDesc,
					Tickets: []models.TicketType{
						{Name: "VIP Entry", Price: price(60), Available: true},
					},
				},
			},
		},
		{
			Name:        "Special Event",
			Description: &eventDesc,
			Categories: []models.TicketCategory{
				{
					Name:        "General Admission",
					Description: &gaDesc,
					Tickets: []models.TicketType{
						{Name: "Presale", Price: price(35), Available: true},
						{Name: "Standard", Price: price(45), Available: true},
					},
				},
				{
					Name:        "VIP",
					Description: &vipDesc,
					Tickets: []models.TicketType{
						{Name: "VIP Entry", Price: price(90), Available: true},
					},
				},
				{
					Name:        "Tables",
					Description: &tableDesc,
					Tickets: []models.TicketType{
						{Name: "Table for 4", Price: price(400), Available: true},
						{Name: "Table for 8", Price: price(750), Available: false},
					},
				},
			},
		},
	}
}
