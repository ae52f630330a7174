package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nightclub_backoffice/internal/models"
)

// TicketTemplateRepository defines the interface for ticket template persistence.
type TicketTemplateRepository interface {
	CreateTemplate(ctx context.Context, executor SQLExecutor, tmpl *models.TicketTemplate) error
	GetTemplateByID(ctx context.Context, executor SQLExecutor, id string) (*models.TicketTemplate, error)
	GetTemplates(ctx context.Context, executor SQLExecutor) ([]models.TicketTemplate, error)
	UpdateTemplate(ctx context.Context, executor SQLExecutor, tmpl *models.TicketTemplate) error
	DeleteTemplate(ctx context.Context, executor SQLExecutor, id string) error
	CountTemplates(ctx context.Context, executor SQLExecutor) (int, error)
	// ClearDefault unsets is_default on every template except exceptID.
	ClearDefault(ctx context.Context, executor SQLExecutor, exceptID string) error
	// PromoteFirst marks the first template by name (other than exceptID) as default
	// and returns its id, or ErrNotFound when there is no candidate.
	PromoteFirst(ctx context.Context, executor SQLExecutor, exceptID string) (string, error)
}

type ticketTemplateRepository struct{}

// NewTicketTemplateRepository creates a new instance of TicketTemplateRepository.
func NewTicketTemplateRepository() TicketTemplateRepository {
	return &ticketTemplateRepository{}
}

// EncodeCategories renders categories as the JSON document stored in the categories column.
func EncodeCategories(categories []models.TicketCategory) (string, error) {
	if categories == nil {
		categories = []models.TicketCategory{}
	}
	b, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("encoding ticket categories: %w", err)
	}
	return string(b), nil
}

// DecodeCategories parses the stored JSON document back into categories.
func DecodeCategories(raw string) ([]models.TicketCategory, error) {
	categories := []models.TicketCategory{}
	if raw == "" {
		return categories, nil
	}
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		return nil, fmt.Errorf("decoding ticket categories: %w", err)
	}
	for i := range categories {
		if categories[i].Tickets == nil {
			categories[i].Tickets = []models.TicketType{}
		}
	}
	return categories, nil
}

const templateColumns = `id, name, description, categories, is_default, created_at, updated_at`

func scanTemplate(s scanner, t *models.TicketTemplate) error {
	var description sql.NullString
	var rawCategories string
	if err := s.Scan(&t.ID, &t.Name, &description, &rawCategories, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return err
	}
	if description.Valid {
		t.Description = &description.String
	}
	categories, err := DecodeCategories(rawCategories)
	if err != nil {
		return err
	}
	t.Categories = categories
	return nil
}

func (r *ticketTemplateRepository) CreateTemplate(ctx context.Context, executor SQLExecutor, tmpl *models.TicketTemplate) error {
	raw, err := EncodeCategories(tmpl.Categories)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = now
	}
	if tmpl.UpdatedAt.IsZero() {
		tmpl.UpdatedAt = now
	}

	query := `INSERT INTO ticket_templates (` + templateColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = executor.ExecContext(ctx, query,
		tmpl.ID, tmpl.Name, tmpl.Description, raw, tmpl.IsDefault, tmpl.CreatedAt, tmpl.UpdatedAt)
	if err != nil {
		return classify(err, "creating ticket template")
	}
	return nil
}

func (r *ticketTemplateRepository) GetTemplateByID(ctx context.Context, executor SQLExecutor, id string) (*models.TicketTemplate, error) {
	t := &models.TicketTemplate{}
	err := scanTemplate(executor.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM ticket_templates WHERE id = $1`, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting ticket template by ID %s: %v", ErrDatabaseError, id, err)
	}
	return t, nil
}

func (r *ticketTemplateRepository) GetTemplates(ctx context.Context, executor SQLExecutor) ([]models.TicketTemplate, error) {
	templates := []models.TicketTemplate{}
	rows, err := executor.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM ticket_templates ORDER BY is_default DESC, name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying ticket templates: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.TicketTemplate
		if err := scanTemplate(rows, &t); err != nil {
			return nil, fmt.Errorf("%w: scanning ticket template: %v", ErrDatabaseError, err)
		}
		templates = append(templates, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating ticket templates: %v", ErrDatabaseError, err)
	}
	return templates, nil
}

func (r *ticketTemplateRepository) UpdateTemplate(ctx context.Context, executor SQLExecutor, tmpl *models.TicketTemplate) error {
	raw, err := EncodeCategories(tmpl.Categories)
	if err != nil {
		return err
	}
	tmpl.UpdatedAt = time.Now().UTC()

	query := `UPDATE ticket_templates
	          SET name = $1, description = $2, categories = $3, is_default = $4, updated_at = $5
	          WHERE id = $6`
	result, err := executor.ExecContext(ctx, query,
		tmpl.Name, tmpl.Description, raw, tmpl.IsDefault, tmpl.UpdatedAt, tmpl.ID)
	if err != nil {
		return classify(err, fmt.Sprintf("updating ticket template ID %s", tmpl.ID))
	}
	return rowsAffected(result, "updating ticket template ID "+tmpl.ID)
}

func (r *ticketTemplateRepository) DeleteTemplate(ctx context.Context, executor SQLExecutor, id string) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM ticket_templates WHERE id = $1`, id)
	if err != nil {
		return classify(err, fmt.Sprintf("deleting ticket template ID %s", id))
	}
	return rowsAffected(result, "deleting ticket template ID "+id)
}

func (r *ticketTemplateRepository) CountTemplates(ctx context.Context, executor SQLExecutor) (int, error) {
	var n int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM ticket_templates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting ticket templates: %v", ErrDatabaseError, err)
	}
	return n, nil
}

func (r *ticketTemplateRepository) ClearDefault(ctx context.Context, executor SQLExecutor, exceptID string) error {
	_, err := executor.ExecContext(ctx,
		`UPDATE ticket_templates SET is_default = FALSE, updated_at = $1 WHERE is_default AND id <> $2`,
		time.Now().UTC(), exceptID)
	if err != nil {
		return classify(err, "clearing default ticket template")
	}
	return nil
}

func (r *ticketTemplateRepository) PromoteFirst(ctx context.Context, executor SQLExecutor, exceptID string) (string, error) {
	var id string
	query := `UPDATE ticket_templates SET is_default = TRUE, updated_at = $1
	          WHERE id = (SELECT id FROM ticket_templates WHERE id <> $2 ORDER BY name ASC, id ASC LIMIT 1)
	          RETURNING id`
	err := executor.QueryRowContext(ctx, query, time.Now().UTC(), exceptID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", classify(err, "promoting default ticket template")
	}
	return id, nil
}
