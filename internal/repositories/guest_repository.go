package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"nightclub_backoffice/internal/models"
)

// GuestRepository defines the interface for guest-related database operations.
type GuestRepository interface {
	CreateGuest(ctx context.Context, executor SQLExecutor, guest *models.Guest) error
	GetGuestByID(ctx context.Context, executor SQLExecutor, id string) (*models.Guest, error)
	GetGuests(ctx context.Context, executor SQLExecutor, page, pageSize int, searchTerm *string) ([]models.Guest, int, error)
	UpdateGuest(ctx context.Context, executor SQLExecutor, guest *models.Guest) error
	DeleteGuest(ctx context.Context, executor SQLExecutor, id string) error
	// CountReferences returns how many orders and payments point at the guest.
	CountReferences(ctx context.Context, executor SQLExecutor, id string) (orders int, payments int, err error)
	CountGuests(ctx context.Context, executor SQLExecutor) (int, error)
}

type guestRepository struct{}

// NewGuestRepository creates a new instance of GuestRepository.
func NewGuestRepository() GuestRepository {
	return &guestRepository{}
}

const guestColumns = `id, full_name, phone, email, date_of_birth, vip, notes, created_at, updated_at`

func scanGuest(s scanner, g *models.Guest, extra ...interface{}) error {
	var phone, email, notes sql.NullString
	var dob sql.NullTime
	dest := []interface{}{&g.ID, &g.FullName, &phone, &email, &dob, &g.VIP, &notes, &g.CreatedAt, &g.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	if phone.Valid {
		g.Phone = &phone.String
	}
	if email.Valid {
		g.Email = &email.String
	}
	if dob.Valid {
		t := dob.Time
		g.DateOfBirth = &t
	}
	if notes.Valid {
		g.Notes = &notes.String
	}
	return nil
}

// CreateGuest inserts a new guest into the database.
func (r *guestRepository) CreateGuest(ctx context.Context, executor SQLExecutor, guest *models.Guest) error {
	query := `INSERT INTO guests (` + guestColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	currentTime := time.Now().UTC()
	if guest.CreatedAt.IsZero() {
		guest.CreatedAt = currentTime
	}
	if guest.UpdatedAt.IsZero() {
		guest.UpdatedAt = currentTime
	}

	_, err := executor.ExecContext(ctx, query,
		guest.ID, guest.FullName, guest.Phone, guest.Email, guest.DateOfBirth,
		guest.VIP, guest.Notes, guest.CreatedAt, guest.UpdatedAt,
	)
	if err != nil {
		return classify(err, "creating guest")
	}
	return nil
}

// GetGuestByID retrieves a guest by their ID.
func (r *guestRepository) GetGuestByID(ctx context.Context, executor SQLExecutor, id string) (*models.Guest, error) {
	guest := &models.Guest{}
	err := scanGuest(executor.QueryRowContext(ctx, `SELECT `+guestColumns+` FROM guests WHERE id = $1`, id), guest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting guest by ID %s: %v", ErrDatabaseError, id, err)
	}
	return guest, nil
}

// GetGuests retrieves a list of guests with pagination and optional search.
func (r *guestRepository) GetGuests(ctx context.Context, executor SQLExecutor, page, pageSize int, searchTerm *string) ([]models.Guest, int, error) {
	guests := []models.Guest{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + guestColumns + `, COUNT(*) OVER() AS total_count FROM guests`)

	var args []interface{}
	argCount := 1

	if searchTerm != nil && *searchTerm != "" {
		searchPattern := "%" + strings.ToLower(*searchTerm) + "%"
		queryBuilder.WriteString(fmt.Sprintf(
			" WHERE (LOWER(full_name) LIKE $%d OR LOWER(COALESCE(phone, '')) LIKE $%d OR LOWER(COALESCE(email, '')) LIKE $%d)",
			argCount, argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}

	queryBuilder.WriteString(" ORDER BY full_name ASC, id ASC")
	clause, args := pageClause(page, pageSize, argCount, args)
	queryBuilder.WriteString(clause)

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying guests: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var guest models.Guest
		if err := scanGuest(rows, &guest, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning guest: %v", ErrDatabaseError, err)
		}
		guests = append(guests, guest)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating guest rows: %v", ErrDatabaseError, err)
	}
	return guests, totalCount, nil
}

// UpdateGuest updates an existing guest in the database.
func (r *guestRepository) UpdateGuest(ctx context.Context, executor SQLExecutor, guest *models.Guest) error {
	query := `UPDATE guests SET
	            full_name = $1, phone = $2, email = $3, date_of_birth = $4,
	            vip = $5, notes = $6, updated_at = $7
	          WHERE id = $8`

	guest.UpdatedAt = time.Now().UTC()
	result, err := executor.ExecContext(ctx, query,
		guest.FullName, guest.Phone, guest.Email, guest.DateOfBirth,
		guest.VIP, guest.Notes, guest.UpdatedAt, guest.ID,
	)
	if err != nil {
		return classify(err, fmt.Sprintf("updating guest ID %s", guest.ID))
	}
	return rowsAffected(result, "updating guest ID "+guest.ID)
}

// DeleteGuest removes a guest from the database.
func (r *guestRepository) DeleteGuest(ctx context.Context, executor SQLExecutor, id string) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM guests WHERE id = $1`, id)
	if err != nil {
		return classify(err, fmt.Sprintf("deleting guest ID %s", id))
	}
	return rowsAffected(result, "deleting guest ID "+id)
}

func (r *guestRepository) CountReferences(ctx context.Context, executor SQLExecutor, id string) (int, int, error) {
	var orders, payments int
	query := `SELECT
	            (SELECT COUNT(*) FROM orders WHERE client_id = $1),
	            (SELECT COUNT(*) FROM payments WHERE guest_id = $1)`
	if err := executor.QueryRowContext(ctx, query, id).Scan(&orders, &payments); err != nil {
		return 0, 0, fmt.Errorf("%w: counting references to guest ID %s: %v", ErrDatabaseError, id, err)
	}
	return orders, payments, nil
}

func (r *guestRepository) CountGuests(ctx context.Context, executor SQLExecutor) (int, error) {
	var n int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM guests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting guests: %v", ErrDatabaseError, err)
	}
	return n, nil
}
