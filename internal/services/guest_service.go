package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"nightclub_backoffice/internal/models"
	"nightclub_backoffice/internal/repositories"
	"nightclub_backoffice/pkg/utils"
)

// GuestRequest carries the editable fields of a guest record.
type GuestRequest struct {
	FullName    string  `json:"full_name" validate:"required,min=2"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email" validate:"omitempty,email"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	VIP         bool    `json:"vip"`
	Notes       *string `json:"notes"`
}

func (r *GuestRequest) normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = utils.TrimPtr(r.Phone)
	r.Email = utils.TrimPtr(r.Email)
	r.DateOfBirth = utils.TrimPtr(r.DateOfBirth)
	r.Notes = utils.TrimPtr(r.Notes)
}

func (r GuestRequest) apply(g *models.Guest) {
	g.FullName = r.FullName
	g.Phone = r.Phone
	g.Email = r.Email
	g.VIP = r.VIP
	g.Notes = r.Notes
	g.DateOfBirth = nil
	if r.DateOfBirth != nil {
		if dob, err := time.Parse("2006-01-02", *r.DateOfBirth); err == nil {
			g.DateOfBirth = &dob
		}
	}
}

// GuestService defines the interface for guest-related business logic.
type GuestService interface {
	CreateGuest(ctx context.Context, req GuestRequest) (*models.Guest, error)
	GetGuest(ctx context.Context, id string) (*models.Guest, error)
	ListGuests(ctx context.Context, page, pageSize int, search *string) ([]models.Guest, int, error)
	UpdateGuest(ctx context.Context, id string, req GuestRequest) (*models.Guest, error)
	DeleteGuest(ctx context.Context, id string) error
}

type guestService struct {
	repo repositories.GuestRepository
	db   *sql.DB
}

// NewGuestService creates a new instance of GuestService.
func NewGuestService(repo repositories.GuestRepository, db *sql.DB) GuestService {
	return &guestService{repo: repo, db: db}
}

func (s *guestService) CreateGuest(ctx context.Context, req GuestRequest) (*models.Guest, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	guest := &models.Guest{ID: uuid.NewString()}
	req.apply(guest)
	if err := s.repo.CreateGuest(ctx, s.db, guest); err != nil {
		return nil, guestWriteError(err, "failed to create guest")
	}
	return guest, nil
}

func (s *guestService) GetGuest(ctx context.Context, id string) (*models.Guest, error) {
	guest, err := s.repo.GetGuestByID(ctx, s.db, id)
	if err != nil {
		return nil, notFoundOr(err, "guest", id, "failed to get guest")
	}
	return guest, nil
}

func (s *guestService) ListGuests(ctx context.Context, page, pageSize int, search *string) ([]models.Guest, int, error) {
	guests, total, err := s.repo.GetGuests(ctx, s.db, page, pageSize, utils.TrimPtr(search))
	if err != nil {
		return nil, 0, persistence("failed to list guests", err)
	}
	return guests, total, nil
}

func (s *guestService) UpdateGuest(ctx context.Context, id string, req GuestRequest) (*models.Guest, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	guest, err := s.repo.GetGuestByID(ctx, s.db, id)
	if err != nil {
		return nil, notFoundOr(err, "guest", id, "failed to get guest")
	}
	req.apply(guest)
	if err := s.repo.UpdateGuest(ctx, s.db, guest); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "guest", ID: id}
		}
		return nil, guestWriteError(err, "failed to update guest")
	}
	return guest, nil
}

// DeleteGuest refuses to remove guests that orders or payments still point at.
func (s *guestService) DeleteGuest(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence("failed to start database transaction", err)
	}
	defer tx.Rollback()

	if _, err := s.repo.GetGuestByID(ctx, tx, id); err != nil {
		return notFoundOr(err, "guest", id, "failed to get guest")
	}
	orders, payments, err := s.repo.CountReferences(ctx, tx, id)
	if err != nil {
		return persistence("failed to check guest references", err)
	}
	if orders > 0 || payments > 0 {
		return &ConflictError{
			Resource: "guest",
			Reason:   fmt.Sprintf("guest has %d order(s) and %d payment(s)", orders, payments),
		}
	}
	if err := s.repo.DeleteGuest(ctx, tx, id); err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return &ConflictError{Resource: "guest", Reason: "guest is still referenced"}
		}
		return notFoundOr(err, "guest", id, "failed to delete guest")
	}
	if err := tx.Commit(); err != nil {
		return persistence("failed to commit guest delete", err)
	}
	return nil
}

func guestWriteError(err error, op string) error {
	if errors.Is(err, repositories.ErrDuplicateKey) {
		return &ConflictError{Resource: "guest", Reason: "a guest with this phone number already exists"}
	}
	return persistence(op, err)
}
