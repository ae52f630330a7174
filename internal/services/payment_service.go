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

// CreatePaymentRequest records money taken outside of an order (cover charge, deposit).
type CreatePaymentRequest struct {
	GuestID       string          `json:"guest_id"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash card transfer other"`
	Status        string          `json:"status" validate:"omitempty,oneof=completed pending failed refunded"`
	Items         *string         `json:"items"`
}

// UpdatePaymentStatusRequest changes the status of an existing payment.
type UpdatePaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed pending failed refunded"`
}

// PaymentService handles payments that are not created by order finalization.
type PaymentService interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error)
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	ListPayments(ctx context.Context, filters models.PaymentFilters) ([]models.Payment, int, error)
	UpdatePaymentStatus(ctx context.Context, id string, req UpdatePaymentStatusRequest) (*models.Payment, error)
}

type paymentService struct {
	paymentRepo repositories.PaymentRepository
	guestRepo   repositories.GuestRepository
	db          *sql.DB
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(pr repositories.PaymentRepository, gr repositories.GuestRepository, db *sql.DB) PaymentService {
	return &paymentService{paymentRepo: pr, guestRepo: gr, db: db}
}

func (s *paymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error) {
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = models.PaymentStatusCompleted
	}

	payment := &models.Payment{
		ID:            uuid.NewString(),
		Amount:        req.Amount.Round(2),
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		Items:         utils.TrimPtr(req.Items),
	}
	if id := strings.TrimSpace(req.GuestID); id != "" && id != anonymousClient {
		if _, err := s.guestRepo.GetGuestByID(ctx, s.db, id); err != nil {
			return nil, notFoundOr(err, "guest", id, "failed to verify guest")
		}
		payment.GuestID = &id
	}

	if err := s.paymentRepo.CreatePayment(ctx, s.db, payment); err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return nil, &NotFoundError{Resource: "guest", ID: req.GuestID}
		}
		return nil, persistence("failed to create payment", err)
	}
	return payment, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetPaymentByID(ctx, s.db, id)
	if err != nil {
		return nil, notFoundOr(err, "payment", id, "failed to get payment")
	}
	return payment, nil
}

func (s *paymentService) ListPayments(ctx context.Context, filters models.PaymentFilters) ([]models.Payment, int, error) {
	if filters.Status != nil && *filters.Status != "" && !models.IsValidPaymentStatus(*filters.Status) {
		return nil, 0, NewValidationError("status", "is not a valid payment status")
	}
	if filters.Method != nil && *filters.Method != "" && !models.IsValidPaymentMethod(*filters.Method) {
		return nil, 0, NewValidationError("method", "is not a valid payment method")
	}
	payments, total, err := s.paymentRepo.GetPayments(ctx, s.db, filters)
	if err != nil {
		return nil, 0, persistence("failed to list payments", err)
	}
	return payments, total, nil
}

func (s *paymentService) UpdatePaymentStatus(ctx context.Context, id string, req UpdatePaymentStatusRequest) (*models.Payment, error) {
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.UpdatePaymentStatus(ctx, s.db, id, req.Status); err != nil {
		return nil, notFoundOr(err, "payment", id, "failed to update payment status")
	}
	return s.GetPayment(ctx, id)
}
