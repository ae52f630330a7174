package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"nightclub_backoffice/internal/models"

	"github.com/shopspring/decimal"
)

// PaymentRepository defines the interface for payment-related database operations.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, executor SQLExecutor, payment *models.Payment) error
	GetPaymentByID(ctx context.Context, executor SQLExecutor, id string) (*models.Payment, error)
	GetPaymentByOrderID(ctx context.Context, executor SQLExecutor, orderID string) (*models.Payment, error)
	GetPayments(ctx context.Context, executor SQLExecutor, filters models.PaymentFilters) ([]models.Payment, int, error)
	UpdatePaymentStatus(ctx context.Context, executor SQLExecutor, id, status string) error
	// CompletedTotals sums completed payments with payment_date in [from, to).
	CompletedTotals(ctx context.Context, executor SQLExecutor, from, to time.Time) (int, decimal.Decimal, error)
}

type paymentRepository struct{}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository() PaymentRepository {
	return &paymentRepository{}
}

const paymentColumns = `id, guest_id, order_id, amount, payment_date, payment_method, status, items, created_at, updated_at`

func scanPayment(s scanner, p *models.Payment, extra ...interface{}) error {
	var guestID, orderID, items sql.NullString
	dest := []interface{}{
		&p.ID, &guestID, &orderID, &p.Amount, &p.PaymentDate, &p.PaymentMethod, &p.Status, &items,
		&p.CreatedAt, &p.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	if guestID.Valid {
		p.GuestID = &guestID.String
	}
	if orderID.Valid {
		p.OrderID = &orderID.String
	}
	if items.Valid {
		p.Items = &items.String
	}
	return nil
}

func (r *paymentRepository) CreatePayment(ctx context.Context, executor SQLExecutor, payment *models.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now().UTC()
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = now
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	if payment.UpdatedAt.IsZero() {
		payment.UpdatedAt = now
	}

	_, err := executor.ExecContext(ctx, query,
		payment.ID, payment.GuestID, payment.OrderID, payment.Amount, payment.PaymentDate,
		payment.PaymentMethod, payment.Status, payment.Items, payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return classify(err, "creating payment")
	}
	return nil
}

func (r *paymentRepository) GetPaymentByID(ctx context.Context, executor SQLExecutor, id string) (*models.Payment, error) {
	p := &models.Payment{}
	err := scanPayment(executor.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting payment by ID %s: %v", ErrDatabaseError, id, err)
	}
	return p, nil
}

func (r *paymentRepository) GetPaymentByOrderID(ctx context.Context, executor SQLExecutor, orderID string) (*models.Payment, error) {
	p := &models.Payment{}
	err := scanPayment(executor.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting payment for order ID %s: %v", ErrDatabaseError, orderID, err)
	}
	return p, nil
}

func (r *paymentRepository) GetPayments(ctx context.Context, executor SQLExecutor, filters models.PaymentFilters) ([]models.Payment, int, error) {
	payments := []models.Payment{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + paymentColumns + `, COUNT(*) OVER() AS total_count FROM payments`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.GuestID != nil && *filters.GuestID != "" {
		conditions = append(conditions, fmt.Sprintf("guest_id = $%d", argCounter))
		args = append(args, *filters.GuestID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.Method != nil && *filters.Method != "" {
		conditions = append(conditions, fmt.Sprintf("payment_method = $%d", argCounter))
		args = append(args, *filters.Method)
		argCounter++
	}
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("payment_date >= $%d", argCounter))
		args = append(args, filters.From.UTC())
		argCounter++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("payment_date < $%d", argCounter))
		args = append(args, filters.To.UTC())
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY payment_date DESC, id")

	clause, args := pageClause(filters.Page, filters.PageSize, argCounter, args)
	queryBuilder.WriteString(clause)

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying payments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Payment
		if err := scanPayment(rows, &p, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning payment: %v", ErrDatabaseError, err)
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating payment rows: %v", ErrDatabaseError, err)
	}
	return payments, totalCount, nil
}

func (r *paymentRepository) UpdatePaymentStatus(ctx context.Context, executor SQLExecutor, id, status string) error {
	result, err := executor.ExecContext(ctx,
		`UPDATE payments SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return classify(err, fmt.Sprintf("updating payment status for ID %s", id))
	}
	return rowsAffected(result, "updating payment status for ID "+id)
}

func (r *paymentRepository) CompletedTotals(ctx context.Context, executor SQLExecutor, from, to time.Time) (int, decimal.Decimal, error) {
	rows, err := executor.QueryContext(ctx,
		`SELECT amount FROM payments WHERE status = $1 AND payment_date >= $2 AND payment_date < $3`,
		models.PaymentStatusCompleted, from.UTC(), to.UTC())
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("%w: querying completed payments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	count := 0
	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return 0, decimal.Zero, fmt.Errorf("%w: scanning payment amount: %v", ErrDatabaseError, err)
		}
		count++
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return 0, decimal.Zero, fmt.Errorf("%w: iterating payment amounts: %v", ErrDatabaseError, err)
	}
	return count, total, nil
}
