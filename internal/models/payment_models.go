package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusCompleted = "completed"
	PaymentStatusPending   = "pending"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodOther    = "other"
)

// IsValidPaymentStatus checks if the provided status string is a valid payment status.
func IsValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusCompleted, PaymentStatusPending, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// IsValidPaymentMethod checks if the provided method is one the club accepts.
func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodOther:
		return true
	default:
		return false
	}
}

// Payment records money received, either for an order or standalone (cover charge, deposit).
type Payment struct {
	ID            string          `json:"id" db:"id"`
	GuestID       *string         `json:"guest_id,omitempty" db:"guest_id"`
	OrderID       *string         `json:"order_id,omitempty" db:"order_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate   time.Time       `json:"payment_date" db:"payment_date"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	Status        string          `json:"status" db:"status"`
	Items         *string         `json:"items,omitempty" db:"items"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// PaymentFilters narrows payment listings. From/To bound payment_date.
type PaymentFilters struct {
	GuestID  *string
	Status   *string
	Method   *string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
