package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"nightclub_backoffice/internal/repositories"
)

// ValidationError carries one message per offending input field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InsufficientStockError reports a request for more units than are on hand.
type InsufficientStockError struct {
	ItemID    string
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (ID: %s). Requested: %d, Available: %d",
		e.ItemName, e.ItemID, e.Requested, e.Available)
}

// ConflictError reports a write blocked by the current state of other records.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Reason)
}

// AlreadyPaidError is returned when an order that is already paid is paid again.
type AlreadyPaidError struct {
	OrderID   string
	PaymentID string
}

func (e *AlreadyPaidError) Error() string {
	if e.PaymentID != "" {
		return fmt.Sprintf("order %s is already paid (payment %s)", e.OrderID, e.PaymentID)
	}
	return fmt.Sprintf("order %s is already paid", e.OrderID)
}

// StatusTransitionError is returned for an order status change the lifecycle forbids.
type StatusTransitionError struct {
	OrderID string
	From    string
	To      string
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("order %s cannot move from %s to %s", e.OrderID, e.From, e.To)
}

// PersistenceError wraps an unexpected storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// persistence wraps err as a PersistenceError unless it is already one of the typed errors above.
func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func isDomainError(err error) bool {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		stockErr      *InsufficientStockError
		conflictErr   *ConflictError
		paidErr       *AlreadyPaidError
		transitionErr *StatusTransitionError
		persistErr    *PersistenceError
	)
	return errors.As(err, &validationErr) ||
		errors.As(err, &notFoundErr) ||
		errors.As(err, &stockErr) ||
		errors.As(err, &conflictErr) ||
		errors.As(err, &paidErr) ||
		errors.As(err, &transitionErr) ||
		errors.As(err, &persistErr)
}

// notFoundOr maps repositories.ErrNotFound to a NotFoundError and anything else to a PersistenceError.
func notFoundOr(err error, resource, id, op string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return persistence(op, err)
}
