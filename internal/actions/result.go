package actions

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/multierr"

	"nightclub_backoffice/internal/services"
	"nightclub_backoffice/pkg/utils"
)

// Input is a flat key/value bundle as submitted by a form. Nested collections
// (order items, ticket categories) may arrive either decoded or as JSON text.
type Input map[string]any

// Result is what every action returns. Actions never return a Go error.
type Result struct {
	Success     bool              `json:"success"`
	Data        any               `json:"data,omitempty"`
	Error       string            `json:"error,omitempty"`
	Code        string            `json:"code,omitempty"`
	Message     string            `json:"message,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`

	// Status is the HTTP status a transport should answer with.
	Status int `json:"-"`
}

// Page wraps one page of a listing.
type Page struct {
	Items    any `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Shortfall describes one item that could not be covered by stock.
type Shortfall struct {
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockCheck is returned when an order names unknown items as well as short ones.
type StockCheck struct {
	Missing    []string    `json:"missing"`
	Shortfalls []Shortfall `json:"shortfalls"`
}

func ok(data any, message string) Result {
	return Result{Success: true, Data: data, Message: message, Status: http.StatusOK}
}

func created(data any, message string) Result {
	return Result{Success: true, Data: data, Message: message, Status: http.StatusCreated}
}

func invalid(fields map[string]string) Result {
	return Result{
		Success:     false,
		Error:       "Validation failed",
		Code:        utils.ErrCodeValidationFailed,
		FieldErrors: fields,
		Status:      http.StatusBadRequest,
	}
}

// fail converts a service error into a Result.
func fail(err error, op string) Result {
	var (
		validationErr *services.ValidationError
		stockErr      *services.InsufficientStockError
		notFoundErr   *services.NotFoundError
		paidErr       *services.AlreadyPaidError
		transitionErr *services.StatusTransitionError
		conflictErr   *services.ConflictError
	)

	// Unknown items win over stock shortfalls: the request cannot succeed whatever the stock level.
	// Both kinds are still listed so the caller can fix every line at once.
	if errors.As(err, &notFoundErr) || errors.As(err, &stockErr) {
		var (
			shortfalls []Shortfall
			missing    []string
			messages   []string
		)
		for _, e := range multierr.Errors(err) {
			var (
				se *services.InsufficientStockError
				nf *services.NotFoundError
			)
			switch {
			case errors.As(e, &se):
				shortfalls = append(shortfalls, Shortfall{
					ItemID:    se.ItemID,
					ItemName:  se.ItemName,
					Requested: se.Requested,
					Available: se.Available,
				})
			case errors.As(e, &nf):
				missing = append(missing, nf.ID)
			}
			messages = append(messages, e.Error())
		}

		if len(missing) > 0 {
			res := Result{Error: "Not found", Code: utils.ErrCodeNotFound, Message: err.Error(), Status: http.StatusNotFound}
			if len(shortfalls) > 0 {
				res.Message = strings.Join(messages, "; ")
				res.Data = StockCheck{Missing: missing, Shortfalls: shortfalls}
			}
			return res
		}
		return Result{
			Error:   "Insufficient stock",
			Code:    utils.ErrCodeInsufficientStock,
			Message: strings.Join(messages, "; "),
			Data:    shortfalls,
			Status:  http.StatusConflict,
		}
	}

	switch {
	case errors.As(err, &validationErr):
		return invalid(validationErr.Fields)
	case errors.As(err, &paidErr):
		return Result{Error: "Order already paid", Code: utils.ErrCodeAlreadyPaid, Message: err.Error(), Status: http.StatusConflict}
	case errors.As(err, &transitionErr):
		return Result{Error: "Invalid status transition", Code: utils.ErrCodeConflict, Message: err.Error(), Status: http.StatusConflict}
	case errors.As(err, &conflictErr):
		return Result{Error: "Conflict", Code: utils.ErrCodeConflict, Message: err.Error(), Status: http.StatusConflict}
	}

	utils.LogError(err, op)
	return Result{
		Error:   "Internal server error",
		Code:    utils.ErrCodeInternalServerError,
		Message: op,
		Status:  http.StatusInternalServerError,
	}
}
