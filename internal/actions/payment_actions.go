package actions

import (
	"context"
	"time"

	"nightclub_backoffice/internal/models"
	"nightclub_backoffice/internal/services"
)

type paymentQuery struct {
	PageQuery
	GuestID string     `json:"guest_id"`
	Status  string     `json:"status"`
	Method  string     `json:"method"`
	From    *time.Time `json:"from"`
	To      *time.Time `json:"to"`
}

func (a *Actions) ListPayments(ctx context.Context, in Input) Result {
	var q paymentQuery
	if fields := decode(in, &q); fields != nil {
		return invalid(fields)
	}
	page, size := q.normalized()
	payments, total, err := a.payments.ListPayments(ctx, models.PaymentFilters{
		GuestID:  optional(q.GuestID),
		Status:   optional(q.Status),
		Method:   optional(q.Method),
		From:     q.From,
		To:       q.To,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return fail(err, "Failed to retrieve payments")
	}
	return ok(Page{Items: payments, Total: total, Page: page, PageSize: size}, "")
}

func (a *Actions) GetPayment(ctx context.Context, id string) Result {
	payment, err := a.payments.GetPayment(ctx, id)
	if err != nil {
		return fail(err, "Failed to retrieve payment")
	}
	return ok(payment, "")
}

func (a *Actions) CreatePayment(ctx context.Context, in Input) Result {
	var req services.CreatePaymentRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	payment, err := a.payments.CreatePayment(ctx, req)
	if err != nil {
		return fail(err, "Failed to create payment")
	}
	return created(payment, "Payment recorded")
}

func (a *Actions) UpdatePaymentStatus(ctx context.Context, id string, in Input) Result {
	var req services.UpdatePaymentStatusRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	payment, err := a.payments.UpdatePaymentStatus(ctx, id, req)
	if err != nil {
		return fail(err, "Failed to update payment status")
	}
	return ok(payment, "Payment status updated")
}
