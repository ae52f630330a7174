package actions

import (
	"context"

	"nightclub_backoffice/internal/services"
)

type guestQuery struct {
	PageQuery
	Search string `json:"search"`
}

func (a *Actions) ListGuests(ctx context.Context, in Input) Result {
	var q guestQuery
	if fields := decode(in, &q); fields != nil {
		return invalid(fields)
	}
	page, size := q.normalized()
	guests, total, err := a.guests.ListGuests(ctx, page, size, optional(q.Search))
	if err != nil {
		return fail(err, "Failed to retrieve guests")
	}
	return ok(Page{Items: guests, Total: total, Page: page, PageSize: size}, "")
}

func (a *Actions) GetGuest(ctx context.Context, id string) Result {
	guest, err := a.guests.GetGuest(ctx, id)
	if err != nil {
		return fail(err, "Failed to retrieve guest")
	}
	return ok(guest, "")
}

func (a *Actions) CreateGuest(ctx context.Context, in Input) Result {
	var req services.GuestRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	guest, err := a.guests.CreateGuest(ctx, req)
	if err != nil {
		return fail(err, "Failed to create guest")
	}
	return created(guest, "Guest created")
}

func (a *Actions) UpdateGuest(ctx context.Context, id string, in Input) Result {
	var req services.GuestRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	guest, err := a.guests.UpdateGuest(ctx, id, req)
	if err != nil {
		return fail(err, "Failed to update guest")
	}
	return ok(guest, "Guest updated")
}

func (a *Actions) DeleteGuest(ctx context.Context, id string) Result {
	if err := a.guests.DeleteGuest(ctx, id); err != nil {
		return fail(err, "Failed to delete guest")
	}
	return ok(nil, "Guest deleted")
}
