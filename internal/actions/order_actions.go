package actions

import (
	"context"

	"nightclub_backoffice/internal/models"
	"nightclub_backoffice/internal/services"
)

type orderQuery struct {
	PageQuery
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
	Date     string `json:"date"`
}

// PaidOrder is returned by MarkOrderAsPaid.
type PaidOrder struct {
	Order   *models.Order   `json:"order"`
	Payment *models.Payment `json:"payment"`
}

func (a *Actions) CreateOrder(ctx context.Context, in Input) Result {
	var req services.CreateOrderRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	order, err := a.orders.CreateOrder(ctx, req)
	if err != nil {
		return fail(err, "Failed to create order")
	}
	return created(order, "Order created")
}

func (a *Actions) GetOrder(ctx context.Context, id string) Result {
	order, err := a.orders.GetOrder(ctx, id)
	if err != nil {
		return fail(err, "Failed to retrieve order")
	}
	return ok(order, "")
}

func (a *Actions) ListOrders(ctx context.Context, in Input) Result {
	var q orderQuery
	if fields := decode(in, &q); fields != nil {
		return invalid(fields)
	}
	page, size := q.normalized()
	orders, total, err := a.orders.ListOrders(ctx, models.OrderFilters{
		ClientID: optional(q.ClientID),
		Status:   optional(q.Status),
		Date:     optional(q.Date),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return fail(err, "Failed to retrieve orders")
	}
	return ok(Page{Items: orders, Total: total, Page: page, PageSize: size}, "")
}

func (a *Actions) AddOrderItem(ctx context.Context, orderID string, in Input) Result {
	var req services.AddOrderItemRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	order, err := a.orders.AddOrderItem(ctx, orderID, req)
	if err != nil {
		return fail(err, "Failed to add order item")
	}
	return ok(order, "Item added to order")
}

func (a *Actions) RemoveOrderItem(ctx context.Context, orderID, itemID string) Result {
	order, err := a.orders.RemoveOrderItem(ctx, orderID, itemID)
	if err != nil {
		return fail(err, "Failed to remove order item")
	}
	return ok(order, "Item removed from order")
}

func (a *Actions) UpdateOrderStatus(ctx context.Context, orderID string, in Input) Result {
	var req services.UpdateOrderStatusRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	order, err := a.orders.UpdateOrderStatus(ctx, orderID, req)
	if err != nil {
		return fail(err, "Failed to update order status")
	}
	return ok(order, "Order status updated")
}

func (a *Actions) MarkOrderAsPaid(ctx context.Context, orderID string, in Input) Result {
	var req services.MarkOrderPaidRequest
	if fields := decode(in, &req); fields != nil {
		return invalid(fields)
	}
	order, payment, err := a.orders.MarkOrderAsPaid(ctx, orderID, req)
	if err != nil {
		return fail(err, "Failed to mark order as paid")
	}
	return ok(PaidOrder{Order: order, Payment: payment}, "Order marked as paid")
}

func (a *Actions) DeleteOrder(ctx context.Context, orderID string) Result {
	if err := a.orders.DeleteOrder(ctx, orderID); err != nil {
		return fail(err, "Failed to delete order")
	}
	return ok(nil, "Order deleted")
}
