package actions

import (
	"context"
	"time"
)

type dashboardQuery struct {
	Date *time.Time `json:"date"`
}

// DashboardSummary reports the numbers for the given date (YYYY-MM-DD), today when omitted.
func (a *Actions) DashboardSummary(ctx context.Context, in Input) Result {
	var q dashboardQuery
	if fields := decode(in, &q); fields != nil {
		return invalid(fields)
	}
	day := time.Now().UTC()
	if q.Date != nil {
		day = *q.Date
	}
	summary, err := a.reports.GetDashboardSummary(ctx, day)
	if err != nil {
		return fail(err, "Failed to build dashboard summary")
	}
	return ok(summary, "")
}
