package ledgersdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// BudgetFilter narrows a budget listing.
type BudgetFilter struct {
	Period   string
	Category *int64
	IsActive *bool
	Search   string
}

func (f BudgetFilter) values() query {
	q := query{}
	q.str("period", f.Period)
	q.id("category", f.Category)
	q.boolean("is_active", f.IsActive)
	q.str("search", f.Search)
	return q
}

// Budgets groups the budget endpoints.
type Budgets struct{ c *Client }

// Budgets returns the budget endpoints.
func (c *Client) Budgets() *Budgets { return &Budgets{c: c} }

func (b *Budgets) List(ctx context.Context, f BudgetFilter) Envelope[Page[Budget]] {
	return call[Page[Budget]](ctx, b.c, "budgets_list", "/budgets/",
		RequestOptions{Query: f.values().values()}, "Failed to fetch budgets", false)
}

func (b *Budgets) Get(ctx context.Context, id int64) Envelope[Budget] {
	return call[Budget](ctx, b.c, "budgets_get", fmt.Sprintf("/budgets/%d/", id),
		RequestOptions{}, "Failed to fetch budget", false)
}

func (b *Budgets) Create(ctx context.Context, in BudgetInput) Envelope[Budget] {
	return call[Budget](ctx, b.c, "budgets_create", "/budgets/",
		RequestOptions{Method: http.MethodPost, Body: in}, "Failed to create budget", true)
}

func (b *Budgets) Update(ctx context.Context, id int64, in BudgetInput) Envelope[Budget] {
	return call[Budget](ctx, b.c, "budgets_update", fmt.Sprintf("/budgets/%d/", id),
		RequestOptions{Method: http.MethodPut, Body: in}, "Failed to update budget", true)
}

func (b *Budgets) Delete(ctx context.Context, id int64) Envelope[struct{}] {
	return call[struct{}](ctx, b.c, "budgets_delete", fmt.Sprintf("/budgets/%d/", id),
		RequestOptions{Method: http.MethodDelete}, "Failed to delete budget", false)
}

func (b *Budgets) Summary(ctx context.Context) Envelope[BudgetSummary] {
	return call[BudgetSummary](ctx, b.c, "budgets_summary", "/budgets/summary/",
		RequestOptions{}, "Failed to fetch budgets summary", false)
}

// DashboardData returns the planned-versus-actual view for the current
// month. The shape is owned by the dashboard, so it is left undecoded.
func (b *Budgets) DashboardData(ctx context.Context) Envelope[json.RawMessage] {
	return call[json.RawMessage](ctx, b.c, "budgets_dashboard", "/budgets/dashboard_data/",
		RequestOptions{}, "Failed to fetch budget dashboard data", false)
}

func (b *Budgets) ToggleActive(ctx context.Context, id int64) Envelope[Budget] {
	return call[Budget](ctx, b.c, "budgets_toggle", fmt.Sprintf("/budgets/%d/toggle_active/", id),
		RequestOptions{Method: http.MethodPost}, "Failed to toggle budget status", false)
}
