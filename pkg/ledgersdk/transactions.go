package ledgersdk

import (
	"context"
	"fmt"
	"net/http"
)

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	Type        string
	Account     *int64
	Category    *int64
	Date        string
	IsRecurring *bool
	Search      string
	Ordering    string
	Page        int
}

func (f TransactionFilter) values() query {
	q := query{}
	q.str("type", f.Type)
	q.id("account", f.Account)
	q.id("category", f.Category)
	q.str("date", f.Date)
	q.boolean("is_recurring", f.IsRecurring)
	q.str("search", f.Search)
	q.str("ordering", f.Ordering)
	q.num("page", f.Page)
	return q
}

// DateRange bounds aggregate queries. Dates are YYYY-MM-DD; empty means
// unbounded.
type DateRange struct {
	Start string
	End   string
}

func (r DateRange) values() query {
	q := query{}
	q.str("start_date", r.Start)
	q.str("end_date", r.End)
	return q
}

// Transactions groups the transaction endpoints.
type Transactions struct{ c *Client }

// Transactions returns the transaction endpoints.
func (c *Client) Transactions() *Transactions { return &Transactions{c: c} }

func (t *Transactions) List(ctx context.Context, f TransactionFilter) Envelope[Page[Transaction]] {
	return call[Page[Transaction]](ctx, t.c, "transactions_list", "/transactions/",
		RequestOptions{Query: f.values().values()}, "Failed to fetch transactions", false)
}

func (t *Transactions) Get(ctx context.Context, id int64) Envelope[Transaction] {
	return call[Transaction](ctx, t.c, "transactions_get", fmt.Sprintf("/transactions/%d/", id),
		RequestOptions{}, "Failed to fetch transaction", false)
}

func (t *Transactions) Create(ctx context.Context, in TransactionInput) Envelope[Transaction] {
	return call[Transaction](ctx, t.c, "transactions_create", "/transactions/",
		RequestOptions{Method: http.MethodPost, Body: in}, "Failed to create transaction", true)
}

func (t *Transactions) Update(ctx context.Context, id int64, in TransactionInput) Envelope[Transaction] {
	return call[Transaction](ctx, t.c, "transactions_update", fmt.Sprintf("/transactions/%d/", id),
		RequestOptions{Method: http.MethodPut, Body: in}, "Failed to update transaction", true)
}

func (t *Transactions) Delete(ctx context.Context, id int64) Envelope[struct{}] {
	return call[struct{}](ctx, t.c, "transactions_delete", fmt.Sprintf("/transactions/%d/", id),
		RequestOptions{Method: http.MethodDelete}, "Failed to delete transaction", false)
}

// Statistics returns income, expense and transfer totals over r.
func (t *Transactions) Statistics(ctx context.Context, r DateRange) Envelope[TransactionStats] {
	return call[TransactionStats](ctx, t.c, "transactions_statistics", "/transactions/statistics/",
		RequestOptions{Query: r.values().values()}, "Failed to fetch statistics", false)
}

// ByCategory breaks down totals of txType ("income" or "expense") by
// category.
func (t *Transactions) ByCategory(ctx context.Context, txType string, r DateRange) Envelope[[]CategoryTotal] {
	q := r.values()
	q.str("type", txType)
	return call[[]CategoryTotal](ctx, t.c, "transactions_by_category", "/transactions/by_category/",
		RequestOptions{Query: q.values()}, "Failed to fetch category breakdown", false)
}

// MonthlySummary returns per-month totals keyed by month number. A zero year
// lets the server pick the current one.
func (t *Transactions) MonthlySummary(ctx context.Context, year int) Envelope[map[int]MonthSummary] {
	q := query{}
	q.num("year", year)
	return call[map[int]MonthSummary](ctx, t.c, "transactions_monthly_summary", "/transactions/monthly_summary/",
		RequestOptions{Query: q.values()}, "Failed to fetch monthly summary", false)
}
