package ledgersdk

import (
	"context"
	"fmt"
	"net/http"
)

// AccountFilter narrows an account listing.
type AccountFilter struct {
	AccountType string
	Currency    string
	IsActive    *bool
	Search      string
	Ordering    string
}

func (f AccountFilter) values() query {
	q := query{}
	q.str("account_type", f.AccountType)
	q.str("currency", f.Currency)
	q.boolean("is_active", f.IsActive)
	q.str("search", f.Search)
	q.str("ordering", f.Ordering)
	return q
}

// Accounts groups the account endpoints.
type Accounts struct{ c *Client }

// Accounts returns the account endpoints.
func (c *Client) Accounts() *Accounts { return &Accounts{c: c} }

func (a *Accounts) List(ctx context.Context, f AccountFilter) Envelope[Page[Account]] {
	return call[Page[Account]](ctx, a.c, "accounts_list", "/accounts/",
		RequestOptions{Query: f.values().values()}, "Failed to fetch accounts", false)
}

func (a *Accounts) Get(ctx context.Context, id int64) Envelope[Account] {
	return call[Account](ctx, a.c, "accounts_get", fmt.Sprintf("/accounts/%d/", id),
		RequestOptions{}, "Failed to fetch account", false)
}

func (a *Accounts) Create(ctx context.Context, in AccountInput) Envelope[Account] {
	return call[Account](ctx, a.c, "accounts_create", "/accounts/",
		RequestOptions{Method: http.MethodPost, Body: in}, "Failed to create account", true)
}

// Update applies a partial update.
func (a *Accounts) Update(ctx context.Context, id int64, in AccountInput) Envelope[Account] {
	return call[Account](ctx, a.c, "accounts_update", fmt.Sprintf("/accounts/%d/", id),
		RequestOptions{Method: http.MethodPatch, Body: in}, "Failed to update account", true)
}

func (a *Accounts) Delete(ctx context.Context, id int64) Envelope[struct{}] {
	return call[struct{}](ctx, a.c, "accounts_delete", fmt.Sprintf("/accounts/%d/", id),
		RequestOptions{Method: http.MethodDelete}, "Failed to delete account", false)
}

// Summary returns balances grouped by currency and account type.
func (a *Accounts) Summary(ctx context.Context) Envelope[AccountSummary] {
	return call[AccountSummary](ctx, a.c, "accounts_summary", "/accounts/summary/",
		RequestOptions{}, "Failed to fetch accounts summary", false)
}

func (a *Accounts) ToggleActive(ctx context.Context, id int64) Envelope[Account] {
	return call[Account](ctx, a.c, "accounts_toggle", fmt.Sprintf("/accounts/%d/toggle_active/", id),
		RequestOptions{Method: http.MethodPost}, "Failed to toggle account status", false)
}
