package ledgersdk

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestFilterQueries(t *testing.T) {
	t.Parallel()

	require.Equal(t, url.Values{
		"account_type": {"savings"},
		"is_active":    {"false"},
		"ordering":     {"-balance"},
	}, AccountFilter{AccountType: "savings", IsActive: ptr(false), Ordering: "-balance"}.values().values())

	require.Equal(t, url.Values{
		"type":         {"expense"},
		"account":      {"4"},
		"is_recurring": {"true"},
		"page":         {"2"},
	}, TransactionFilter{Type: "expense", Account: ptr(int64(4)), IsRecurring: ptr(true), Page: 2}.values().values())

	require.Empty(t, BudgetFilter{}.values().values())
}

func TestAccounts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.login(t)
	env.srv.Seed("alice", "accounts", map[string]any{
		"name": "Checking", "account_type": "checking", "currency": "CHF", "balance": "1200.50", "is_active": true,
	})
	env.srv.Seed("alice", "accounts", map[string]any{
		"name": "Travel", "account_type": "savings", "currency": "EUR", "balance": "300.00", "is_active": true,
	})
	accounts := env.client.Accounts()

	all := accounts.List(t.Context(), AccountFilter{})
	require.True(t, all.Success, all.Error)
	require.Equal(t, 2, all.Data.Count)

	chf := accounts.List(t.Context(), AccountFilter{Currency: "CHF"})
	require.True(t, chf.Success)
	require.Len(t, chf.Data.Results, 1)
	require.Equal(t, "1200.50", chf.Data.Results[0].Balance)

	one := accounts.Get(t.Context(), chf.Data.Results[0].ID)
	require.True(t, one.Success)
	require.Equal(t, "Checking", one.Data.Name)

	summary := accounts.Summary(t.Context())
	require.True(t, summary.Success)
	require.InDelta(t, 1200.50, summary.Data["CHF"].Total, 0.001)
	require.Equal(t, 1, summary.Data["EUR"].Count)

	created := accounts.Create(t.Context(), AccountInput{
		Name: ptr("Cash"), AccountType: ptr("cash"), Currency: ptr("CHF"),
	})
	require.True(t, created.Success, created.Error)
	require.Equal(t, "Cash", created.Data.Name)

	del := accounts.Delete(t.Context(), created.Data.ID)
	require.True(t, del.Success)

	missing := accounts.Get(t.Context(), created.Data.ID)
	require.False(t, missing.Success)
	require.Equal(t, "No account matches the given query.", missing.Error)
	require.True(t, env.session.IsAuthenticated(), "404 does not end the session")
}

func TestAccountsCreateValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.login(t)

	res := env.client.Accounts().Create(t.Context(), AccountInput{Name: ptr("No type")})
	require.False(t, res.Success)
	require.Equal(t, "Failed to create account", res.Error)
	require.Equal(t, []string{"This field is required."}, res.Errors["account_type"])
	require.Equal(t, []string{"This field is required."}, res.Errors["currency"])
}

func TestTransactionStatistics(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.login(t)
	env.srv.Seed("alice", "transactions", map[string]any{"type": "income", "amount": "5000.00", "date": "2026-03-01"})
	env.srv.Seed("alice", "transactions", map[string]any{"type": "expense", "amount": "120.00", "date": "2026-03-02"})
	env.srv.Seed("alice", "transactions", map[string]any{"type": "expense", "amount": "80.00", "date": "2026-04-02"})

	res := env.client.Transactions().Statistics(t.Context(), DateRange{Start: "2026-03-01", End: "2026-03-31"})
	require.True(t, res.Success, res.Error)
	require.InDelta(t, 5000.0, res.Data.Income.Total, 0.001)
	require.Equal(t, 1, res.Data.Expense.Count)
	require.InDelta(t, 4880.0, res.Data.Net, 0.001)
}

func TestBudgetsSummary(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.login(t)
	env.srv.Seed("alice", "budgets", map[string]any{"name": "Food", "amount": "600.00", "spent_amount": 150.0, "is_active": true})

	res := env.client.Budgets().Summary(t.Context())
	require.True(t, res.Success, res.Error)
	require.Equal(t, 1, res.Data.TotalBudgets)
	require.InDelta(t, 25.0, res.Data.PercentageUsed, 0.001)
}

func TestAlerts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.login(t)
	id := env.srv.Seed("alice", "alerts", map[string]any{
		"type":    "unknown_category",
		"payload": map[string]any{"transaction_id": 9, "category_name": "Pets", "amount": "42.00", "label": "Vet"},
		"seen":    false,
	})
	alerts := env.client.Alerts()

	list := alerts.List(t.Context())
	require.True(t, list.Success, list.Error)
	require.Len(t, list.Data, 1)
	require.Equal(t, "Pets", list.Data[0].Payload.CategoryName)

	require.Equal(t, 1, alerts.Count(t.Context()).Data.Count)
	require.True(t, alerts.Dismiss(t.Context(), id).Success)
	require.Zero(t, alerts.Count(t.Context()).Data.Count)
}

func TestAPITokens(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.login(t)
	tokens := env.client.APITokens()

	created := tokens.Create(t.Context(), "shortcuts")
	require.True(t, created.Success, created.Error)
	require.NotEmpty(t, created.Data.Token, "secret only shown on create")

	list := tokens.List(t.Context())
	require.True(t, list.Success)
	require.Len(t, list.Data, 1)
	require.Empty(t, list.Data[0].Token)

	require.True(t, tokens.Delete(t.Context(), created.Data.ID).Success)
	require.Empty(t, tokens.List(t.Context()).Data)

	invalid := tokens.Create(t.Context(), "")
	require.False(t, invalid.Success)
	require.Contains(t, invalid.Errors, "name")
}

func TestResourceCallWhileSignedOut(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	res := env.client.Alerts().Count(t.Context())
	require.False(t, res.Success)
	require.Equal(t, "Authentication credentials were not provided.", res.Error)
	require.Equal(t, []navCall{{route: LoginRoute, replace: true}}, env.nav.Calls())
	require.Equal(t, 1, env.srv.Calls(http.MethodGet, "/alerts/count/"))
}
