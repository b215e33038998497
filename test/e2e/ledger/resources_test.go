package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/ledger/pkg/ledgersdk"
)

func ptr[T any](v T) *T { return &v }

// TestAccountLifecycle creates, lists, summarises and deletes an account.
func TestAccountLifecycle(t *testing.T) {
	baseURL := setupBackendContainer(t)

	session, _ := newSession(baseURL)
	registerUser(t, session)
	accounts := session.Client().Accounts()

	created := accounts.Create(t.Context(), ledgersdk.AccountInput{
		Name:        ptr("Everyday"),
		AccountType: ptr("checking"),
		Currency:    ptr("AUD"),
		Balance:     ptr("250.00"),
	})
	require.True(t, created.Success, "%s %v", created.Error, created.Errors)

	list := accounts.List(t.Context(), ledgersdk.AccountFilter{Currency: "AUD"})
	require.True(t, list.Success, list.Error)
	require.Len(t, list.Data.Results, 1)

	summary := accounts.Summary(t.Context())
	require.True(t, summary.Success, summary.Error)
	require.Contains(t, summary.Data, "AUD")

	invalid := accounts.Create(t.Context(), ledgersdk.AccountInput{Name: ptr("")})
	require.False(t, invalid.Success)
	require.NotEmpty(t, invalid.Errors)

	require.True(t, accounts.Delete(t.Context(), created.Data.ID).Success)
}

// TestAPITokenLifecycle creates and revokes a personal API token.
func TestAPITokenLifecycle(t *testing.T) {
	baseURL := setupBackendContainer(t)

	session, _ := newSession(baseURL)
	registerUser(t, session)
	tokens := session.Client().APITokens()

	created := tokens.Create(t.Context(), "e2e")
	require.True(t, created.Success, created.Error)
	require.NotEmpty(t, created.Data.Token)

	require.True(t, tokens.Delete(t.Context(), created.Data.ID).Success)

	alerts := session.Client().Alerts().Count(t.Context())
	require.True(t, alerts.Success, alerts.Error)
	require.Zero(t, alerts.Data.Count)
}
