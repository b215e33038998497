package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/ledger/internal/fakeapi"
	"github.com/aussiebroadwan/ledger/pkg/ledgersdk"
)

type cliEnv struct {
	srv      *fakeapi.Server
	stateDir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	srv := fakeapi.New(t)
	srv.AddUser("alice", "correct")
	return &cliEnv{srv: srv, stateDir: t.TempDir()}
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes one CLI invocation. Each call opens the token store afresh,
// like separate processes would.
func (e *cliEnv) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	var out, errOut bytes.Buffer
	full := append([]string{"--api", e.srv.BaseURL(), "--state-dir", e.stateDir}, args...)
	err := Execute(t.Context(), full, strings.NewReader(stdin), &out, &errOut)
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func (e *cliEnv) login(t *testing.T) {
	t.Helper()
	res := e.run(t, "correct\n", "login", "-u", "alice")
	require.NoError(t, res.err, res.stderr)
}

func TestLoginSurvivesBetweenRuns(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)

	res := env.run(t, "correct\n", "login", "-u", "alice")
	require.NoError(t, res.err)
	require.Equal(t, "Logged in as alice\n", res.stdout)
	require.Contains(t, res.stderr, "Password: ")

	res = env.run(t, "", "whoami")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "alice@example.com")
	require.Equal(t, 2, env.srv.Calls(http.MethodGet, "/auth/me/"))
}

func TestLoginPromptsForUsername(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)

	res := env.run(t, "alice\ncorrect", "login")
	require.NoError(t, res.err)
	require.Contains(t, res.stderr, "Username: ")
	require.Equal(t, "Logged in as alice\n", res.stdout)
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)

	res := env.run(t, "wrong\n", "login", "-u", "alice")
	require.EqualError(t, res.err, "Invalid credentials.")
	require.NotContains(t, res.stderr, "Session expired")

	res = env.run(t, "", "whoami")
	require.ErrorIs(t, res.err, ledgersdk.ErrNotAuthenticated)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)

	res := env.run(t, "bob@example.com\nhunter22\nhunter22\n", "register", "-u", "bob", "--first-name", "Bob")
	require.NoError(t, res.err, res.stderr)
	require.Equal(t, "Registered and logged in as bob\n", res.stdout)

	res = env.run(t, "", "--json", "whoami")
	require.NoError(t, res.err)
	var u ledgersdk.User
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &u))
	require.Equal(t, "bob", u.Username)
	require.Equal(t, "Bob", u.FirstName)
}

func TestRegisterFieldErrors(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)

	res := env.run(t, "alice@example.com\none\ntwo\n", "register", "-u", "alice")
	require.Error(t, res.err)

	var envErr *envelopeError
	require.ErrorAs(t, res.err, &envErr)
	require.Contains(t, envErr.fields, "username")
	require.Contains(t, envErr.fields, "email")
	require.Contains(t, envErr.fields, "password")
	require.Contains(t, res.err.Error(), "\n  password: Password fields didn't match.")
}

func TestLogout(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)
	env.login(t)

	res := env.run(t, "", "logout")
	require.NoError(t, res.err)
	require.Equal(t, "Logged out\n", res.stdout)
	require.Equal(t, 1, env.srv.Calls(http.MethodPost, "/auth/logout/"))

	res = env.run(t, "", "whoami")
	require.ErrorIs(t, res.err, ledgersdk.ErrNotAuthenticated)
	require.Contains(t, res.err.Error(), "ledger login")
}

func TestLogoutWhenSignedOut(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)

	res := env.run(t, "", "logout")
	require.NoError(t, res.err)
	require.Zero(t, env.srv.TotalCalls())
}

func TestRefreshCommand(t *testing.T) {
	t.Parallel()

	t.Run("no session", func(t *testing.T) {
		t.Parallel()

		env := newCLIEnv(t)
		res := env.run(t, "", "refresh")
		require.ErrorIs(t, res.err, ledgersdk.ErrNotAuthenticated)
		require.Zero(t, env.srv.TotalCalls())
	})

	t.Run("refreshed", func(t *testing.T) {
		t.Parallel()

		env := newCLIEnv(t)
		env.login(t)

		res := env.run(t, "", "refresh")
		require.NoError(t, res.err)
		require.Equal(t, "Access token refreshed\n", res.stdout)
		require.Equal(t, 1, env.srv.Calls(http.MethodPost, "/auth/token/refresh/"))
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()

		env := newCLIEnv(t)
		env.login(t)
		env.srv.Respond(http.MethodPost, "/auth/token/refresh/", http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})

		res := env.run(t, "", "refresh")
		require.ErrorContains(t, res.err, "refresh rejected")

		res = env.run(t, "", "whoami")
		require.ErrorIs(t, res.err, ledgersdk.ErrNotAuthenticated)
	})
}

// Not parallel: the access lifetime comes from the environment.
func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	t.Setenv("LEDGER_ACCESS_TTL", "500ms")

	env := newCLIEnv(t)
	env.login(t)
	env.srv.Seed("alice", "accounts", map[string]any{"name": "Everyday", "account_type": "checking", "currency": "AUD", "balance": "10.00"})

	time.Sleep(600 * time.Millisecond)

	res := env.run(t, "", "accounts", "list")
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stdout, "Everyday")
	require.Equal(t, 1, env.srv.Calls(http.MethodPost, "/auth/token/refresh/"))
}

func TestCommandsRequireSession(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)

	for _, args := range [][]string{
		{"accounts", "list"},
		{"transactions", "stats"},
		{"budgets", "summary"},
		{"alerts", "count"},
		{"tokens", "list"},
		{"passkeys", "list"},
	} {
		res := env.run(t, "", args...)
		require.ErrorIs(t, res.err, ledgersdk.ErrNotAuthenticated, args)
	}
	require.Zero(t, env.srv.TotalCalls())
}

func TestExpiredSessionPrintsHint(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)
	env.login(t)
	env.srv.Respond(http.MethodGet, "/accounts/", http.StatusUnauthorized, map[string]string{
		"detail": "Given token not valid for any token type",
	})

	res := env.run(t, "", "accounts", "list")
	require.EqualError(t, res.err, "Given token not valid for any token type")
	require.Equal(t, 1, strings.Count(res.stderr, "Session expired. Run `ledger login`"))

	res = env.run(t, "", "whoami")
	require.ErrorIs(t, res.err, ledgersdk.ErrNotAuthenticated)
}

func TestAccountsCommands(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)
	env.login(t)
	env.srv.Seed("alice", "accounts", map[string]any{"name": "Everyday", "account_type": "checking", "currency": "AUD", "balance": "120.50", "is_active": true})
	env.srv.Seed("alice", "accounts", map[string]any{"name": "Travel", "account_type": "savings", "currency": "USD", "balance": "40.00", "is_active": true})

	res := env.run(t, "", "accounts", "list", "--currency", "USD")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Travel")
	require.NotContains(t, res.stdout, "Everyday")

	res = env.run(t, "", "--json", "accounts", "list")
	require.NoError(t, res.err)
	var page ledgersdk.Page[ledgersdk.Account]
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &page))
	require.Len(t, page.Results, 2)

	res = env.run(t, "", "accounts", "summary")
	require.NoError(t, res.err)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "AUD")
	require.Contains(t, lines[1], "120.50")
	require.Contains(t, lines[2], "USD")
}

func TestTransactionStatsCommand(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)
	env.login(t)
	env.srv.Seed("alice", "transactions", map[string]any{"type": "income", "amount": "100.00", "date": "2026-03-02"})
	env.srv.Seed("alice", "transactions", map[string]any{"type": "expense", "amount": "30.00", "date": "2026-03-03"})

	res := env.run(t, "", "transactions", "stats", "--start", "2026-03-01", "--end", "2026-03-31")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "70.00")

	res = env.run(t, "", "transactions", "stats", "--start", "March")
	require.ErrorContains(t, res.err, "invalid date")
}

func TestAlertsCommands(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)
	env.login(t)
	id := env.srv.Seed("alice", "alerts", map[string]any{
		"type":    "unknown_category",
		"payload": map[string]any{"transaction_id": 3, "category_name": "Pets", "amount": "42.00", "label": "Vet"},
		"seen":    false,
	})

	res := env.run(t, "", "alerts", "list")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Pets")

	res = env.run(t, "", "alerts", "count")
	require.NoError(t, res.err)
	require.Equal(t, "1\n", res.stdout)

	res = env.run(t, "", "alerts", "dismiss", strconv.FormatInt(id, 10))
	require.NoError(t, res.err)

	res = env.run(t, "", "alerts", "count")
	require.NoError(t, res.err)
	require.Equal(t, "0\n", res.stdout)

	res = env.run(t, "", "alerts", "dismiss", "abc")
	require.ErrorContains(t, res.err, `invalid id "abc"`)
}

func TestTokensCommands(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)
	env.login(t)

	res := env.run(t, "", "--json", "tokens", "create", "shortcuts")
	require.NoError(t, res.err)
	var tok ledgersdk.APIToken
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &tok))
	require.NotEmpty(t, tok.Token)

	res = env.run(t, "", "tokens", "list")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "shortcuts")
	require.Contains(t, res.stdout, "never")

	res = env.run(t, "", "tokens", "delete", strconv.FormatInt(tok.ID, 10))
	require.NoError(t, res.err)
	require.Equal(t, "Deleted token "+strconv.FormatInt(tok.ID, 10)+"\n", res.stdout)
}

func TestPasskeysCommands(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)
	env.login(t)
	env.srv.AddPasskey("alice", "cred-1")

	res := env.run(t, "", "--json", "passkeys", "list")
	require.NoError(t, res.err)
	var creds []ledgersdk.WebAuthnCredential
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &creds))
	require.Len(t, creds, 1)
	require.Nil(t, creds[0].LastUsed)

	res = env.run(t, "", "passkeys", "list")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "never")

	res = env.run(t, "", "passkeys", "delete", strconv.FormatInt(creds[0].ID, 10))
	require.NoError(t, res.err)
	require.Empty(t, env.srv.Passkeys("alice"))

	res = env.run(t, "", "passkeys", "delete", strconv.FormatInt(creds[0].ID, 10))
	require.ErrorContains(t, res.err, "Credential not found")
}

func TestHintNavigator(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	nav := &hintNavigator{out: &out}

	require.NoError(t, nav.Navigate(t.Context(), ledgersdk.LoginRoute, false))
	require.Empty(t, out.String())

	require.NoError(t, nav.Navigate(t.Context(), ledgersdk.LoginRoute, true))
	require.NoError(t, nav.Navigate(t.Context(), ledgersdk.LoginRoute, true))
	require.Equal(t, 1, strings.Count(out.String(), "Session expired"))
}
