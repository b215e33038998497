package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/ledger/pkg/ledgersdk"
)

// TestRegisterLoginRefreshLogout walks a password session from creation to
// logout against the real backend.
func TestRegisterLoginRefreshLogout(t *testing.T) {
	baseURL := setupBackendContainer(t)

	session, _ := newSession(baseURL)
	user := registerUser(t, session)
	require.True(t, session.IsAuthenticated())

	// A second process signs in with the same credentials
	other, nav := newSession(baseURL)
	login := other.Login(t.Context(), user.Username, testPassword)
	require.True(t, login.Success, login.Error)
	require.Equal(t, user.ID, login.Data.ID)

	require.True(t, other.RefreshAccessToken(t.Context()))
	require.True(t, other.FetchUser(t.Context(), "").Success)

	refresh, err := other.Client().Tokens().RefreshToken(t.Context())
	require.NoError(t, err)

	other.Logout(t.Context())
	require.False(t, other.IsAuthenticated())
	require.Equal(t, []string{ledgersdk.LoginRoute}, nav.routes)

	// The blacklisted refresh token cannot be replayed
	require.NoError(t, other.Client().Tokens().SetRefreshToken(t.Context(), refresh))
	require.False(t, other.RefreshAccessToken(t.Context()))
}

// TestWrongPassword checks the backend's credential error reaches the
// envelope without tripping the redirect.
func TestWrongPassword(t *testing.T) {
	baseURL := setupBackendContainer(t)

	session, nav := newSession(baseURL)
	user := registerUser(t, session)
	session.Logout(t.Context())
	nav.routes = nil

	res := session.Login(t.Context(), user.Username, "not-the-password")
	require.False(t, res.Success)
	require.NotEmpty(t, res.Error)
	require.Empty(t, nav.routes)
}

// TestInvalidTokenRedirectsOnce sends an authenticated call with a forged
// token and expects a single redirect and a cleared store.
func TestInvalidTokenRedirectsOnce(t *testing.T) {
	baseURL := setupBackendContainer(t)

	session, nav := newSession(baseURL)
	client := session.Client()
	require.NoError(t, client.Tokens().SetAccessToken(t.Context(), "forged"))

	res := client.Accounts().List(t.Context(), ledgersdk.AccountFilter{})
	require.False(t, res.Success)
	require.Equal(t, []string{ledgersdk.LoginRoute}, nav.routes)

	access, err := client.Tokens().AccessToken(t.Context())
	require.NoError(t, err)
	require.Empty(t, access)
}

// TestPasskeyRegistrationChallenge only checks the begin step; the
// ceremony needs a platform authenticator.
func TestPasskeyRegistrationChallenge(t *testing.T) {
	baseURL := setupBackendContainer(t)

	session, _ := newSession(baseURL)
	user := registerUser(t, session)

	opts, err := ledgersdk.NewPasskeys(session, nil).BeginRegistration(t.Context(), user.Username)
	require.NoError(t, err)
	require.NotEmpty(t, opts.Challenge)
	require.Equal(t, user.Username, opts.User.Name)
}
