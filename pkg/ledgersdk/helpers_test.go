package ledgersdk

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/ledger/internal/fakeapi"
	"github.com/aussiebroadwan/ledger/pkg/slogx"
)

type navCall struct {
	route   string
	replace bool
}

// recordingNavigator remembers every navigation.
type recordingNavigator struct {
	mu    sync.Mutex
	calls []navCall
}

func (n *recordingNavigator) Navigate(_ context.Context, route string, replace bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, navCall{route: route, replace: replace})
	return nil
}

func (n *recordingNavigator) Calls() []navCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]navCall(nil), n.calls...)
}

type testEnv struct {
	srv     *fakeapi.Server
	client  *Client
	session *Session
	store   *MemoryTokenStore
	nav     *recordingNavigator
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	srv := fakeapi.New(t)
	store := NewMemoryTokenStore(DefaultTokenLifetimes)
	nav := &recordingNavigator{}

	opts = append([]Option{
		WithTokenStore(store),
		WithNavigator(nav),
		WithLogger(slogx.Discard()),
	}, opts...)
	client := NewClient(srv.BaseURL(), opts...)

	return &testEnv{
		srv:     srv,
		client:  client,
		session: NewSession(client),
		store:   store,
		nav:     nav,
	}
}

// login signs alice in through the real login flow.
func (e *testEnv) login(t *testing.T) *fakeapi.User {
	t.Helper()
	u := e.srv.AddUser("alice", "correct")
	res := e.session.Login(t.Context(), "alice", "correct")
	require.True(t, res.Success, res.Error)
	return u
}

func requireTokens(t *testing.T, store TokenStore, access, refresh string) {
	t.Helper()
	a, err := store.AccessToken(t.Context())
	require.NoError(t, err)
	r, err := store.RefreshToken(t.Context())
	require.NoError(t, err)
	require.Equal(t, access, a, "access token")
	require.Equal(t, refresh, r, "refresh token")
}

func requireSignedOut(t *testing.T, e *testEnv) {
	t.Helper()
	requireTokens(t, e.store, "", "")
	require.Nil(t, e.session.CurrentUser())
	require.False(t, e.session.IsAuthenticated())
}
