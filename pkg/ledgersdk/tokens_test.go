package ledgersdk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStoreLifetimes(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	store := NewMemoryTokenStore(TokenLifetimes{Access: time.Minute, Refresh: time.Hour})
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.SetAccessToken(ctx, "A"))
	require.NoError(t, store.SetRefreshToken(ctx, "R"))
	requireTokens(t, store, "A", "R")

	// Access expires independently of refresh
	now = now.Add(time.Minute)
	requireTokens(t, store, "", "R")

	now = now.Add(time.Hour)
	requireTokens(t, store, "", "")
}

func TestMemoryTokenStoreZeroLifetimeNeverExpires(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	now := time.Now()
	store := NewMemoryTokenStore(TokenLifetimes{})
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.SetAccessToken(ctx, "A"))
	now = now.Add(24 * 365 * time.Hour)
	requireTokens(t, store, "A", "")
}

func TestMemoryTokenStoreEmptyClears(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := NewMemoryTokenStore(DefaultTokenLifetimes)
	require.NoError(t, storeTokens(ctx, store, TokenPair{Access: "A", Refresh: "R"}))
	requireTokens(t, store, "A", "R")

	require.NoError(t, clearTokens(ctx, store))
	requireTokens(t, store, "", "")
}

type failingStore struct {
	*MemoryTokenStore
	accessErr error
}

func (s *failingStore) SetAccessToken(ctx context.Context, token string) error {
	if s.accessErr != nil {
		return s.accessErr
	}
	return s.MemoryTokenStore.SetAccessToken(ctx, token)
}

func TestClearTokensAttemptsBoth(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	mem := NewMemoryTokenStore(DefaultTokenLifetimes)
	require.NoError(t, mem.SetRefreshToken(ctx, "R"))

	boom := errors.New("disk full")
	store := &failingStore{MemoryTokenStore: mem, accessErr: boom}

	err := clearTokens(ctx, store)
	require.ErrorIs(t, err, boom)
	requireTokens(t, mem, "", "")
}

func TestClearTokensIgnoresCancellation(t *testing.T) {
	t.Parallel()

	store := NewMemoryTokenStore(DefaultTokenLifetimes)
	require.NoError(t, storeTokens(t.Context(), store, TokenPair{Access: "A", Refresh: "R"}))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	require.NoError(t, clearTokens(ctx, store))
	requireTokens(t, store, "", "")
}
