package ledgersdk

import (
	"context"
	"errors"
	"sync"
	"time"
)

// TokenStore holds the access and refresh tokens. It is the single source
// of truth for whether a session is present. Tokens are opaque: no store
// inspects their contents. Setting an empty string clears the token.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	SetRefreshToken(ctx context.Context, token string) error
}

// TokenLifetimes declares how long each token is kept by a store after it is
// written. A zero duration keeps the token until it is cleared.
type TokenLifetimes struct {
	Access  time.Duration
	Refresh time.Duration
}

// DefaultTokenLifetimes matches the backend's token lifetimes.
var DefaultTokenLifetimes = TokenLifetimes{
	Access:  15 * time.Minute,
	Refresh: 7 * 24 * time.Hour,
}

type storedToken struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (t storedToken) get(now time.Time) string {
	if t.value == "" {
		return ""
	}
	if !t.expiresAt.IsZero() && !now.Before(t.expiresAt) {
		return ""
	}
	return t.value
}

func newStoredToken(value string, ttl time.Duration, now time.Time) storedToken {
	if value == "" {
		return storedToken{}
	}
	t := storedToken{value: value}
	if ttl > 0 {
		t.expiresAt = now.Add(ttl)
	}
	return t
}

// MemoryTokenStore is a process-local TokenStore. It is safe for concurrent
// use.
type MemoryTokenStore struct {
	lifetimes TokenLifetimes
	now       func() time.Time

	mu      sync.RWMutex
	access  storedToken
	refresh storedToken
}

// NewMemoryTokenStore returns an empty store using the given lifetimes.
func NewMemoryTokenStore(lifetimes TokenLifetimes) *MemoryTokenStore {
	return &MemoryTokenStore{lifetimes: lifetimes, now: time.Now}
}

// SetClock replaces the store's time source.
func (s *MemoryTokenStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryTokenStore) AccessToken(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access.get(s.now()), nil
}

func (s *MemoryTokenStore) RefreshToken(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh.get(s.now()), nil
}

func (s *MemoryTokenStore) SetAccessToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = newStoredToken(token, s.lifetimes.Access, s.now())
	return nil
}

func (s *MemoryTokenStore) SetRefreshToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = newStoredToken(token, s.lifetimes.Refresh, s.now())
	return nil
}

// storeTokens writes both tokens, access first.
func storeTokens(ctx context.Context, store TokenStore, pair TokenPair) error {
	if err := store.SetAccessToken(ctx, pair.Access); err != nil {
		return err
	}
	return store.SetRefreshToken(ctx, pair.Refresh)
}

// clearTokens clears both tokens. It attempts both even if the first fails,
// and ignores cancellation of ctx so a cancelled request still clears.
func clearTokens(ctx context.Context, store TokenStore) error {
	ctx = context.WithoutCancel(ctx)
	return errors.Join(
		store.SetAccessToken(ctx, ""),
		store.SetRefreshToken(ctx, ""),
	)
}
