package ledgersdk

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LogoutTimeout bounds the best-effort server notification during Logout.
const LogoutTimeout = 3 * time.Second

// RefreshTimeout bounds a token refresh. The refresh is shared by every
// concurrent caller, so it runs detached from their contexts.
const RefreshTimeout = 15 * time.Second

// Session owns the current-user state and orchestrates the password flows
// and token refresh on top of a Client.
//
// A session is authenticated only once the user record has been fetched.
// A stored token alone does not count.
type Session struct {
	client *Client

	mu   sync.RWMutex
	user *User

	refresh singleflight.Group
}

// NewSession creates a session bound to client. The client's guard clears
// the session's user when it trips.
func NewSession(client *Client) *Session {
	s := &Session{client: client}
	client.guard.OnTrip(func(context.Context) { s.clearUser() })
	return s
}

// Client returns the underlying API client.
func (s *Session) Client() *Client { return s.client }

// CurrentUser returns a copy of the loaded user, or nil.
func (s *Session) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a user record is loaded.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *Session) setUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

func (s *Session) clearUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// clear drops tokens and user state.
func (s *Session) clear(ctx context.Context) {
	if err := clearTokens(ctx, s.client.tokens); err != nil {
		s.client.log(ctx).Error("failed to clear tokens", "error", err)
	}
	s.clearUser()
}

// Register creates an account and signs in with the returned tokens.
// Validation failures carry field errors.
func (s *Session) Register(ctx context.Context, req RegisterRequest) Envelope[*User] {
	if req.Password2 == "" {
		req.Password2 = req.Password
	}

	env := call[TokenPair](ctx, s.client, "register", "/auth/register/", RequestOptions{
		Method:        http.MethodPost,
		Body:          req,
		SkipAuthGuard: true,
	}, "Registration failed", true)
	if !env.Success {
		return Envelope[*User]{Error: env.Error, Errors: env.Errors}
	}

	return s.establish(ctx, "register", env.Data)
}

// Login signs in with a username and password. Failures carry a single
// message.
func (s *Session) Login(ctx context.Context, username, password string) Envelope[*User] {
	env := call[TokenPair](ctx, s.client, "login", "/auth/login/", RequestOptions{
		Method:        http.MethodPost,
		Body:          loginRequest{Username: username, Password: password},
		SkipAuthGuard: true,
	}, "Login failed", false)
	if !env.Success {
		return Fail[*User](env.Error)
	}

	return s.establish(ctx, "login", env.Data)
}

// establish stores a fresh token pair and loads the user with the fresh
// access token. Success is only reported once the user is loaded.
func (s *Session) establish(ctx context.Context, op string, pair TokenPair) Envelope[*User] {
	if pair.Access == "" {
		s.client.log(ctx).Error("token response without access token", "op", op)
		return Fail[*User]("Invalid token response")
	}

	if err := storeTokens(ctx, s.client.tokens, pair); err != nil {
		s.client.log(ctx).Error("failed to store tokens", "op", op, "error", err)
		s.clear(ctx)
		return Fail[*User]("Failed to store session")
	}

	return s.FetchUser(ctx, pair.Access)
}

// FetchUser loads the current user. tokenOverride, when set, is sent as the
// bearer instead of the stored access token.
//
// Any failure ends the session: both tokens and the user are cleared.
func (s *Session) FetchUser(ctx context.Context, tokenOverride string) Envelope[*User] {
	var u User
	err := s.client.Do(ctx, "/auth/me/", RequestOptions{BearerToken: tokenOverride}, &u)
	if err != nil {
		s.client.logFailure(ctx, "fetch_user", err)
		s.clear(ctx)
		return failure[*User](err, "Failed to fetch user", false)
	}

	s.setUser(u)
	return Ok(s.CurrentUser())
}

// Logout ends the session. Local state is always cleared first; the server
// is then notified on a best-effort basis, bounded by LogoutTimeout, and the
// navigator is sent to the login route.
func (s *Session) Logout(ctx context.Context) {
	logger := s.client.log(ctx)

	access, err := s.client.tokens.AccessToken(ctx)
	if err != nil {
		logger.Warn("failed to read access token for logout", "error", err)
	}
	refresh, err := s.client.tokens.RefreshToken(ctx)
	if err != nil {
		logger.Warn("failed to read refresh token for logout", "error", err)
	}

	s.clear(context.WithoutCancel(ctx))

	if access != "" || refresh != "" {
		notifyCtx, cancel := context.WithTimeout(ctx, LogoutTimeout)
		err := s.client.Do(notifyCtx, "/auth/logout/", RequestOptions{
			Method:        http.MethodPost,
			Body:          refreshRequest{Refresh: refresh},
			BearerToken:   access,
			SkipAuthGuard: true,
		}, nil)
		cancel()
		if err != nil {
			logger.Warn("logout notification failed", "error", err)
		}
	}

	if err := s.client.nav.Navigate(context.WithoutCancel(ctx), LoginRoute, false); err != nil {
		logger.Warn("logout navigation failed", "route", LoginRoute, "error", err)
	}
}

// RefreshAccessToken exchanges the stored refresh token for a new access
// token. Without a refresh token it returns false without any request.
// A rejected refresh logs the session out.
//
// Concurrent callers share a single refresh request. A caller whose ctx ends
// first stops waiting and gets false; the refresh itself carries on for the
// others.
func (s *Session) RefreshAccessToken(ctx context.Context) bool {
	refresh, err := s.client.tokens.RefreshToken(ctx)
	if err != nil {
		s.client.log(ctx).Error("failed to read refresh token", "error", err)
		return false
	}
	if refresh == "" {
		s.client.log(ctx).Debug("token refresh skipped", "error", ErrNoRefreshToken)
		return false
	}

	ch := s.refresh.DoChan(refresh, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RefreshTimeout)
		defer cancel()
		return s.doRefresh(ctx, refresh), nil
	})

	select {
	case res := <-ch:
		return res.Val.(bool)
	case <-ctx.Done():
		s.client.log(ctx).Warn("stopped waiting for token refresh", "error", ctx.Err())
		return false
	}
}

func (s *Session) doRefresh(ctx context.Context, refresh string) bool {
	var resp refreshResponse
	err := s.client.Do(ctx, "/auth/token/refresh/", RequestOptions{
		Method:        http.MethodPost,
		Body:          refreshRequest{Refresh: refresh},
		SkipAuthGuard: true,
	}, &resp)
	if err == nil && resp.Access == "" {
		err = errors.New("refresh response without access token")
	}
	if err == nil {
		err = s.client.tokens.SetAccessToken(ctx, resp.Access)
	}
	if err == nil && resp.Refresh != "" {
		err = s.client.tokens.SetRefreshToken(ctx, resp.Refresh)
	}

	if err != nil {
		s.client.logFailure(ctx, "refresh", err)
		s.Logout(ctx)
		return false
	}
	return true
}

// Restore loads the user for a token that survived from a previous run. It
// reports whether the session is authenticated afterwards.
func (s *Session) Restore(ctx context.Context) bool {
	access, err := s.client.tokens.AccessToken(ctx)
	if err != nil {
		s.client.log(ctx).Error("failed to read access token", "error", err)
		return false
	}
	if access == "" {
		return false
	}

	return s.FetchUser(ctx, access).Success
}

// RequireAuth guards a protected entry point. A stored token without a
// loaded user triggers a user fetch. When the session is still not
// authenticated the navigator is sent to the login route and false is
// returned.
func (s *Session) RequireAuth(ctx context.Context) bool {
	if !s.IsAuthenticated() {
		access, err := s.client.tokens.AccessToken(ctx)
		if err != nil {
			s.client.log(ctx).Error("failed to read access token", "error", err)
		}
		if access != "" {
			s.FetchUser(ctx, access)
		}
	}

	if s.IsAuthenticated() {
		return true
	}

	if err := s.client.nav.Navigate(ctx, LoginRoute, false); err != nil {
		s.client.log(ctx).Warn("navigation failed", "route", LoginRoute, "error", err)
	}
	return false
}
