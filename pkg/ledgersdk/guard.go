package ledgersdk

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// DefaultGuardReset is how long the guard stays armed after a redirect.
const DefaultGuardReset = time.Second

// AuthGuard reacts to authorization failures. The first Trip clears the
// token store, runs the registered hooks and navigates to the login route
// (replacing history). Further trips are no-ops until the reset delay has
// passed, so a burst of concurrent 401/403 responses yields one redirect.
type AuthGuard struct {
	tokens     TokenStore
	navigator  Navigator
	logger     *slog.Logger
	resetAfter time.Duration

	mu          sync.Mutex
	redirecting bool
	hooks       []func(context.Context)
	timer       *time.Timer
}

// NewAuthGuard creates a guard for the given store. A nil navigator does
// nothing on trip; a nil logger uses slog.Default().
func NewAuthGuard(tokens TokenStore, navigator Navigator, logger *slog.Logger) *AuthGuard {
	if navigator == nil {
		navigator = nopNavigator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthGuard{
		tokens:     tokens,
		navigator:  navigator,
		logger:     logger,
		resetAfter: DefaultGuardReset,
	}
}

// SetResetDelay changes how long the guard suppresses further trips.
func (g *AuthGuard) SetResetDelay(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetAfter = d
}

// OnTrip registers fn to run (once per redirect) after the tokens are cleared
// and before navigation.
func (g *AuthGuard) OnTrip(fn func(context.Context)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, fn)
}

// Trip handles an authorization failure. It reports whether this call
// performed the clear and redirect.
func (g *AuthGuard) Trip(ctx context.Context) bool {
	g.mu.Lock()
	if g.redirecting {
		g.mu.Unlock()
		return false
	}
	g.redirecting = true
	hooks := slices.Clone(g.hooks)
	g.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	if err := clearTokens(ctx, g.tokens); err != nil {
		g.logger.Error("auth guard failed to clear tokens", "error", err)
	}
	for _, hook := range hooks {
		hook(ctx)
	}

	g.logger.Info("session rejected by server, redirecting to login")
	if err := g.navigator.Navigate(ctx, LoginRoute, true); err != nil {
		g.logger.Warn("auth guard navigation failed", "route", LoginRoute, "error", err)
	}

	g.mu.Lock()
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.resetAfter, g.release)
	g.mu.Unlock()

	return true
}

// Redirecting reports whether a redirect is currently in progress.
func (g *AuthGuard) Redirecting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.redirecting
}

// Reset disarms the guard immediately and cancels any pending reset timer.
func (g *AuthGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.redirecting = false
}

func (g *AuthGuard) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.redirecting = false
}
