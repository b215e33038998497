package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/ledger/internal/tokenstore/sqlite"
	"github.com/aussiebroadwan/ledger/pkg/cryptox"
	"github.com/aussiebroadwan/ledger/pkg/ledgersdk"
	"github.com/aussiebroadwan/ledger/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// App holds the dependencies shared by every command invocation.
type App struct {
	cfg    Config
	logger *slog.Logger

	store   *sqlite.Store
	client  *ledgersdk.Client
	session *ledgersdk.Session
	nav     *hintNavigator
}

// NewApp opens the token store and builds the API client and session.
// Diagnostics go to errOut.
func NewApp(ctx context.Context, cfg Config, errOut io.Writer) (*App, error) {
	if err := cfg.resolve(); err != nil {
		return nil, err
	}

	app := &App{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "ledger",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  errOut,
		}),
		nav: &hintNavigator{out: errOut},
	}

	if err := app.initStore(ctx); err != nil {
		return nil, err
	}
	app.initClient()

	return app, nil
}

func (app *App) initStore(ctx context.Context) error {
	if err := os.MkdirAll(app.cfg.StateDir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	key, err := cryptox.LoadOrCreateKey(app.cfg.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load token key: %w", err)
	}
	sealer, err := cryptox.NewSealer(key)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(ctx, app.cfg.DatabasePath(), sealer, ledgersdk.TokenLifetimes{
		Access:  app.cfg.AccessTTL,
		Refresh: app.cfg.RefreshTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}
	app.store = store

	app.logger.Debug("token store opened", "path", app.cfg.DatabasePath())
	return nil
}

func (app *App) initClient() {
	opts := []ledgersdk.Option{
		ledgersdk.WithTimeout(app.cfg.HTTPTimeout),
		ledgersdk.WithTokenStore(app.store),
		ledgersdk.WithNavigator(app.nav),
		ledgersdk.WithLogger(app.logger),
	}
	if app.cfg.RateLimit > 0 {
		opts = append(opts, ledgersdk.WithRateLimiter(rate.NewLimiter(rate.Limit(app.cfg.RateLimit), 1)))
	}

	app.client = ledgersdk.NewClient(app.cfg.APIBase, opts...)
	app.session = ledgersdk.NewSession(app.client)
}

// Close releases the token store.
func (app *App) Close() error {
	if app.store == nil {
		return nil
	}
	return app.store.Close()
}

// hintNavigator stands in for the browser router: there is no login page
// to show, so it tells the user how to sign in again.
type hintNavigator struct {
	out     io.Writer
	visited atomic.Bool
}

func (n *hintNavigator) Navigate(_ context.Context, route string, replace bool) error {
	if route != ledgersdk.LoginRoute {
		return nil
	}
	// Logout navigates without replace; only an ended session needs the hint.
	if replace && n.visited.CompareAndSwap(false, true) {
		fmt.Fprintln(n.out, "Session expired. Run `ledger login` to sign in again.")
	}
	return nil
}
