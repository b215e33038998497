package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/ledger/pkg/ledgersdk"
	"github.com/aussiebroadwan/ledger/pkg/slogx"
)

// runner carries the lazily opened App and the persistent flags across one
// command execution.
type runner struct {
	app *App

	api      string
	logLevel string
	stateDir string
	json     bool
}

// Execute runs the ledger command line with args. The App is opened on
// first use and closed before returning.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	r := &runner{}
	defer func() {
		if r.app != nil {
			if err := r.app.Close(); err != nil {
				r.app.logger.Error("error closing token store", "error", err)
			}
		}
	}()

	root := r.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return root.ExecuteContext(ctx)
}

func (r *runner) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledger",
		Short: "Command line client for the ledger personal finance API",
		Long: `ledger talks to the personal finance REST API.

Sessions are kept in a sealed token store under the state directory, so a
login survives between invocations until the refresh token expires.`,
		Version:       BuildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&r.api, "api", "", "API base URL (overrides LEDGER_API_BASE)")
	pf.StringVar(&r.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	pf.StringVar(&r.stateDir, "state-dir", "", "directory holding the token store (overrides LEDGER_STATE_DIR)")
	pf.BoolVar(&r.json, "json", false, "print results as JSON")

	root.AddCommand(
		r.loginCmd(),
		r.logoutCmd(),
		r.registerCmd(),
		r.whoamiCmd(),
		r.refreshCmd(),
		r.passkeysCmd(),
		r.accountsCmd(),
		r.transactionsCmd(),
		r.budgetsCmd(),
		r.alertsCmd(),
		r.tokensCmd(),
	)
	return root
}

// open returns the App, creating it on the first call, and a context that
// carries the command's logger.
func (r *runner) open(cmd *cobra.Command) (*App, context.Context, error) {
	if r.app == nil {
		cfg, err := LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		if r.api != "" {
			cfg.APIBase = r.api
		}
		if r.logLevel != "" {
			cfg.LogLevel = r.logLevel
		}
		if r.stateDir != "" {
			cfg.StateDir = r.stateDir
		}

		app, err := NewApp(cmd.Context(), cfg, cmd.ErrOrStderr())
		if err != nil {
			return nil, nil, err
		}
		r.app = app
	}

	ctx := slogx.WithContext(cmd.Context(), r.app.logger)
	return r.app, slogx.WithCommand(ctx, cmd.CommandPath()), nil
}

// authed is open plus a usable session. An expired access token is
// refreshed first when a refresh token is still stored.
func (r *runner) authed(cmd *cobra.Command) (*App, context.Context, error) {
	app, ctx, err := r.open(cmd)
	if err != nil {
		return nil, nil, err
	}

	access, err := app.store.AccessToken(ctx)
	if err != nil {
		return nil, nil, err
	}
	if access != "" {
		return app, ctx, nil
	}

	refresh, err := app.store.RefreshToken(ctx)
	if err != nil {
		return nil, nil, err
	}
	if refresh == "" || !app.session.RefreshAccessToken(ctx) {
		return nil, nil, notSignedIn()
	}
	return app, ctx, nil
}

func notSignedIn() error {
	return &hintError{err: ledgersdk.ErrNotAuthenticated, hint: "run `ledger login` first"}
}
