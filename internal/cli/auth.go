package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/ledger/pkg/ledgersdk"
)

func (r *runner) loginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with username and password",
		Long:  "Sign in and keep the session in the token store. The password is read from the terminal, or from standard input when it is not a terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.open(cmd)
			if err != nil {
				return err
			}

			p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			if username, err = p.valueOr(username, "Username", false); err != nil {
				return err
			}
			password, err := p.Password("Password")
			if err != nil {
				return err
			}

			user, err := unwrap(app.session.Login(ctx, username, password))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when omitted)")
	return cmd
}

func (r *runner) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.open(cmd)
			if err != nil {
				return err
			}
			app.session.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (r *runner) registerCmd() *cobra.Command {
	var req ledgersdk.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.open(cmd)
			if err != nil {
				return err
			}

			p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			if req.Username, err = p.valueOr(req.Username, "Username", false); err != nil {
				return err
			}
			if req.Email, err = p.valueOr(req.Email, "Email", false); err != nil {
				return err
			}
			if req.Password, err = p.Password("Password"); err != nil {
				return err
			}
			if req.Password2, err = p.Password("Confirm password"); err != nil {
				return err
			}

			user, err := unwrap(app.session.Register(ctx, req))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", user.Username)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&req.Username, "username", "u", "", "username (prompted when omitted)")
	f.StringVar(&req.Email, "email", "", "email address (prompted when omitted)")
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	return cmd
}

func (r *runner) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.authed(cmd)
			if err != nil {
				return err
			}
			if !app.session.Restore(ctx) {
				return notSignedIn()
			}

			u := app.session.CurrentUser()
			return r.render(cmd, u, func(w io.Writer) {
				row(w, "ID", u.ID)
				row(w, "Username", u.Username)
				row(w, "Email", orDash(u.Email))
				row(w, "Name", orDash(strings.TrimSpace(u.FirstName+" "+u.LastName)))
				row(w, "Joined", u.CreatedAt.Format(time.DateOnly))
			})
		},
	}
}

func (r *runner) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.open(cmd)
			if err != nil {
				return err
			}

			refresh, err := app.store.RefreshToken(ctx)
			if err != nil {
				return err
			}
			if refresh == "" {
				return notSignedIn()
			}
			if !app.session.RefreshAccessToken(ctx) {
				return &hintError{err: errors.New("refresh rejected, session ended"), hint: "run `ledger login` to sign in again"}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Access token refreshed")
			return nil
		},
	}
}

func (r *runner) passkeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passkeys",
		Short: "Manage registered passkeys",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered passkeys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.authed(cmd)
			if err != nil {
				return err
			}
			creds, err := unwrap(ledgersdk.NewPasskeys(app.session, nil).List(ctx))
			if err != nil {
				return err
			}
			return r.render(cmd, creds, func(w io.Writer) {
				row(w, "ID", "DEVICE", "CREATED", "LAST USED")
				for _, c := range creds {
					row(w, c.ID, orDash(c.DeviceName), c.CreatedAt.Format(time.DateOnly), lastUsed(c.LastUsed))
				}
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a passkey",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, ctx, err := r.authed(cmd)
			if err != nil {
				return err
			}
			if _, err := unwrap(ledgersdk.NewPasskeys(app.session, nil).Delete(ctx, id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted passkey %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, del)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func lastUsed(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format(time.DateOnly)
}
