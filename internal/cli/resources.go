package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/ledger/pkg/ledgersdk"
)

func (r *runner) accountsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "accounts", Short: "Inspect accounts"}

	var (
		f          ledgersdk.AccountFilter
		activeOnly bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.authed(cmd)
			if err != nil {
				return err
			}
			if activeOnly {
				f.IsActive = &activeOnly
			}
			page, err := unwrap(app.client.Accounts().List(ctx, f))
			if err != nil {
				return err
			}
			return r.render(cmd, page, func(w io.Writer) {
				row(w, "ID", "NAME", "TYPE", "BALANCE", "CURRENCY", "ACTIVE")
				for _, a := range page.Results {
					row(w, a.ID, a.Name, a.AccountType, a.Balance, a.Currency, a.IsActive)
				}
			})
		},
	}
	lf := list.Flags()
	lf.StringVar(&f.AccountType, "type", "", "filter by account type")
	lf.StringVar(&f.Currency, "currency", "", "filter by currency code")
	lf.StringVar(&f.Search, "search", "", "search name and description")
	lf.StringVar(&f.Ordering, "ordering", "", "sort field, prefix with - for descending")
	lf.BoolVar(&activeOnly, "active", false, "only active accounts")

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Show balances per currency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.authed(cmd)
			if err != nil {
				return err
			}
			sum, err := unwrap(app.client.Accounts().Summary(ctx))
			if err != nil {
				return err
			}
			return r.render(cmd, sum, func(w io.Writer) {
				row(w, "CURRENCY", "ACCOUNTS", "TOTAL")
				for _, cur := range slices.Sorted(maps.Keys(sum)) {
					row(w, cur, sum[cur].Count, fmt.Sprintf("%.2f", sum[cur].Total))
				}
			})
		},
	}

	cmd.AddCommand(list, summary)
	return cmd
}

func (r *runner) transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "transactions", Short: "Inspect transactions"}

	var (
		f                 ledgersdk.TransactionFilter
		account, category int64
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.authed(cmd)
			if err != nil {
				return err
			}
			if account > 0 {
				f.Account = &account
			}
			if category > 0 {
				f.Category = &category
			}
			page, err := unwrap(app.client.Transactions().List(ctx, f))
			if err != nil {
				return err
			}
			return r.render(cmd, page, func(w io.Writer) {
				row(w, "ID", "DATE", "TYPE", "AMOUNT", "DESCRIPTION")
				for _, t := range page.Results {
					row(w, t.ID, t.Date, t.Type, t.Amount, t.Description)
				}
				if page.Next != nil {
					row(w, fmt.Sprintf("(%d of %d, use --page for more)", len(page.Results), page.Count))
				}
			})
		},
	}
	lf := list.Flags()
	lf.StringVar(&f.Type, "type", "", "income, expense or transfer")
	lf.Int64Var(&account, "account", 0, "filter by account id")
	lf.Int64Var(&category, "category", 0, "filter by category id")
	lf.StringVar(&f.Date, "date", "", "filter by date (YYYY-MM-DD)")
	lf.StringVar(&f.Search, "search", "", "search description and notes")
	lf.StringVar(&f.Ordering, "ordering", "", "sort field, prefix with - for descending")
	lf.IntVar(&f.Page, "page", 0, "page number")

	var period ledgersdk.DateRange
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show income, expense and net totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, d := range []string{period.Start, period.End} {
				if _, err := time.Parse(time.DateOnly, d); d != "" && err != nil {
					return fmt.Errorf("invalid date %q: want YYYY-MM-DD", d)
				}
			}
			app, ctx, err := r.authed(cmd)
			if err != nil {
				return err
			}
			st, err := unwrap(app.client.Transactions().Statistics(ctx, period))
			if err != nil {
				return err
			}
			return r.render(cmd, st, func(w io.Writer) {
				row(w, "TYPE", "COUNT", "TOTAL")
				row(w, "income", st.Income.Count, fmt.Sprintf("%.2f", st.Income.Total))
				row(w, "expense", st.Expense.Count, fmt.Sprintf("%.2f", st.Expense.Total))
				row(w, "transfer", st.Transfer.Count, fmt.Sprintf("%.2f", st.Transfer.Total))
				row(w, "net", "", fmt.Sprintf("%.2f", st.Net))
			})
		},
	}
	stats.Flags().StringVar(&period.Start, "start", "", "first day (YYYY-MM-DD)")
	stats.Flags().StringVar(&period.End, "end", "", "last day (YYYY-MM-DD)")

	cmd.AddCommand(list, stats)
	return cmd
}

func (r *runner) budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "budgets", Short: "Inspect budgets"}

	var f ledgersdk.BudgetFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.authed(cmd)
			if err != nil {
				return err
			}
			page, err := unwrap(app.client.Budgets().List(ctx, f))
			if err != nil {
				return err
			}
			return r.render(cmd, page, func(w io.Writer) {
				row(w, "ID", "NAME", "PERIOD", "AMOUNT", "SPENT", "USED")
				for _, b := range page.Results {
					row(w, b.ID, b.Name, b.Period, b.Amount, fmt.Sprintf("%.2f", b.SpentAmount), fmt.Sprintf("%.0f%%", b.PercentageUsed))
				}
			})
		},
	}
	list.Flags().StringVar(&f.Period, "period", "", "weekly, monthly or yearly")
	list.Flags().StringVar(&f.Search, "search", "", "search budget names")

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Show totals across active budgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.authed(cmd)
			if err != nil {
				return err
			}
			s, err := unwrap(app.client.Budgets().Summary(ctx))
			if err != nil {
				return err
			}
			return r.render(cmd, s, func(w io.Writer) {
				row(w, "Budgets", s.TotalBudgets)
				row(w, "Amount", fmt.Sprintf("%.2f", s.TotalAmount))
				row(w, "Spent", fmt.Sprintf("%.2f", s.TotalSpent))
				row(w, "Remaining", fmt.Sprintf("%.2f", s.TotalRemaining))
				row(w, "Used", fmt.Sprintf("%.1f%%", s.PercentageUsed))
				row(w, "Over budget", s.OverBudgetCount)
			})
		},
	}

	cmd.AddCommand(list, summary)
	return cmd
}

func (r *runner) alertsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "alerts", Short: "Review unseen alerts"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List unseen alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.authed(cmd)
			if err != nil {
				return err
			}
			alerts, err := unwrap(app.client.Alerts().List(ctx))
			if err != nil {
				return err
			}
			return r.render(cmd, alerts, func(w io.Writer) {
				row(w, "ID", "TYPE", "CATEGORY", "AMOUNT", "LABEL")
				for _, a := range alerts {
					row(w, a.ID, a.Type, orDash(a.Payload.CategoryName), orDash(a.Payload.Amount), orDash(a.Payload.Label))
				}
			})
		},
	}

	count := &cobra.Command{
		Use:   "count",
		Short: "Print the number of unseen alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.authed(cmd)
			if err != nil {
				return err
			}
			n, err := unwrap(app.client.Alerts().Count(ctx))
			if err != nil {
				return err
			}
			return r.render(cmd, n, func(w io.Writer) { row(w, n.Count) })
		},
	}

	dismiss := &cobra.Command{
		Use:   "dismiss ID",
		Short: "Mark an alert as seen",
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
			if _, err := unwrap(app.client.Alerts().Dismiss(ctx, id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dismissed alert %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, count, dismiss)
	return cmd
}

func (r *runner) tokensCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "tokens", Short: "Manage personal API tokens"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List API tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, ctx, err := r.authed(cmd)
			if err != nil {
				return err
			}
			tokens, err := unwrap(app.client.APITokens().List(ctx))
			if err != nil {
				return err
			}
			return r.render(cmd, tokens, func(w io.Writer) {
				row(w, "ID", "NAME", "CREATED", "LAST USED")
				for _, t := range tokens {
					row(w, t.ID, t.Name, t.CreatedAt.Format(time.DateOnly), lastUsed(t.LastUsed))
				}
			})
		},
	}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an API token and print its secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, err := r.authed(cmd)
			if err != nil {
				return err
			}
			tok, err := unwrap(app.client.APITokens().Create(ctx, args[0]))
			if err != nil {
				return err
			}
			return r.render(cmd, tok, func(w io.Writer) {
				row(w, "ID", tok.ID)
				row(w, "Name", tok.Name)
				row(w, "Token", tok.Token)
				fmt.Fprintln(cmd.ErrOrStderr(), "The token is shown once. Store it now.")
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Revoke an API token",
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
			if _, err := unwrap(app.client.APITokens().Delete(ctx, id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted token %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, create, del)
	return cmd
}
