package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/ledger/pkg/ledgersdk"
)

// hintError wraps err with advice for the user.
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string { return e.err.Error() + "; " + e.hint }
func (e *hintError) Unwrap() error { return e.err }

// envelopeError is a failed envelope surfaced as a command error.
type envelopeError struct {
	msg    string
	fields map[string][]string
}

func (e *envelopeError) Error() string {
	if len(e.fields) == 0 {
		return e.msg
	}

	var b strings.Builder
	b.WriteString(e.msg)
	for _, field := range slices.Sorted(maps.Keys(e.fields)) {
		fmt.Fprintf(&b, "\n  %s: %s", field, strings.Join(e.fields[field], " "))
	}
	return b.String()
}

// unwrap turns an envelope back into a value and an error for cobra.
func unwrap[T any](e ledgersdk.Envelope[T]) (T, error) {
	if !e.Success {
		return e.Data, &envelopeError{msg: e.Error, fields: e.Errors}
	}
	return e.Data, nil
}

// render writes v as indented JSON when --json is set and as a table
// otherwise.
func (r *runner) render(cmd *cobra.Command, v any, table func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	if r.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

// row writes tab separated cells terminated by a newline.
func row(w io.Writer, cells ...any) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
