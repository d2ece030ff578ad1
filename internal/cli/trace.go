package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/coderberry/fixturama/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	ScopeID  string
	Target   string // optional - filter to one target key
}

// TraceResult holds the timeline of one recorded scope.
type TraceResult struct {
	Scope    store.ScopeRecord  `json:"scope"`
	Timeline []store.Resolution `json:"timeline"`
	Stats    TraceStats         `json:"stats"`
}

// TraceStats holds summary statistics for a scope.
type TraceStats struct {
	Resolutions int `json:"resolutions"`
	Returns     int `json:"returns"`
	Raises      int `json:"raises"`
	Errors      int `json:"errors"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show recorded resolutions",
		Long: `Show resolutions recorded by resolve --db or test --db.

Without --scope, lists every recorded scope with its resolution count.
With --scope, prints that scope's resolutions in sequence order.

Examples:
  fixturama trace --db trace.db
  fixturama trace --db trace.db --scope payment_sequence
  fixturama trace --db trace.db --scope payment_sequence --target method:Payment#pay
  fixturama trace --db trace.db --scope payment_sequence --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.ScopeID, "scope", "", "scope ID to show")
	cmd.Flags().StringVar(&opts.Target, "target", "", "filter to one target key")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
	}
	defer st.Close()

	if opts.ScopeID == "" {
		return listScopes(ctx, st, formatter)
	}

	scope, err := st.GetScope(ctx, opts.ScopeID)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, err)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
	}

	records, err := st.ReadScope(ctx, opts.ScopeID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
	}

	result := TraceResult{Scope: scope, Timeline: []store.Resolution{}}
	for _, rec := range records {
		if opts.Target != "" && rec.TargetKey != opts.Target {
			continue
		}
		result.Timeline = append(result.Timeline, rec)
		result.Stats.Resolutions++
		switch rec.ActionKind {
		case store.KindReturn:
			result.Stats.Returns++
		case store.KindRaise:
			result.Stats.Raises++
		case store.KindError:
			result.Stats.Errors++
		}
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	outputTraceText(formatter.Writer, result, opts.Verbose)
	return nil
}

func listScopes(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	scopes, err := st.ListScopes(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
	}

	if formatter.IsJSON() {
		return formatter.Success(scopes)
	}

	w := formatter.Writer
	if len(scopes) == 0 {
		fmt.Fprintln(w, "No scopes recorded.")
		return nil
	}
	for _, s := range scopes {
		fmt.Fprintf(w, "%s  %s  %d resolution(s)", s.ID, s.Fixture, s.Resolutions)
		if s.Label != "" {
			fmt.Fprintf(w, "  [%s]", s.Label)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) {
	fmt.Fprintf(w, "Trace for Scope: %s\n", result.Scope.ID)
	fmt.Fprintf(w, "Fixture: %s\n", result.Scope.Fixture)
	if result.Scope.Label != "" {
		fmt.Fprintf(w, "Label: %s\n", result.Scope.Label)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no resolutions)")
	}
	for _, rec := range result.Timeline {
		fmt.Fprintf(w, "  [%d] %s %s -> %s %s\n",
			rec.Seq, rec.TargetKey, rec.Signature, rec.ActionKind, formatValue(rec.Payload))
		if verbose {
			if rec.MatchKey != "" {
				fmt.Fprintf(w, "       Clause: %d  Key: %s  Index: %d\n", rec.Clause, rec.MatchKey, rec.Index)
			}
			fmt.Fprintf(w, "       Hash: %s\n", truncateID(rec.SignatureHash))
			fmt.Fprintf(w, "       ID: %s\n", truncateID(rec.ID))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Resolutions: %d\n", result.Stats.Resolutions)
	fmt.Fprintf(w, "  Returns:     %d\n", result.Stats.Returns)
	fmt.Fprintf(w, "  Raises:      %d\n", result.Stats.Raises)
	fmt.Fprintf(w, "  Errors:      %d\n", result.Stats.Errors)
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:16] + "..."
}
