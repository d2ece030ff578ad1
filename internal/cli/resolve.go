package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/fixture"
	"github.com/coderberry/fixturama/internal/ir"
	"github.com/coderberry/fixturama/internal/store"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Args     string // JSON array of positional arguments
	Options  string // JSON object options bag
	Times    int
	Database string
	Label    string
}

// ResolveStep is the outcome of one invocation.
type ResolveStep struct {
	Seq   int64      `json:"seq"`
	Index int        `json:"index"`
	Key   string     `json:"key,omitempty"`
	Kind  string     `json:"kind"`
	Value ir.IRValue `json:"value,omitempty"`
	Error string     `json:"error,omitempty"`
	Code  string     `json:"code,omitempty"`
}

// ResolveResult holds every invocation of one resolve run.
type ResolveResult struct {
	ScopeID   string        `json:"scope_id"`
	Target    string        `json:"target"`
	Signature string        `json:"signature"`
	Calls     int           `json:"calls"`
	Failed    int           `json:"failed"`
	Steps     []ResolveStep `json:"steps"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <fixture> <target>",
		Short: "Resolve successive invocations of a target",
		Long: `Resolve N successive invocations of one target in a fresh scope and
print the action each invocation receives.

The target is a descriptor as written in fixtures: Type#method,
env:NAME, const:NAME or "http:METHOD url".

Exit codes:
  0 - Every invocation resolved
  1 - An invocation did not match any clause
  2 - Command error (bad fixture, bad flags, database errors)

Examples:
  fixturama resolve stub.yml Payment#pay --args '[2]' --times 4
  fixturama resolve stub.yml Payment#pay --args '[10]' --options '{"overdraft":true}'
  fixturama resolve stub.yml env:FOO --db trace.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "[]", "positional arguments as a JSON array")
	cmd.Flags().StringVar(&opts.Options, "options", "", "options bag as a JSON object")
	cmd.Flags().IntVarP(&opts.Times, "times", "n", 1, "number of invocations")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record resolutions to this SQLite database")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label stored with the recorded scope")

	return cmd
}

func runResolve(opts *ResolveOptions, path, descriptor string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.Logger()

	if opts.Times < 1 {
		return formatter.Fail(ExitCommandError, ErrCodeBadInput, fmt.Errorf("--times must be at least 1, got %d", opts.Times))
	}
	target, err := fixture.ParseDescriptor(descriptor)
	if err != nil {
		return formatter.Fail(ExitCommandError, string(engine.ErrCodeInvalidTarget), err)
	}
	args, err := parseArgs(opts.Args, opts.Options)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadInput, err)
	}

	f, err := loadFixture(formatter, path)
	if err != nil {
		return err
	}

	var steps []ResolveStep
	scopeOpts := []engine.ScopeOption{
		engine.WithObserver(engine.ObserverFunc(func(r engine.Resolution) {
			steps = append(steps, stepOf(r))
		})),
	}
	var recorder *store.Recorder
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
		}
		defer st.Close()
		recorder = st.NewRecorder(context.Background(), path, opts.Label)
		scopeOpts = append(scopeOpts, engine.WithObserver(recorder))
	}

	scope := f.NewScope(scopeOpts...)
	failed := 0
	for i := 0; i < opts.Times; i++ {
		if _, err := scope.Resolve(target.Key(), args); err != nil {
			failed++
		}
	}
	result := ResolveResult{
		ScopeID:   scope.ID(),
		Target:    string(target.Key()),
		Signature: string(engine.Normalize(args)),
		Calls:     scope.Calls(),
		Failed:    failed,
		Steps:     steps,
	}
	logger.Debug("resolved target",
		"fixture", path,
		"target", result.Target,
		"scope_id", result.ScopeID,
		"calls", result.Calls,
		"failed", result.Failed,
	)

	if recorder != nil {
		if err := recorder.Err(); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
		}
		formatter.VerboseLog("Recorded %d resolution(s) to %s", recorder.Count(), opts.Database)
	}

	var exitErr error
	if failed > 0 {
		exitErr = NewExitError(ExitFailure, fmt.Sprintf("%d of %d invocation(s) failed", failed, result.Calls))
	}

	if formatter.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if failed > 0 {
			first := firstFailure(result.Steps)
			resp.Status = "error"
			resp.Error = &CLIError{Code: first.Code, Message: first.Error}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
		return exitErr
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s %s\n", result.Target, result.Signature)
	for _, s := range result.Steps {
		switch s.Kind {
		case store.KindError:
			fmt.Fprintf(w, "  %s [%d] %s\n", red("✗"), s.Seq, s.Error)
		case store.KindRaise:
			fmt.Fprintf(w, "  %s [%d] #%d raise %s\n", green("✓"), s.Seq, s.Index, s.Error)
		default:
			fmt.Fprintf(w, "  %s [%d] #%d return %s\n", green("✓"), s.Seq, s.Index, formatValue(s.Value))
		}
	}
	fmt.Fprintf(w, "%d call(s), %d failed\n", result.Calls, result.Failed)
	if recorder != nil {
		fmt.Fprintf(w, "Scope: %s\n", result.ScopeID)
	}
	return exitErr
}

// parseArgs decodes the --args and --options flags.
func parseArgs(rawArgs, rawOptions string) (ir.Args, error) {
	args := ir.NewArgs()
	if rawArgs != "" {
		v, err := ir.UnmarshalIRValue([]byte(rawArgs))
		if err != nil {
			return ir.Args{}, fmt.Errorf("invalid --args JSON: %w", err)
		}
		arr, ok := v.(ir.IRArray)
		if !ok {
			return ir.Args{}, fmt.Errorf("--args must be a JSON array")
		}
		args.Positional = arr
	}
	if rawOptions != "" {
		v, err := ir.UnmarshalIRValue([]byte(rawOptions))
		if err != nil {
			return ir.Args{}, fmt.Errorf("invalid --options JSON: %w", err)
		}
		obj, ok := v.(ir.IRObject)
		if !ok {
			return ir.Args{}, fmt.Errorf("--options must be a JSON object")
		}
		args = args.WithOptions(obj)
	}
	return args, nil
}

func stepOf(r engine.Resolution) ResolveStep {
	step := ResolveStep{Seq: r.Seq, Index: r.Index, Key: string(r.Key)}
	switch {
	case r.Err != nil:
		step.Kind = store.KindError
		step.Code = string(engine.CodeOf(r.Err))
		step.Error = r.Err.Error()
	case r.Action.IsRaise():
		step.Kind = store.KindRaise
		step.Error = r.Action.Raise.Error()
	default:
		step.Kind = store.KindReturn
		step.Value = r.Action.Value
	}
	return step
}

func firstFailure(steps []ResolveStep) ResolveStep {
	for _, s := range steps {
		if s.Kind == store.KindError {
			return s
		}
	}
	return ResolveStep{}
}
