package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledTarget is the rule table of one target.
type CompiledTarget struct {
	Target string         `json:"target"`
	Kind   string         `json:"kind"`
	Rules  []CompiledRule `json:"rules"`
}

// CompiledRule is one clause with its expanded action sequence.
type CompiledRule struct {
	Clause  int              `json:"clause"`
	Key     string           `json:"key"`
	Line    int              `json:"line,omitempty"`
	Total   int              `json:"total"`
	Actions []CompiledAction `json:"actions"`
}

// CompiledAction is one sequence entry.
type CompiledAction struct {
	Count  int           `json:"count"`
	Return ir.IRValue    `json:"return,omitempty"`
	Raise  *ir.ErrorSpec `json:"raise,omitempty"`
}

// CompilationResult holds the compiled fixture.
type CompilationResult struct {
	Fixture string           `json:"fixture"`
	Targets []CompiledTarget `json:"targets"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <fixture>",
		Short: "Compile a fixture and print its rule tables",
		Long: `Compile a YAML or CUE fixture into per-target rule tables.

Every clause is listed with its normalized signature key ("*" for the
universal clause) and its action sequence. With --output the tables are
written to a file as JSON.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	f, err := loadFixture(formatter, path)
	if err != nil {
		return err
	}
	result := buildCompilation(path, f)

	if opts.Output != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeBadInput, err)
		}
		if err := os.WriteFile(opts.Output, append(data, '\n'), 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeBadInput, fmt.Errorf("write output: %w", err))
		}
		opts.Logger().Info("compiled fixture written", "fixture", path, "output", opts.Output)
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s %s: %d target(s)\n", green("✓"), path, len(result.Targets))
	for _, t := range result.Targets {
		fmt.Fprintf(w, "\n%s\n", t.Target)
		for _, r := range t.Rules {
			fmt.Fprintf(w, "  [%d] %s\n", r.Clause, r.Key)
			for _, a := range r.Actions {
				fmt.Fprintf(w, "      %s x%d\n", describeEntry(a), a.Count)
			}
		}
	}
	if opts.Output != "" {
		fmt.Fprintf(w, "\nWritten to %s\n", opts.Output)
	}
	return nil
}

func buildCompilation(path string, f *engine.Fixture) CompilationResult {
	result := CompilationResult{Fixture: path, Targets: []CompiledTarget{}}
	for _, target := range f.Targets() {
		table, _ := f.Table(target.Key())
		ct := CompiledTarget{Target: string(target.Key()), Kind: string(target.Kind)}
		for _, rule := range table.Rules() {
			cr := CompiledRule{
				Clause: rule.Clause,
				Key:    string(rule.Key),
				Line:   rule.Line,
				Total:  rule.Sequence.Total(),
			}
			for _, e := range rule.Sequence.Entries() {
				cr.Actions = append(cr.Actions, CompiledAction{Count: e.Count, Return: e.Return, Raise: e.Raise})
			}
			ct.Rules = append(ct.Rules, cr)
		}
		result.Targets = append(result.Targets, ct)
	}
	return result
}

func describeEntry(a CompiledAction) string {
	if a.Raise != nil {
		return fmt.Sprintf("raise %s: %s", a.Raise.Kind, a.Raise.Message)
	}
	return "return " + formatValue(a.Return)
}

// formatValue renders an IR value as canonical JSON.
func formatValue(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
