package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/coderberry/fixturama/internal/compiler"
	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/fixture"
)

// Problem is one fixture error as reported by the CLI.
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Target  string `json:"target,omitempty"`
	Clause  int    `json:"clause,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Fixture string    `json:"fixture"`
	Valid   bool      `json:"valid"`
	Targets int       `json:"targets"`
	Errors  []Problem `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <fixture>",
		Short: "Validate a fixture document",
		Long: `Load and compile a YAML or CUE fixture, reporting every error.

Reports syntax errors, malformed actions, duplicate stub rules and
invalid targets with their source line.

Exit codes:
  0 - Fixture is valid
  1 - Fixture has errors
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	f, err := fixture.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("fixture not found: %s", path))
	}
	if err != nil {
		return outputValidationErrors(formatter, path, problemsOf(err))
	}

	formatter.VerboseLog("Compiled %d target(s) from %s", len(f.Targets()), path)
	result := ValidationResult{Fixture: path, Valid: true, Targets: len(f.Targets())}
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s %s: %d target(s) valid\n", green("✓"), path, result.Targets)
	return nil
}

// problemsOf flattens a fixture load error into reportable problems.
func problemsOf(err error) []Problem {
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		return []Problem{{Code: ErrCodeSyntax, Message: ce.Message, Line: ce.Line}}
	}

	var out []Problem
	for _, fe := range engine.Errors(err) {
		out = append(out, Problem{
			Code:    string(fe.Code),
			Message: fe.Message,
			Target:  string(fe.Target),
			Clause:  fe.Clause,
			Line:    fe.Line,
		})
	}
	if len(out) == 0 {
		out = append(out, Problem{Code: ErrCodeBadInput, Message: err.Error()})
	}
	return out
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, path string, problems []Problem) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(problems)))

	if formatter.IsJSON() {
		err := formatter.JSON(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Fixture: path, Valid: false, Errors: problems},
			Error: &CLIError{
				Code:    problems[0].Code,
				Message: problems[0].Message,
			},
		})
		if err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintf(formatter.Writer, "%s Validation failed: %s\n\n", red("✗"), path)
	for _, p := range problems {
		if p.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", p.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s", p.Code, p.Message)
		if p.Target != "" {
			fmt.Fprintf(formatter.Writer, " (%s)", p.Target)
		}
		fmt.Fprint(formatter.Writer, "\n\n")
	}

	return exitErr
}

// loadFixture loads a fixture for commands other than validate; any
// failure is a command error.
func loadFixture(formatter *OutputFormatter, path string) (*engine.Fixture, error) {
	f, err := fixture.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("fixture not found: %s", path))
	}
	if err != nil {
		p := problemsOf(err)[0]
		return nil, formatter.Fail(ExitCommandError, p.Code, err)
	}
	return f, nil
}
