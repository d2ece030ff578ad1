package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/fixture"
	"github.com/coderberry/fixturama/internal/ir"
	"github.com/coderberry/fixturama/internal/store"
	"github.com/coderberry/fixturama/internal/testutil"
)

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	logger    *slog.Logger
	observers []engine.Observer
}

// WithLogger sets the logger. Default: discard.
func WithLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithObserver adds an observer to the scenario's scope, e.g. a
// store.Recorder persisting the trace.
func WithObserver(o engine.Observer) RunOption {
	return func(c *runConfig) {
		c.observers = append(c.observers, o)
	}
}

// Harness executes one scenario against one scope.
type Harness struct {
	scope  *engine.Scope
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh scope with a fixed scope ID (ScopeID, or
// the scenario name) and a deterministic clock, so the same scenario always yields the same trace.
//
// Execution flow:
// 1. Load and compile the fixture
// 2. Resolve every call, checking its expectation
// 3. Build the trace from the recorded resolutions
// 4. Evaluate assertions against the trace
//
// A fixture that fails to load is returned as an error; failed
// expectations and assertions are reported in Result.Errors.
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	f, err := fixture.Load(scenario.Fixture)
	if err != nil {
		return nil, err
	}

	scopeOpts := make([]engine.ScopeOption, 0, len(cfg.observers))
	for _, o := range cfg.observers {
		scopeOpts = append(scopeOpts, engine.WithObserver(o))
	}
	scopeID := scenario.ScopeID
	if scopeID == "" {
		scopeID = scenario.Name
	}
	scope, trace := testutil.NewScope(f, scopeID, scopeOpts...)

	h := &Harness{scope: scope, logger: cfg.logger}
	result := NewResult()
	result.ScopeID = scope.ID()

	if err := h.executeCalls(scenario.Calls, result); err != nil {
		return nil, fmt.Errorf("failed to execute calls: %w", err)
	}

	for _, r := range trace.Resolutions() {
		rec, err := store.NewResolution(r)
		if err != nil {
			return nil, fmt.Errorf("trace seq %d: %w", r.Seq, err)
		}
		result.Trace = append(result.Trace, newTraceEvent(rec))
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"scope_id", result.ScopeID,
		"resolutions", len(result.Trace),
		"pass", result.Pass,
	)
	return result, nil
}

// executeCalls resolves every call and validates its expectation.
func (h *Harness) executeCalls(calls []Call, result *Result) error {
	for i, call := range calls {
		target, err := fixture.ParseDescriptor(call.Target)
		if err != nil {
			return fmt.Errorf("call %d: %w", i, err)
		}
		args, err := buildArgs(call.Args, call.Options)
		if err != nil {
			return fmt.Errorf("call %d: %w", i, err)
		}

		times := call.Times
		if times == 0 {
			times = 1
		}
		for n := 0; n < times; n++ {
			action, err := h.scope.Resolve(target.Key(), args)
			if msg := checkExpect(call.Expect, action, err); msg != "" {
				result.AddError(fmt.Sprintf("calls[%d] #%d %s: %s", i, n+1, call.Target, msg))
			}

			h.logger.Debug("call resolved",
				"call", i,
				"repeat", n,
				"target", target.Key(),
				"index", action.Index,
				"kind", action.Kind,
				"error", err,
			)
		}
	}
	return nil
}

// checkExpect compares one resolution against its expectation and returns
// a failure message, or "" on success.
func checkExpect(expect *Expect, action engine.Action, err error) string {
	if expect == nil {
		if err != nil {
			return fmt.Sprintf("unexpected error: %v", err)
		}
		return ""
	}

	switch {
	case expect.Error != "":
		if err == nil {
			return fmt.Sprintf("expected error %s, got %s", expect.Error, describe(action))
		}
		if code := engine.CodeOf(err); string(code) != expect.Error {
			return fmt.Sprintf("expected error %s, got %v", expect.Error, err)
		}
	case err != nil:
		return fmt.Sprintf("unexpected error: %v", err)
	case expect.Raise != nil:
		want := &engine.StubError{Kind: expect.Raise.Kind, Message: expect.Raise.Message}
		_, got := action.Result()
		if !errors.Is(got, want) {
			return fmt.Sprintf("expected raise %s, got %s", want, describe(action))
		}
	default:
		var raw any
		if err := expect.Return.Decode(&raw); err != nil {
			return fmt.Sprintf("invalid expected return: %v", err)
		}
		want, err := ir.FromGo(raw)
		if err != nil {
			return fmt.Sprintf("invalid expected return: %v", err)
		}
		if action.IsRaise() {
			return fmt.Sprintf("expected return %s, got %s", formatValue(want), describe(action))
		}
		if !valuesEqual(want, action.Value) {
			return fmt.Sprintf("expected return %s, got %s", formatValue(want), formatValue(action.Value))
		}
	}
	return ""
}

func describe(action engine.Action) string {
	if action.IsRaise() {
		return "raise " + action.Raise.Error()
	}
	return "return " + formatValue(action.Value)
}

// buildArgs converts YAML-decoded call arguments into engine Args.
func buildArgs(positional []any, options map[string]any) (ir.Args, error) {
	args := ir.NewArgs()
	for i, v := range positional {
		val, err := ir.FromGo(v)
		if err != nil {
			return ir.Args{}, fmt.Errorf("args[%d]: %w", i, err)
		}
		args.Positional = append(args.Positional, val)
	}
	if len(options) > 0 {
		val, err := ir.FromGo(options)
		if err != nil {
			return ir.Args{}, fmt.Errorf("options: %w", err)
		}
		args = args.WithOptions(val.(ir.IRObject))
	}
	return args, nil
}

// valuesEqual compares IR values by canonical form.
func valuesEqual(a, b ir.IRValue) bool {
	ca, errA := ir.MarshalCanonical(a)
	cb, errB := ir.MarshalCanonical(b)
	return errA == nil && errB == nil && string(ca) == string(cb)
}

func formatValue(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
