package harness

import (
	"fmt"
	"strings"

	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/fixture"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s -> %s %s\n",
			event.Seq, event.Target, event.Signature, event.Kind, formatValue(event.Payload))
	}

	return buf.String()
}

// assertionFilter selects trace events by target and, optionally, signature.
type assertionFilter struct {
	target    string
	signature string
}

func newFilter(a Assertion) (assertionFilter, error) {
	t, err := fixture.ParseDescriptor(a.Target)
	if err != nil {
		return assertionFilter{}, err
	}
	f := assertionFilter{target: string(t.Key())}
	if a.narrowed() {
		args, err := buildArgs(a.Args, a.Options)
		if err != nil {
			return assertionFilter{}, err
		}
		f.signature = string(engine.Normalize(args))
	}
	return f, nil
}

func (f assertionFilter) matches(event TraceEvent) bool {
	if event.Target != f.target {
		return false
	}
	return f.signature == "" || event.Signature == f.signature
}

func (f assertionFilter) String() string {
	if f.signature == "" {
		return f.target
	}
	return f.target + " " + f.signature
}

// assertResolutionContains checks that the trace holds a resolution of
// the target (and signature, when args or options are given).
func assertResolutionContains(trace []TraceEvent, assertion Assertion) error {
	filter, err := newFilter(assertion)
	if err != nil {
		return err
	}
	for _, event := range trace {
		if filter.matches(event) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertResolutionContains,
		Expected: fmt.Sprintf("resolution of %s", filter),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertResolutionOrder checks that targets first resolve in the given
// order. Resolutions need not be consecutive.
func assertResolutionOrder(trace []TraceEvent, assertion Assertion) error {
	keys := make([]string, len(assertion.Targets))
	for i, desc := range assertion.Targets {
		t, err := fixture.ParseDescriptor(desc)
		if err != nil {
			return err
		}
		keys[i] = string(t.Key())
	}

	// Positions are 1-indexed; 0 means not seen.
	positions := make(map[string]int)
	for i, event := range trace {
		if positions[event.Target] == 0 {
			positions[event.Target] = i + 1
		}
	}

	for _, key := range keys {
		if positions[key] == 0 {
			return &AssertionError{
				Type:     AssertResolutionOrder,
				Expected: fmt.Sprintf("all targets present: %v", keys),
				Actual:   fmt.Sprintf("missing target: %s", key),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(keys); i++ {
		prev, curr := keys[i-1], keys[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertResolutionOrder,
				Expected: fmt.Sprintf("targets in order: %v", keys),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertResolutionCount checks that the target resolved exactly Count
// times. Failed resolutions count.
func assertResolutionCount(trace []TraceEvent, assertion Assertion) error {
	filter, err := newFilter(assertion)
	if err != nil {
		return err
	}

	count := 0
	for _, event := range trace {
		if filter.matches(event) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertResolutionCount,
			Expected: fmt.Sprintf("%d resolutions of %s", assertion.Count, filter),
			Actual:   fmt.Sprintf("%d resolutions", count),
			Trace:    trace,
		}
	}

	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertResolutionContains:
			err = assertResolutionContains(result.Trace, assertion)
		case AssertResolutionOrder:
			err = assertResolutionOrder(result.Trace, assertion)
		case AssertResolutionCount:
			err = assertResolutionCount(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
