package engine

import (
	"fmt"

	"github.com/coderberry/fixturama/internal/ir"
)

// ActionKind says how a shim must complete a stubbed call.
type ActionKind string

const (
	// ActionReturn completes the call with Action.Value.
	ActionReturn ActionKind = "return"

	// ActionRaise fails the call with Action.Raise.
	ActionRaise ActionKind = "raise"
)

// Action is what a Scope hands back to a shim for one invocation.
// Exactly one of Value and Raise is meaningful, selected by Kind.
type Action struct {
	Kind  ActionKind
	Value ir.IRValue
	Raise *StubError

	// Target and Signature identify the matched rule.
	Target    ir.TargetKey
	Signature Signature

	// Key is the counter key: Signature for exact matches, UniversalKey
	// otherwise.
	Key Signature

	// Index is the 0-based invocation index for Key.
	Index int
}

func newAction(entry ir.ActionEntry) Action {
	if entry.IsRaise() {
		return Action{
			Kind:  ActionRaise,
			Raise: &StubError{Kind: entry.Raise.Kind, Message: entry.Raise.Message},
		}
	}
	return Action{Kind: ActionReturn, Value: entry.Return}
}

// Result returns (value, nil) for a return action and (nil, err) for a
// raise action.
func (a Action) Result() (ir.IRValue, error) {
	if a.Kind == ActionRaise {
		return nil, a.Raise
	}
	return a.Value, nil
}

// IsRaise reports whether the action fails the call.
func (a Action) IsRaise() bool {
	return a.Kind == ActionRaise
}

// StubError is the failure a raise action produces.
type StubError struct {
	// Kind is the declared error class, e.g. "ArgumentError".
	Kind string

	// Message is the declared error message.
	Message string
}

// Error implements the error interface.
func (e *StubError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches another *StubError with the same kind, so callers can write
// errors.Is(err, &engine.StubError{Kind: "Timeout"}).
func (e *StubError) Is(target error) bool {
	t, ok := target.(*StubError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}
