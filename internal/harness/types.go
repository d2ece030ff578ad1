package harness

import (
	"github.com/coderberry/fixturama/internal/ir"
	"github.com/coderberry/fixturama/internal/store"
)

// TraceEvent is one resolution in a scenario trace.
type TraceEvent struct {
	Seq       int64  `json:"seq"`
	Target    string `json:"target"`
	Signature string `json:"signature"`

	// Key is the counter key; empty when the call did not match.
	Key   string `json:"key,omitempty"`
	Index int    `json:"index"`

	// Kind is "return", "raise" or "error".
	Kind    string     `json:"kind"`
	Payload ir.IRValue `json:"payload"`
}

func newTraceEvent(r store.Resolution) TraceEvent {
	return TraceEvent{
		Seq:       r.Seq,
		Target:    r.TargetKey,
		Signature: r.Signature,
		Key:       r.MatchKey,
		Index:     r.Index,
		Kind:      r.ActionKind,
		Payload:   r.Payload,
	}
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// ScopeID is the ID of the scope the calls resolved in.
	ScopeID string `json:"scope_id"`

	// Trace contains every resolution in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
