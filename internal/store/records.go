package store

import (
	"fmt"

	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/ir"
)

// Action kinds as stored. "error" records a failed resolution.
const (
	KindReturn = "return"
	KindRaise  = "raise"
	KindError  = "error"
)

// ScopeRecord is one stored scope.
type ScopeRecord struct {
	ID            string `json:"id"`
	Fixture       string `json:"fixture"`
	Label         string `json:"label,omitempty"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// ScopeSummary is a scope with its resolution count.
type ScopeSummary struct {
	ScopeRecord
	Resolutions int `json:"resolutions"`
}

// Resolution is one stored Resolve call.
type Resolution struct {
	ID            string `json:"id"`
	ScopeID       string `json:"scope_id"`
	Seq           int64  `json:"seq"`
	TargetKey     string `json:"target_key"`
	SignatureHash string `json:"signature_hash"`
	Signature     string `json:"signature"`

	// MatchKey is the counter key, "*" for the universal clause, or empty
	// when the call did not match.
	MatchKey string `json:"match_key,omitempty"`
	Index    int    `json:"invocation_index"`
	Clause   int    `json:"clause,omitempty"`

	ActionKind string `json:"action_kind"`

	// Payload is the returned value, {kind, message} for a raise, or
	// {code, message} for an error.
	Payload ir.IRValue `json:"payload"`
}

// NewResolution converts an engine resolution into a storable record.
func NewResolution(r engine.Resolution) (Resolution, error) {
	rec := Resolution{
		ScopeID:       r.ScopeID,
		Seq:           r.Seq,
		TargetKey:     string(r.Target),
		SignatureHash: r.Signature.Hash(),
		Signature:     string(r.Signature),
		MatchKey:      string(r.Key),
		Index:         r.Index,
		Clause:        r.Clause,
	}

	switch {
	case r.Err != nil:
		rec.ActionKind = KindError
		msg := r.Err.Error()
		if errs := engine.Errors(r.Err); len(errs) > 0 {
			msg = errs[0].Message
		}
		rec.Payload = ir.IRObject{
			"code":    ir.IRString(engine.CodeOf(r.Err)),
			"message": ir.IRString(msg),
		}
	case r.Action.IsRaise():
		rec.ActionKind = KindRaise
		rec.Payload = ir.IRObject{
			"kind":    ir.IRString(r.Action.Raise.Kind),
			"message": ir.IRString(r.Action.Raise.Message),
		}
	default:
		rec.ActionKind = KindReturn
		rec.Payload = r.Action.Value
		if rec.Payload == nil {
			rec.Payload = ir.IRNull{}
		}
	}

	id, err := ir.ResolutionID(rec.ScopeID, rec.TargetKey, rec.Signature, rec.Seq)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolution id: %w", err)
	}
	rec.ID = id
	return rec, nil
}
