package engine

import (
	"errors"
	"fmt"

	"github.com/coderberry/fixturama/internal/ir"
)

// Rule is one compiled clause: a predicate and its action sequence.
type Rule struct {
	// Key is the predicate's signature, or UniversalKey.
	Key Signature

	// Clause is the 1-based clause position within the target.
	Clause int

	// Line is the fixture source line, or 0.
	Line int

	Sequence *Sequence
}

// IsUniversal reports whether the rule is the target's catch-all clause.
func (r *Rule) IsUniversal() bool {
	return r.Key == UniversalKey
}

// RuleTable is the static rule set of one target.
//
// Exact clauses are indexed by signature, so matching is a single map
// lookup. Exact clauses always outrank the universal clause, whatever
// their declaration order.
type RuleTable struct {
	target    ir.Target
	line      int
	rules     []*Rule // declaration order
	exact     map[Signature]*Rule
	universal *Rule
	headers   []string
}

// NewRuleTable compiles one target's clauses.
//
// Every problem is reported, not just the first; the result is an
// errors.Join of *Error values. A nil table is returned on error.
func NewRuleTable(spec ir.TargetSpec) (*RuleTable, error) {
	t := &RuleTable{
		target:  spec.Target,
		line:    spec.Line,
		exact:   make(map[Signature]*Rule),
		headers: spec.Headers,
	}
	key := spec.Target.Key()

	var errs []error
	if err := validateTarget(spec); err != nil {
		errs = append(errs, err)
	}

	for i, clause := range spec.Clauses {
		pos := i + 1
		rule := &Rule{Clause: pos, Line: clause.Line}

		switch p := clause.Predicate.(type) {
		case ir.Exact:
			if !spec.Target.Kind.TakesArguments() {
				errs = append(errs, &Error{
					Code:    ErrCodeInvalidTarget,
					Message: fmt.Sprintf("%s targets take no arguments", spec.Target.Kind),
					Target:  key,
					Clause:  pos,
					Line:    clause.Line,
				})
				continue
			}
			rule.Key = Normalize(p.Args)
			if prev, dup := t.exact[rule.Key]; dup {
				errs = append(errs, &Error{
					Code:      ErrCodeDuplicateStubRule,
					Message:   fmt.Sprintf("predicate already declared by clause %d", prev.Clause),
					Target:    key,
					Signature: rule.Key,
					Clause:    pos,
					Line:      clause.Line,
				})
				continue
			}
		case ir.Universal:
			rule.Key = UniversalKey
			if t.universal != nil {
				errs = append(errs, &Error{
					Code:    ErrCodeDuplicateStubRule,
					Message: fmt.Sprintf("universal clause already declared by clause %d", t.universal.Clause),
					Target:  key,
					Clause:  pos,
					Line:    clause.Line,
				})
				continue
			}
		default:
			errs = append(errs, &Error{
				Code:    ErrCodeInvalidTarget,
				Message: fmt.Sprintf("unknown predicate type %T", clause.Predicate),
				Target:  key,
				Clause:  pos,
				Line:    clause.Line,
			})
			continue
		}

		seq, aerr := compileActions(spec.Target, clause.Actions)
		if aerr != nil {
			aerr.Target = key
			aerr.Clause = pos
			aerr.Line = clause.Line
			errs = append(errs, aerr)
			continue
		}
		rule.Sequence = seq

		if rule.IsUniversal() {
			t.universal = rule
		} else {
			t.exact[rule.Key] = rule
		}
		t.rules = append(t.rules, rule)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

func validateTarget(spec ir.TargetSpec) error {
	t := spec.Target
	switch t.Kind {
	case ir.TargetMethod, ir.TargetEnv, ir.TargetConst, ir.TargetHTTP:
	default:
		return &Error{
			Code:    ErrCodeInvalidTarget,
			Message: fmt.Sprintf("unknown target kind %q", t.Kind),
			Target:  t.Key(),
			Line:    spec.Line,
		}
	}
	if t.Name == "" {
		return &Error{
			Code:    ErrCodeInvalidTarget,
			Message: "target name is empty",
			Target:  t.Key(),
			Line:    spec.Line,
		}
	}
	if len(spec.Clauses) == 0 {
		return &Error{
			Code:    ErrCodeMalformedAction,
			Message: "target declares no clauses",
			Target:  t.Key(),
			Line:    spec.Line,
		}
	}
	return nil
}

// actionError carries a code out of compileActions before the caller
// attaches target and clause context.
type actionError struct {
	code ErrorCode
	msg  string
}

func (e *actionError) Error() string { return e.msg }

func compileActions(target ir.Target, entries []ir.ActionEntry) (*Sequence, *Error) {
	if len(entries) == 0 {
		return nil, &Error{Code: ErrCodeMalformedAction, Message: "action list is empty"}
	}
	for i, e := range entries {
		if err := validateEntry(target, e); err != nil {
			return nil, &Error{Code: err.code, Message: fmt.Sprintf("action %d: %s", i+1, err.msg)}
		}
	}
	seq, err := NewSequence(entries)
	if err != nil {
		return nil, &Error{Code: ErrCodeMalformedAction, Message: err.Error()}
	}
	return seq, nil
}

func validateEntry(target ir.Target, e ir.ActionEntry) *actionError {
	switch {
	case e.Return == nil && e.Raise == nil:
		return &actionError{ErrCodeMalformedAction, "declares neither return nor raise"}
	case e.Return != nil && e.Raise != nil:
		return &actionError{ErrCodeMalformedAction, "declares both return and raise"}
	case e.Count < 1:
		return &actionError{ErrCodeMalformedAction, fmt.Sprintf("count must be positive, got %d", e.Count)}
	}

	if e.Raise != nil {
		if e.Raise.Kind == "" {
			return &actionError{ErrCodeMalformedAction, "raise has no kind"}
		}
		if e.Raise.Message == "" {
			return &actionError{ErrCodeMalformedAction, "raise has no message"}
		}
		return nil
	}

	if target.Kind == ir.TargetHTTP {
		if _, err := ir.ResponseFromValue(e.Return); err != nil {
			return &actionError{ErrCodeInvalidTarget, err.Error()}
		}
	}
	return nil
}

// Match resolves args to a rule.
//
// Returns the rule, the call's own signature, and the counter key
// (the signature for exact matches, UniversalKey otherwise).
// Fails with NoStubMatched when neither an exact nor a universal clause
// applies.
func (t *RuleTable) Match(args ir.Args) (*Rule, Signature, error) {
	sig := Normalize(args)
	rule, err := t.lookup(sig)
	return rule, sig, err
}

func (t *RuleTable) lookup(sig Signature) (*Rule, error) {
	if rule, ok := t.exact[sig]; ok {
		return rule, nil
	}
	if t.universal != nil {
		return t.universal, nil
	}
	return nil, &Error{
		Code:      ErrCodeNoStubMatched,
		Message:   "no clause matches call arguments",
		Target:    t.target.Key(),
		Signature: sig,
	}
}

// Target returns the stubbed target.
func (t *RuleTable) Target() ir.Target {
	return t.target
}

// Rules returns the compiled rules in declaration order.
func (t *RuleTable) Rules() []*Rule {
	cp := make([]*Rule, len(t.rules))
	copy(cp, t.rules)
	return cp
}

// Headers returns the request header names that take part in the
// signature of an HTTP call.
func (t *RuleTable) Headers() []string {
	cp := make([]string, len(t.headers))
	copy(cp, t.headers)
	return cp
}

// HasUniversal reports whether the target declares a universal clause.
func (t *RuleTable) HasUniversal() bool {
	return t.universal != nil
}
