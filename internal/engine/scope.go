package engine

import (
	"fmt"

	"github.com/coderberry/fixturama/internal/ir"
)

// Resolution records one Resolve call.
type Resolution struct {
	ScopeID string
	Seq     int64
	Target  ir.TargetKey

	// Signature is the call's normalized signature.
	Signature Signature

	// Key, Index and Clause are zero when the call did not match.
	Key    Signature
	Index  int
	Clause int

	// Action is the selected action; zero when Err is set.
	Action Action

	// Err is the resolution failure, if any.
	Err error
}

// Observer is notified of every resolution, matched or not, in order.
type Observer interface {
	ObserveResolution(Resolution)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Resolution)

// ObserveResolution calls f(r).
func (f ObserverFunc) ObserveResolution(r Resolution) {
	f(r)
}

// ScopeOption configures a Scope.
type ScopeOption func(*Scope)

// WithObserver adds an observer. Observers run synchronously inside
// Resolve, in the order they were added.
func WithObserver(o Observer) ScopeOption {
	return func(s *Scope) {
		s.observers = append(s.observers, o)
	}
}

// WithScopeID sets the scope ID instead of generating one.
func WithScopeID(id string) ScopeOption {
	return func(s *Scope) {
		s.id = id
	}
}

// WithIDGenerator sets the generator used when no ID is given.
// Default: UUIDv7Generator.
func WithIDGenerator(gen ScopeIDGenerator) ScopeOption {
	return func(s *Scope) {
		s.idGen = gen
	}
}

// WithClock sets the sequence source. Default: a fresh Clock per scope.
func WithClock(clock SeqSource) ScopeOption {
	return func(s *Scope) {
		s.clock = clock
	}
}

// Scope is the per-test resolution state of a Fixture.
//
// A Scope starts with every counter at zero and is discarded when the
// test ends; there is no reset. Scopes never share counters.
//
// Thread-safety: Scope is NOT safe for concurrent use. Parallel tests must
// each call Fixture.NewScope.
type Scope struct {
	id        string
	fixture   *Fixture
	counter   *Counter
	clock     SeqSource
	idGen     ScopeIDGenerator
	observers []Observer
	calls     int
}

// NewScope creates a fresh scope over f.
func (f *Fixture) NewScope(opts ...ScopeOption) *Scope {
	s := &Scope{
		fixture: f,
		counter: NewCounter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = NewClock()
	}
	if s.id == "" {
		if s.idGen == nil {
			s.idGen = UUIDv7Generator{}
		}
		s.id = s.idGen.Generate()
	}
	return s
}

// ID returns the scope identifier.
func (s *Scope) ID() string {
	return s.id
}

// Fixture returns the compiled fixture the scope resolves against.
func (s *Scope) Fixture() *Fixture {
	return s.fixture
}

// Stubs reports whether the scope's fixture declares key.
func (s *Scope) Stubs(key ir.TargetKey) bool {
	return s.fixture.Stubs(key)
}

// Resolve decides the action for one invocation of target with args.
//
// Errors:
//   - InvalidTarget: the fixture does not declare target
//   - NoStubMatched: no exact or universal clause applies
//
// A failed resolution does not advance any counter.
func (s *Scope) Resolve(target ir.TargetKey, args ir.Args) (Action, error) {
	s.calls++

	table, ok := s.fixture.Table(target)
	if !ok {
		err := &Error{
			Code:    ErrCodeInvalidTarget,
			Message: fmt.Sprintf("target %q is not declared in the fixture", target),
			Target:  target,
		}
		s.notify(Resolution{Target: target, Signature: Normalize(args), Err: err})
		return Action{}, err
	}

	rule, sig, err := table.Match(args)
	if err != nil {
		s.notify(Resolution{Target: target, Signature: sig, Err: err})
		return Action{}, err
	}

	idx := s.counter.Next(target, rule.Key)
	action := newAction(rule.Sequence.Select(idx))
	action.Target = target
	action.Signature = sig
	action.Key = rule.Key
	action.Index = idx

	s.notify(Resolution{
		Target:    target,
		Signature: sig,
		Key:       rule.Key,
		Index:     idx,
		Clause:    rule.Clause,
		Action:    action,
	})
	return action, nil
}

// Count returns how many times the (target, key) pair has resolved.
func (s *Scope) Count(target ir.TargetKey, key Signature) int {
	return s.counter.Peek(target, key)
}

// Calls returns the number of Resolve calls, including failed ones.
func (s *Scope) Calls() int {
	return s.calls
}

func (s *Scope) notify(r Resolution) {
	r.ScopeID = s.id
	r.Seq = s.clock.Next()
	for _, o := range s.observers {
		o.ObserveResolution(r)
	}
}
