package testutil

import (
	"sync"

	"github.com/coderberry/fixturama/internal/engine"
)

// DefaultScopeID is used by NewScope when no ID is given.
const DefaultScopeID = "test-scope-default"

// Trace is an engine.Observer that keeps every resolution in memory.
//
// Thread-safety: safe for concurrent use, though a scope itself is not.
type Trace struct {
	mu          sync.Mutex
	resolutions []engine.Resolution
}

// ObserveResolution implements engine.Observer.
func (t *Trace) ObserveResolution(r engine.Resolution) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resolutions = append(t.resolutions, r)
}

// Resolutions returns a copy of the recorded resolutions in seq order.
func (t *Trace) Resolutions() []engine.Resolution {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]engine.Resolution, len(t.resolutions))
	copy(out, t.resolutions)
	return out
}

// NewScope creates a reproducible scope over f: a fixed scope ID, its own
// clock starting at 0, and a Trace observer. Extra options are applied
// last, so callers may add observers or override the ID.
//
// Two scopes created with the same id and driven by the same calls
// produce identical traces.
func NewScope(f *engine.Fixture, id string, opts ...engine.ScopeOption) (*engine.Scope, *Trace) {
	if id == "" {
		id = DefaultScopeID
	}
	trace := &Trace{}
	base := []engine.ScopeOption{
		engine.WithScopeID(id),
		engine.WithClock(engine.NewClock()),
		engine.WithObserver(trace),
	}
	return f.NewScope(append(base, opts...)...), trace
}
