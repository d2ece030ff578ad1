package intercept

import (
	"context"
	"fmt"
	"sync"

	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/fixture"
	"github.com/coderberry/fixturama/internal/ir"
)

// Func is a method implementation reachable through a Registry.
type Func func(ctx context.Context, args ir.Args) (ir.IRValue, error)

// Registry maps method targets to swappable implementations.
//
// Thread-safety: Registry is safe for concurrent use. The installed scope
// is not; tests that call through a registry from several goroutines
// must serialize those calls.
type Registry struct {
	mu    sync.RWMutex
	funcs map[ir.TargetKey]Func
	stubs map[ir.TargetKey]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[ir.TargetKey]Func),
		stubs: make(map[ir.TargetKey]Func),
	}
}

// methodKey parses a method descriptor such as "Payment#pay".
func methodKey(name string) (ir.TargetKey, error) {
	target, err := fixture.ParseDescriptor(name)
	if err != nil {
		return "", err
	}
	if target.Kind != ir.TargetMethod {
		return "", fmt.Errorf("%q is not a method descriptor", name)
	}
	return target.Key(), nil
}

// Register installs the real implementation of a method.
func (r *Registry) Register(name string, fn Func) error {
	key, err := methodKey(name)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[key] = fn
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Call dispatches to the stub installed for name, or to the real
// implementation when no installed fixture declares it.
//
// A raise action surfaces as *engine.StubError; an unmatched call as an
// *engine.Error with code NO_STUB_MATCHED. Neither falls through to the
// real implementation.
func (r *Registry) Call(ctx context.Context, name string, args ir.Args) (ir.IRValue, error) {
	key, err := methodKey(name)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	fn, stubbed := r.stubs[key]
	if !stubbed {
		fn = r.funcs[key]
	}
	r.mu.RUnlock()

	if fn == nil {
		return nil, fmt.Errorf("method %s is not registered", key)
	}
	return fn(ctx, args)
}

// Install stubs every method target of the scope's fixture and returns a
// func that restores the previous stubs.
func (r *Registry) Install(scope *engine.Scope) (restore func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := make(map[ir.TargetKey]Func, len(r.stubs))
	for k, fn := range r.stubs {
		prev[k] = fn
	}

	for _, target := range scope.Fixture().Targets() {
		if target.Kind != ir.TargetMethod {
			continue
		}
		key := target.Key()
		r.stubs[key] = func(_ context.Context, args ir.Args) (ir.IRValue, error) {
			action, err := scope.Resolve(key, args)
			if err != nil {
				return nil, err
			}
			return action.Result()
		}
	}

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.stubs = prev
	}
}
