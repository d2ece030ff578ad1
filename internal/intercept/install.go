package intercept

import (
	"sync"

	"github.com/coderberry/fixturama/internal/engine"
)

// Installer is a shim that can route calls through a scope.
type Installer interface {
	Install(scope *engine.Scope) (restore func())
}

// Install installs scope on every shim and returns one func restoring
// them all, in reverse order.
//
// Example:
//
//	scope := fixture.NewScope()
//	defer intercept.Install(scope, registry, env, transport)()
func Install(scope *engine.Scope, shims ...Installer) (restore func()) {
	restores := make([]func(), 0, len(shims))
	for _, s := range shims {
		restores = append(restores, s.Install(scope))
	}
	return func() {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}
}

// slot holds the installed scope of one shim.
type slot struct {
	mu    sync.RWMutex
	scope *engine.Scope
}

func (s *slot) install(scope *engine.Scope) func() {
	s.mu.Lock()
	prev := s.scope
	s.scope = scope
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.scope = prev
		s.mu.Unlock()
	}
}

func (s *slot) current() *engine.Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope
}
