package intercept

import (
	"fmt"
	"sync"

	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/ir"
)

// Constants holds named values that a fixture may override.
type Constants struct {
	defsMu sync.RWMutex
	defs   map[string]ir.IRValue

	slot
}

// NewConstants creates an empty constant table.
func NewConstants() *Constants {
	return &Constants{defs: make(map[string]ir.IRValue)}
}

// Define sets the default value of a constant.
func (c *Constants) Define(name string, v ir.IRValue) {
	c.defsMu.Lock()
	defer c.defsMu.Unlock()
	c.defs[name] = v
}

// Install overrides the fixture's const targets with scope.
func (c *Constants) Install(scope *engine.Scope) (restore func()) {
	return c.install(scope)
}

// Get returns the value of a constant: the stubbed value when the
// installed fixture declares it, otherwise the defined default.
func (c *Constants) Get(name string) (ir.IRValue, error) {
	key := ir.Target{Kind: ir.TargetConst, Name: name}.Key()
	if scope := c.current(); scope != nil && scope.Stubs(key) {
		action, err := scope.Resolve(key, ir.NoArgs)
		if err != nil {
			return nil, err
		}
		return action.Result()
	}

	c.defsMu.RLock()
	defer c.defsMu.RUnlock()
	v, ok := c.defs[name]
	if !ok {
		return nil, fmt.Errorf("constant %s is not defined", name)
	}
	return v, nil
}
