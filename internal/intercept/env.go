package intercept

import (
	"fmt"
	"os"
	"strconv"

	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/ir"
)

// Env reads environment variables through an installed scope.
// Variables the fixture does not declare are read from Base.
type Env struct {
	// Base is the fallback lookup. Default: os.LookupEnv.
	Base func(name string) (string, bool)

	slot
}

// NewEnv creates an Env backed by the process environment.
func NewEnv() *Env {
	return &Env{Base: os.LookupEnv}
}

// Install routes lookups of the fixture's env targets through scope.
func (e *Env) Install(scope *engine.Scope) (restore func()) {
	return e.install(scope)
}

// Lookup returns the value of the named variable.
//
// A stubbed null unsets the variable. Integers and booleans are
// formatted; lists and mappings are an error, as is a raise action.
func (e *Env) Lookup(name string) (string, bool, error) {
	key := ir.Target{Kind: ir.TargetEnv, Name: name}.Key()
	scope := e.current()
	if scope == nil || !scope.Stubs(key) {
		return e.base(name)
	}

	action, err := scope.Resolve(key, ir.NoArgs)
	if err != nil {
		return "", false, err
	}
	v, err := action.Result()
	if err != nil {
		return "", false, err
	}
	return envString(name, v)
}

// Getenv is like os.Getenv: errors read as an empty value.
func (e *Env) Getenv(name string) string {
	v, _, err := e.Lookup(name)
	if err != nil {
		return ""
	}
	return v
}

func (e *Env) base(name string) (string, bool, error) {
	lookup := e.Base
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(name)
	return v, ok, nil
}

func envString(name string, v ir.IRValue) (string, bool, error) {
	switch val := v.(type) {
	case ir.IRNull:
		return "", false, nil
	case ir.IRString:
		return string(val), true, nil
	case ir.IRInt:
		return strconv.FormatInt(int64(val), 10), true, nil
	case ir.IRBool:
		return strconv.FormatBool(bool(val)), true, nil
	default:
		return "", false, fmt.Errorf("env %s: stubbed value must be a scalar, got %T", name, v)
	}
}
