// Package intercept routes call sites through a fixture scope.
//
// Production code depends on a shim instead of calling the real
// implementation directly:
//
//   - Registry: methods, looked up by "Type#method"
//   - Env: environment variables, falling back to os.LookupEnv
//   - Constants: named constants with declared defaults
//   - Transport: an http.RoundTripper, falling back to a base transport
//
// A test installs an engine.Scope on the shims it uses and defers the
// returned restore func. While installed, every call whose target the
// fixture declares is resolved by the scope; other calls reach the real
// implementation untouched.
package intercept
