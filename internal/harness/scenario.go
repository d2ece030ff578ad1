package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/coderberry/fixturama/internal/fixture"
	"github.com/coderberry/fixturama/internal/ir"
)

// Scenario drives one fixture through a list of calls and checks the
// resulting resolution trace.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture is the path to the fixture document.
	// Relative paths are resolved against the scenario file's directory.
	Fixture string `yaml:"fixture"`

	// ScopeID is an optional fixed scope ID for deterministic traces.
	// If empty, the scenario name is used.
	ScopeID string `yaml:"scope_id,omitempty"`

	// Calls are resolved in order against one fresh scope.
	Calls []Call `yaml:"calls"`

	// Assertions validate the final trace.
	// Supported types: resolution_contains, resolution_order, resolution_count
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Call is one invocation of a stubbed target.
type Call struct {
	// Target is a fixture target descriptor (e.g., "Payment#pay", "env:FOO").
	Target string `yaml:"target"`

	// Args are the positional arguments.
	Args []any `yaml:"args,omitempty"`

	// Options is the trailing options bag.
	Options map[string]any `yaml:"options,omitempty"`

	// Times repeats the call. Default: 1.
	Times int `yaml:"times,omitempty"`

	// Expect is checked against every repetition.
	// If nil, the call must resolve without error.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a call.
// Exactly one of Return, Raise and Error is set.
type Expect struct {
	// Return is the expected value. A yaml.Node keeps "return: null"
	// distinct from an absent key.
	Return yaml.Node `yaml:"return"`

	// Raise is the expected raised error. An empty message matches any.
	Raise *ir.ErrorSpec `yaml:"raise,omitempty"`

	// Error is the expected engine error code (e.g., "NO_STUB_MATCHED").
	Error string `yaml:"error,omitempty"`
}

// HasReturn reports whether a return value is expected.
func (e *Expect) HasReturn() bool {
	return e.Return.Kind != 0
}

// Assertion validates the resolution trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "resolution_contains": target resolved at least once (with args, if given)
	// - "resolution_order": targets first resolve in the given order
	// - "resolution_count": target resolved exactly Count times (with args, if given)
	Type string `yaml:"type"`

	// Target is the target descriptor (resolution_contains, resolution_count).
	Target string `yaml:"target,omitempty"`

	// Args and Options narrow the match to one signature.
	Args    []any          `yaml:"args,omitempty"`
	Options map[string]any `yaml:"options,omitempty"`

	// Count is the expected number of resolutions (resolution_count).
	Count int `yaml:"count,omitempty"`

	// Targets is the expected order (resolution_order).
	Targets []string `yaml:"targets,omitempty"`
}

// narrowed reports whether the assertion names a signature.
func (a Assertion) narrowed() bool {
	return a.Args != nil || a.Options != nil
}

// Assertion type constants.
const (
	AssertResolutionContains = "resolution_contains"
	AssertResolutionOrder    = "resolution_order"
	AssertResolutionCount    = "resolution_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// A relative fixture path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Fixture != "" && !filepath.IsAbs(scenario.Fixture) {
		scenario.Fixture = filepath.Join(filepath.Dir(path), scenario.Fixture)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Fixture == "" {
		return fmt.Errorf("fixture is required")
	}
	if _, err := os.Stat(s.Fixture); os.IsNotExist(err) {
		return fmt.Errorf("fixture file not found: %s", s.Fixture)
	}

	if len(s.Calls) == 0 {
		return fmt.Errorf("calls list is required and must be non-empty")
	}

	for i, call := range s.Calls {
		if err := validateCall(i, &call); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateCall(index int, c *Call) error {
	if c.Target == "" {
		return fmt.Errorf("calls[%d]: target is required", index)
	}
	if _, err := fixture.ParseDescriptor(c.Target); err != nil {
		return fmt.Errorf("calls[%d]: %w", index, err)
	}
	if c.Times < 0 {
		return fmt.Errorf("calls[%d]: times must be non-negative", index)
	}
	if c.Expect == nil {
		return nil
	}

	set := 0
	if c.Expect.HasReturn() {
		set++
	}
	if c.Expect.Raise != nil {
		set++
		if c.Expect.Raise.Kind == "" {
			return fmt.Errorf("calls[%d].expect.raise: kind is required", index)
		}
	}
	if c.Expect.Error != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("calls[%d].expect: exactly one of return, raise, error is required", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertResolutionContains, AssertResolutionCount:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for %s", index, a.Type)
		}
		if _, err := fixture.ParseDescriptor(a.Target); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Type == AssertResolutionCount && a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for resolution_count", index)
		}
	case AssertResolutionOrder:
		if len(a.Targets) == 0 {
			return fmt.Errorf("assertions[%d]: targets list is required for resolution_order", index)
		}
		for _, t := range a.Targets {
			if _, err := fixture.ParseDescriptor(t); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
