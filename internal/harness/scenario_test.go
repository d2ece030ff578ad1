package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decodeYAML(src string, out any) error {
	return yaml.Unmarshal([]byte(src), out)
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
fixture: stub.yml
calls:
  - target: Payment#pay
    args: [2]
    options: {overdraft: true}
    times: 2
    expect:
      return: null
assertions:
  - type: resolution_count
    target: Payment#pay
    count: 2
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "stub.yml"), scenario.Fixture)
	require.Len(t, scenario.Calls, 1)
	call := scenario.Calls[0]
	assert.Equal(t, "Payment#pay", call.Target)
	assert.Equal(t, []any{2}, call.Args)
	assert.Equal(t, map[string]any{"overdraft": true}, call.Options)
	assert.Equal(t, 2, call.Times)
	require.NotNil(t, call.Expect)
	assert.True(t, call.Expect.HasReturn(), "return: null is still an expectation")
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: d
fixture: stub.yml
calls: [{target: Payment#pay}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `
name: n
fixture: stub.yml
calls: [{target: Payment#pay}]
`,
			wantErr: "description is required",
		},
		{
			name: "missing fixture",
			content: `
name: n
description: d
calls: [{target: Payment#pay}]
`,
			wantErr: "fixture is required",
		},
		{
			name: "fixture not found",
			content: `
name: n
description: d
fixture: missing.yml
calls: [{target: Payment#pay}]
`,
			wantErr: "fixture file not found",
		},
		{
			name: "no calls",
			content: `
name: n
description: d
fixture: stub.yml
`,
			wantErr: "calls list is required",
		},
		{
			name: "call without target",
			content: `
name: n
description: d
fixture: stub.yml
calls: [{args: [1]}]
`,
			wantErr: "calls[0]: target is required",
		},
		{
			name: "bad descriptor",
			content: `
name: n
description: d
fixture: stub.yml
calls: [{target: "not a target"}]
`,
			wantErr: "calls[0]: unrecognized target descriptor",
		},
		{
			name: "negative times",
			content: `
name: n
description: d
fixture: stub.yml
calls: [{target: Payment#pay, times: -1}]
`,
			wantErr: "times must be non-negative",
		},
		{
			name: "two expectations",
			content: `
name: n
description: d
fixture: stub.yml
calls:
  - target: Payment#pay
    expect: {return: 1, error: NO_STUB_MATCHED}
`,
			wantErr: "exactly one of return, raise, error",
		},
		{
			name: "raise without kind",
			content: `
name: n
description: d
fixture: stub.yml
calls:
  - target: Payment#pay
    expect: {raise: {message: boom}}
`,
			wantErr: "calls[0].expect.raise: kind is required",
		},
		{
			name: "unknown assertion type",
			content: `
name: n
description: d
fixture: stub.yml
calls: [{target: Payment#pay}]
assertions: [{type: final_state}]
`,
			wantErr: `assertions[0]: unknown assertion type "final_state"`,
		},
		{
			name: "order without targets",
			content: `
name: n
description: d
fixture: stub.yml
calls: [{target: Payment#pay}]
assertions: [{type: resolution_order}]
`,
			wantErr: "targets list is required",
		},
		{
			name: "count without target",
			content: `
name: n
description: d
fixture: stub.yml
calls: [{target: Payment#pay}]
assertions: [{type: resolution_count, count: 1}]
`,
			wantErr: "target is required for resolution_count",
		},
		{
			name: "unknown field",
			content: `
name: n
description: d
fixture: stub.yml
calls: [{target: Payment#pay}]
assertion: []
`,
			wantErr: "failed to parse YAML",
		},
		{
			name:    "malformed yaml",
			content: "name: [unclosed",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_Testdata(t *testing.T) {
	for _, path := range []string{
		"testdata/scenarios/payment_sequence.yml",
		"testdata/scenarios/golden_trace.yml",
	} {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)
		assert.Equal(t, "testdata/fixtures/stub.yml", scenario.Fixture)
	}
}
