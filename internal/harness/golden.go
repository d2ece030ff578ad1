package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/coderberry/fixturama/internal/ir"
)

// Snapshot renders a scenario trace as canonical JSON for golden
// comparison. Equal traces always produce equal bytes.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, event := range result.Trace {
		m := map[string]any{
			"seq":       event.Seq,
			"target":    event.Target,
			"signature": event.Signature,
			"index":     event.Index,
			"kind":      event.Kind,
			"payload":   event.Payload,
		}
		if event.Key != "" {
			m["key"] = event.Key
		}
		trace[i] = m
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario_name": scenarioName,
		"scope_id":      result.ScopeID,
		"trace":         trace,
	})
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
