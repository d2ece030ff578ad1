package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const stubFixture = "testdata/fixtures/stub.yml"

// writeScenario writes content as test.yaml next to a copy of the stub
// fixture and returns its path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()

	data, err := os.ReadFile(stubFixture)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stub.yml"), data, 0644))

	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// newScenario builds an in-memory scenario over the stub fixture.
func newScenario(name string, calls ...Call) *Scenario {
	return &Scenario{
		Name:        name,
		Description: name,
		Fixture:     stubFixture,
		Calls:       calls,
	}
}

// expectReturn builds an Expect for a YAML-encoded return value.
func expectReturn(t *testing.T, yamlValue string) *Expect {
	t.Helper()
	var e Expect
	require.NoError(t, decodeYAML("return: "+yamlValue, &e))
	return &e
}
