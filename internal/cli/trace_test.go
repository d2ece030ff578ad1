package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderberry/fixturama/internal/store"
)

// recordScenario runs the recorded scenario with --db and returns the
// database path.
func recordScenario(t *testing.T) string {
	t.Helper()
	dir := scenarioDir(t, map[string]string{"recorded.yml": recordedScenario})
	dbPath := filepath.Join(t.TempDir(), "trace.db")

	_, _, err := runCLI(t, "test", dir, "--db", dbPath)
	require.NoError(t, err)
	return dbPath
}

func TestTrace_MissingDatabaseFlag(t *testing.T) {
	_, _, err := runCLI(t, "trace", "--scope", "recorded")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTrace_NonExistentDatabase(t *testing.T) {
	_, _, err := runCLI(t, "trace", "--db", "/nonexistent/path/test.db")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTrace_ListScopes(t *testing.T) {
	dbPath := recordScenario(t)

	stdout, _, err := runCLI(t, "trace", "--db", dbPath)

	require.NoError(t, err)
	assert.Contains(t, stdout, "recorded  ")
	assert.Contains(t, stdout, "3 resolution(s)  [recorded]")
}

func TestTrace_ListScopesEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	stdout, _, err := runCLI(t, "trace", "--db", dbPath)

	require.NoError(t, err)
	assert.Contains(t, stdout, "No scopes recorded.")
}

func TestTrace_Timeline(t *testing.T) {
	dbPath := recordScenario(t)

	stdout, _, err := runCLI(t, "trace", "--db", dbPath, "--scope", "recorded")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Trace for Scope: recorded")
	assert.Contains(t, stdout, `[1] const:TIMEOUT {"positional":[]} -> return 10`)
	assert.Contains(t, stdout, `[2] method:Payment#pay {"positional":[2]} -> return 4`)
	assert.Contains(t, stdout, `[3] env:FOO {"positional":[]} -> return "oof"`)
	assert.Contains(t, stdout, "Resolutions: 3")
	assert.Contains(t, stdout, "Returns:     3")
	assert.NotContains(t, stdout, "Hash:")
}

func TestTrace_TimelineVerbose(t *testing.T) {
	dbPath := recordScenario(t)

	stdout, _, err := runCLI(t, "--verbose", "trace", "--db", dbPath, "--scope", "recorded")

	require.NoError(t, err)
	assert.Contains(t, stdout, `Clause: 2  Key: {"positional":[2]}  Index: 0`)
	assert.Contains(t, stdout, "Hash: ")
	assert.Contains(t, stdout, "ID: ")
}

func TestTrace_TargetFilterJSON(t *testing.T) {
	dbPath := recordScenario(t)

	stdout, _, err := runCLI(t, "--format", "json", "trace", "--db", dbPath,
		"--scope", "recorded", "--target", "method:Payment#pay")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Scope    store.ScopeRecord `json:"scope"`
			Timeline []struct {
				Seq        int64  `json:"seq"`
				TargetKey  string `json:"target_key"`
				ActionKind string `json:"action_kind"`
			} `json:"timeline"`
			Stats TraceStats `json:"stats"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "recorded", resp.Data.Scope.ID)
	require.Len(t, resp.Data.Timeline, 1)
	assert.Equal(t, int64(2), resp.Data.Timeline[0].Seq)
	assert.Equal(t, store.KindReturn, resp.Data.Timeline[0].ActionKind)
	assert.Equal(t, TraceStats{Resolutions: 1, Returns: 1}, resp.Data.Stats)
}

func TestTrace_UnknownScope(t *testing.T) {
	dbPath := recordScenario(t)

	_, _, err := runCLI(t, "trace", "--db", dbPath, "--scope", "nope")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "0123456789abcdef...", truncateID("0123456789abcdef0123"))
}
