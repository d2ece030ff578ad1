package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Text(t *testing.T) {
	stdout, _, err := runCLI(t, "compile", "testdata/stub.yml")

	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ testdata/stub.yml: 3 target(s)")
	assert.Contains(t, stdout, "method:Payment#pay")
	assert.Contains(t, stdout, `[2] {"positional":[2]}`)
	assert.Contains(t, stdout, "raise ArgumentError: Something got wrong x1")
	assert.Contains(t, stdout, "return 6 x2")
	assert.Contains(t, stdout, "[5] *")
	assert.Contains(t, stdout, `return "oof" x1`)
}

func TestCompile_OutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "compiled.json")

	stdout, _, err := runCLI(t, "compile", "testdata/stub.yml", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Written to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	// Return values are IR interfaces; decode only the table shape.
	var result struct {
		Fixture string `json:"fixture"`
		Targets []struct {
			Target string `json:"target"`
			Rules  []struct {
				Key   string `json:"key"`
				Total int    `json:"total"`
			} `json:"rules"`
		} `json:"targets"`
	}
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "testdata/stub.yml", result.Fixture)
	require.Len(t, result.Targets, 3)

	pay := result.Targets[0]
	assert.Equal(t, "method:Payment#pay", pay.Target)
	require.Len(t, pay.Rules, 5)
	assert.Equal(t, `{"positional":[0]}`, pay.Rules[0].Key)
	assert.Equal(t, "*", pay.Rules[4].Key)
	assert.Equal(t, 3, pay.Rules[2].Total)
}

func TestCompile_BadFixtureIsCommandError(t *testing.T) {
	_, _, err := runCLI(t, "compile", "testdata/duplicate.yml")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
