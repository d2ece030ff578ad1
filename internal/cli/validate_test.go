package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidFixture(t *testing.T) {
	stdout, _, err := runCLI(t, "validate", "testdata/stub.yml")

	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ testdata/stub.yml: 3 target(s) valid")
}

func TestValidate_ValidFixtureJSON(t *testing.T) {
	stdout, _, err := runCLI(t, "--format", "json", "validate", "testdata/stub.yml")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Targets)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantExit int
		wantCode string
	}{
		{"missing_file", "testdata/nope.yml", ExitCommandError, ErrCodeNotFound},
		{"syntax_error", "testdata/broken.yml", ExitFailure, ErrCodeSyntax},
		{"duplicate_clause", "testdata/duplicate.yml", ExitFailure, "DUPLICATE_STUB_RULE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := runCLI(t, "--format", "json", "validate", tt.path)

			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestValidate_TextErrorReport(t *testing.T) {
	stdout, _, err := runCLI(t, "validate", "testdata/duplicate.yml")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ Validation failed: testdata/duplicate.yml")
	assert.Contains(t, stdout, "DUPLICATE_STUB_RULE")
	assert.Contains(t, stdout, "(method:Payment#pay)")
}

func TestValidate_RequiresOneArg(t *testing.T) {
	_, _, err := runCLI(t, "validate")
	require.Error(t, err)
}
