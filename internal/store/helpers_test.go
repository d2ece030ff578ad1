package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/fixture"
)

// createTestStore creates a new on-disk store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

const payYAML = `
Payment#pay:
  - arguments: [0]
    raise: {kind: ArgumentError, message: Something got wrong}
  - arguments: [2]
    actions:
      - return: 4
      - return: 2
  - return: -1
env:FOO:
  return: oof
`

func payFixture(t *testing.T) *engine.Fixture {
	t.Helper()
	f, err := fixture.LoadBytes("pay.yml", []byte(payYAML))
	require.NoError(t, err)
	return f
}
