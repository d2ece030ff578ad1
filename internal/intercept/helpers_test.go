package intercept

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/fixture"
)

const stubYAML = `
Payment#pay:
  - arguments: [0]
    raise: {kind: ArgumentError, message: Something got wrong}
  - arguments: [2]
    actions:
      - return: 4
      - return: 2
      - return: 0
  - return: -1
env:FOO:
  return: oof
env:UNSET:
  return: null
env:LIST:
  return: [1]
const:TIMEOUT:
  return: 10
http:GET www.example.com/foo:
  return:
    status: 200
    headers: {Content-Length: 3}
    body: foo
http:DELETE www.example.com/foo:
  - return: {status: 200}
  - return: {status: 404}
http:POST www.example.com/charge:
  - body: '{"amount":2}'
    return: {status: 201, body: {id: 7}}
  - raise: {kind: Timeout, message: gateway timed out}
http:GET www.example.com/me:
  - headers: {Authorization: Bearer good}
    return: {status: 200, body: me}
  - return: {status: 401}
`

func newScope(t *testing.T) *engine.Scope {
	t.Helper()
	f, err := fixture.LoadBytes("stub.yml", []byte(stubYAML))
	require.NoError(t, err)
	return f.NewScope(engine.WithScopeID("test"))
}
