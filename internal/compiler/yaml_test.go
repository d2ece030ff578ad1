package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderberry/fixturama/internal/ir"
)

func fieldKeys(n *Node) []string {
	keys := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		keys[i] = f.Key
	}
	return keys
}

func TestCompileYAMLPreservesOrderAndLines(t *testing.T) {
	src := []byte(`Payment#pay:
  - arguments: [2]
    actions:
      - return: 4
ENV[FOO]:
  return: bar
Foo#baz:
  return: null
`)

	root, err := CompileYAML("stub.yml", src)
	require.NoError(t, err)
	require.Equal(t, KindMap, root.Kind)

	assert.Equal(t, []string{"Payment#pay", "ENV[FOO]", "Foo#baz"}, fieldKeys(root))
	assert.Equal(t, []int{1, 5, 7}, []int{root.Fields[0].Line, root.Fields[1].Line, root.Fields[2].Line})

	pay, ok := root.Lookup("Payment#pay")
	require.True(t, ok)
	require.Equal(t, KindList, pay.Kind)
	args, ok := pay.Items[0].Lookup("arguments")
	require.True(t, ok)
	assert.Equal(t, ir.IRArray{ir.IRInt(2)}, args.ToIR())

	baz, _ := root.Lookup("Foo#baz")
	ret, ok := baz.Lookup("return")
	require.True(t, ok)
	assert.Equal(t, KindNull, ret.Kind)
}

func TestCompileYAMLScalars(t *testing.T) {
	root, err := CompileYAML("x.yml", []byte(`
s: "42"
i: 42
neg: -7
b: true
n: ~
d: 2024-01-01
list: [1, "a", false]
`))
	require.NoError(t, err)

	assert.Equal(t, ir.IRObject{
		"s":    ir.IRString("42"),
		"i":    ir.IRInt(42),
		"neg":  ir.IRInt(-7),
		"b":    ir.IRBool(true),
		"n":    ir.IRNull{},
		"d":    ir.IRString("2024-01-01"),
		"list": ir.IRArray{ir.IRInt(1), ir.IRString("a"), ir.IRBool(false)},
	}, root.ToIR())
}

func TestCompileYAMLAnchors(t *testing.T) {
	root, err := CompileYAML("x.yml", []byte(`
base: &ok {status: 200}
again: *ok
`))
	require.NoError(t, err)

	again, _ := root.Lookup("again")
	assert.Equal(t, ir.IRObject{"status": ir.IRInt(200)}, again.ToIR())
}

func TestCompileYAMLEmpty(t *testing.T) {
	root, err := CompileYAML("empty.yml", nil)
	require.NoError(t, err)
	assert.Equal(t, KindMap, root.Kind)
	assert.Empty(t, root.Fields)
}

func TestCompileYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"float", "amount: 1.5\n", "floats are not supported"},
		{"syntax", "a: [1, 2\n", "stub.yml"},
		{"duplicate key", "a: 1\na: 2\n", ""},
		{"complex key", "? [1, 2]\n: x\n", "mapping keys must be scalars"},
		{"huge int", "a: 99999999999999999999\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileYAML("stub.yml", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCompileYAMLErrorPosition(t *testing.T) {
	_, err := CompileYAML("stub.yml", []byte("a: 1\nb:\n  c: 2.5\n"))
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "stub.yml", ce.File)
	assert.Equal(t, 3, ce.Line)
	assert.Equal(t, 6, ce.Column)
}
