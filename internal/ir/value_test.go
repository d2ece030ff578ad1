package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestIRObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := IRObject{
		"a":  IRInt(1),
		"A":  IRInt(2),
		"aa": IRInt(3),
		"aA": IRInt(4),
		"Aa": IRInt(5),
		"AA": IRInt(6),
	}

	// 'A' = 65, 'a' = 97
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestFromGo(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected IRValue
	}{
		{"nil", nil, IRNull{}},
		{"string", "oof", IRString("oof")},
		{"bool", true, IRBool(true)},
		{"int", 8, IRInt(8)},
		{"negative int64", int64(-5), IRInt(-5)},
		{"uint8", uint8(3), IRInt(3)},
		{"integral float", float64(10), IRInt(10)},
		{"json number", json.Number("42"), IRInt(42)},
		{"already IR", IRString("x"), IRString("x")},
		{"slice", []any{1, "two", nil}, IRArray{IRInt(1), IRString("two"), IRNull{}}},
		{"map", map[string]any{"overdraft": true}, IRObject{"overdraft": IRBool(true)}},
		{"yaml v2 style map", map[any]any{"notify": false}, IRObject{"notify": IRBool(false)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGo(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFromGoRejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
		msg   string
	}{
		{"fractional float", 3.14, "floats"},
		{"fractional json number", json.Number("1.5"), "floats"},
		{"nested float", map[string]any{"amount": 0.5}, "floats"},
		{"non-string key", map[any]any{1: "x"}, "not a string"},
		{"struct", struct{}{}, "unsupported type"},
		{"huge uint", uint64(1 << 63), "out of int64 range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromGo(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestToGoRoundTrip(t *testing.T) {
	original := map[string]any{
		"amount":  int64(10),
		"options": map[string]any{"overdraft": true},
		"tags":    []any{"a", nil},
	}

	val, err := FromGo(original)
	require.NoError(t, err)
	assert.Equal(t, original, ToGo(val))
}

func TestMarshalIRValue(t *testing.T) {
	val := IRObject{
		"html": IRString("<b>"),
		"list": IRArray{IRInt(1), IRNull{}},
	}

	data, err := MarshalIRValue(val)
	require.NoError(t, err)
	// Non-canonical: HTML is escaped by encoding/json
	assert.Equal(t, `{"html":"\u003cb\u003e","list":[1,null]}`, string(data))
}

func TestUnmarshalIRValue(t *testing.T) {
	val, err := UnmarshalIRValue([]byte(`{"big":9007199254740993,"none":null}`))
	require.NoError(t, err)
	assert.Equal(t, IRObject{"big": IRInt(9007199254740993), "none": IRNull{}}, val)

	_, err = UnmarshalIRValue([]byte(`{"price":1.25}`))
	require.Error(t, err)
}
