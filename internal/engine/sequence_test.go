package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderberry/fixturama/internal/ir"
)

func selectValues(t *testing.T, seq *Sequence, n int) []any {
	t.Helper()
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = ir.ToGo(seq.Select(i).Return)
	}
	return out
}

func TestSequenceStickyLastEntry(t *testing.T) {
	seq, err := NewSequence([]ir.ActionEntry{retN("A", 2), ret("B"), ret("C")})
	require.NoError(t, err)

	assert.Equal(t, 4, seq.Total())
	assert.Equal(t, []any{"A", "A", "B", "C", "C", "C", "C"}, selectValues(t, seq, 7))
	assert.Equal(t, "C", ir.ToGo(seq.Select(1_000_000).Return))
}

func TestSequenceStickyIgnoresLastCount(t *testing.T) {
	seq, err := NewSequence([]ir.ActionEntry{retN(6, 2), retN(0, 3)})
	require.NoError(t, err)

	assert.Equal(t, []any{int64(6), int64(6), int64(0), int64(0), int64(0), int64(0), int64(0)}, selectValues(t, seq, 7))
}

func TestSequenceSingleEntry(t *testing.T) {
	seq, err := NewSequence([]ir.ActionEntry{ret("only")})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.Equal(t, ir.IRString("only"), seq.Select(i).Return)
	}
}

func TestSequenceBoundaries(t *testing.T) {
	seq, err := NewSequence([]ir.ActionEntry{retN(1, 3), retN(2, 1), retN(3, 2), ret(4)})
	require.NoError(t, err)

	expected := []int{0, 0, 0, 1, 2, 2, 3, 3}
	for idx, pos := range expected {
		assert.Equal(t, pos, seq.position(idx), "index %d", idx)
	}
}

func TestSequenceNegativeIndex(t *testing.T) {
	seq, err := NewSequence([]ir.ActionEntry{ret(1), ret(2)})
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(1), seq.Select(-1).Return)
}

func TestSequenceHugeCountsSaturate(t *testing.T) {
	seq, err := NewSequence([]ir.ActionEntry{retN("A", math.MaxInt), retN("B", math.MaxInt), ret("C")})
	require.NoError(t, err)

	assert.Equal(t, math.MaxInt, seq.Total())
	assert.Equal(t, "A", ir.ToGo(seq.Select(0).Return))
	assert.Equal(t, "A", ir.ToGo(seq.Select(math.MaxInt-1).Return))
	assert.Equal(t, "C", ir.ToGo(seq.Select(math.MaxInt).Return))
}

func TestSequenceRejects(t *testing.T) {
	_, err := NewSequence(nil)
	assert.ErrorContains(t, err, "empty")

	_, err = NewSequence([]ir.ActionEntry{ret(1), retN(2, 0)})
	assert.ErrorContains(t, err, "action 2: count must be positive")
}

func TestSequenceEntriesCopied(t *testing.T) {
	entries := []ir.ActionEntry{ret(1)}
	seq, err := NewSequence(entries)
	require.NoError(t, err)

	entries[0] = ret(99)
	assert.Equal(t, ir.IRInt(1), seq.Select(0).Return)

	out := seq.Entries()
	out[0] = ret(42)
	assert.Equal(t, ir.IRInt(1), seq.Select(0).Return)
	assert.Len(t, seq.Entries(), 1)
}
