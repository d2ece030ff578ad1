package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderberry/fixturama/internal/ir"
)

const payKey = ir.TargetKey("method:Payment#pay")

func paymentFixture(t *testing.T) *Fixture {
	t.Helper()
	f, err := Compile(doc(method("Payment#pay",
		clause(exact(2), ret(4), ret(2), ret(0)),
		clause(exact(3), ret(6)),
	)))
	require.NoError(t, err)
	return f
}

func TestScopeIndependentCountersPerSignature(t *testing.T) {
	s := paymentFixture(t).NewScope(WithScopeID("scope-1"))

	got := resolveValues(s, payKey, args(2), args(3), args(2), args(3), args(2), args(3))
	assert.Equal(t, []any{int64(4), int64(6), int64(2), int64(6), int64(0), int64(0)}, got)
}

func TestScopeDeterminism(t *testing.T) {
	f := paymentFixture(t)
	calls := []ir.Args{args(3), args(2), args(2), args(3), args(2), args(2), args(2)}

	first := resolveValues(f.NewScope(WithScopeID("a")), payKey, calls...)
	second := resolveValues(f.NewScope(WithScopeID("b")), payKey, calls...)
	assert.Equal(t, first, second)
}

func TestScopeExactOverUniversal(t *testing.T) {
	for _, order := range []string{"universal first", "universal last"} {
		t.Run(order, func(t *testing.T) {
			clauses := []ir.Clause{clause(exact(2), ret("exact")), clause(ir.Universal{}, ret("universal"))}
			if order == "universal first" {
				clauses[0], clauses[1] = clauses[1], clauses[0]
			}
			s := MustCompile(doc(method("Payment#pay", clauses...))).NewScope(WithScopeID("s"))

			got := resolveValues(s, payKey, args(2), args(5), args(2), args("x"))
			assert.Equal(t, []any{"exact", "universal", "exact", "universal"}, got)
		})
	}
}

func TestScopeStickyLastEntry(t *testing.T) {
	f := MustCompile(doc(method("Payment#pay",
		clause(ir.Universal{}, retN(6, 2), ret(0), ret(1)),
	)))
	s := f.NewScope(WithScopeID("s"))

	got := resolveValues(s, payKey, args(), args(), args(), args(), args(), args())
	assert.Equal(t, []any{int64(6), int64(6), int64(0), int64(1), int64(1), int64(1)}, got)
}

func TestScopeUniversalSharesOneCounter(t *testing.T) {
	f := MustCompile(doc(method("Payment#pay",
		clause(ir.Universal{}, ret("first"), ret("rest")),
	)))
	s := f.NewScope(WithScopeID("s"))

	got := resolveValues(s, payKey, args(1), args(2), args(3))
	assert.Equal(t, []any{"first", "rest", "rest"}, got)
	assert.Equal(t, 3, s.Count(payKey, UniversalKey))
}

func TestScopeNoArgumentTargetsConstant(t *testing.T) {
	f := MustCompile(doc(
		env("FOO", clause(ir.Universal{}, ret("bar"))),
		ir.TargetSpec{
			Target:  ir.Target{Kind: ir.TargetConst, Name: "TIMEOUT"},
			Clauses: []ir.Clause{clause(ir.Universal{}, ret(30))},
		},
	))
	s := f.NewScope(WithScopeID("s"))

	for _n := 0; _n < 10; _n++ {
		action, err := s.Resolve("env:FOO", ir.NoArgs)
		require.NoError(t, err)
		assert.Equal(t, ir.IRString("bar"), action.Value)

		action, err = s.Resolve("const:TIMEOUT", ir.NoArgs)
		require.NoError(t, err)
		assert.Equal(t, ir.IRInt(30), action.Value)
	}
}

func TestScopeUnmatchedSignature(t *testing.T) {
	f := MustCompile(doc(method("Payment#pay", clause(exact(2), ret(4)))))
	s := f.NewScope(WithScopeID("s"))

	_, err := s.Resolve(payKey, args(3))
	require.Error(t, err)
	assert.True(t, IsNoStubMatched(err))

	// The failed call leaves counters untouched.
	action, err := s.Resolve(payKey, args(2))
	require.NoError(t, err)
	assert.Equal(t, 0, action.Index)
	assert.Equal(t, 2, s.Calls())
}

func TestScopeUndeclaredTarget(t *testing.T) {
	s := paymentFixture(t).NewScope(WithScopeID("s"))

	_, err := s.Resolve("method:Payment#refund", args(2))
	assert.True(t, IsInvalidTarget(err))
	assert.False(t, s.Stubs("method:Payment#refund"))
	assert.True(t, s.Stubs(payKey))
}

func TestScopeRaise(t *testing.T) {
	f := MustCompile(doc(method("Payment#pay",
		clause(ir.Universal{}, raise("ArgumentError", "declined"), ret("ok")),
	)))
	s := f.NewScope(WithScopeID("s"))

	action, err := s.Resolve(payKey, args(1))
	require.NoError(t, err)
	assert.True(t, action.IsRaise())

	val, err := action.Result()
	assert.Nil(t, val)
	assert.EqualError(t, err, "ArgumentError: declined")
	assert.ErrorIs(t, err, &StubError{Kind: "ArgumentError"})

	action, err = s.Resolve(payKey, args(1))
	require.NoError(t, err)
	assert.False(t, action.IsRaise())
}

func TestScopesDoNotShareCounters(t *testing.T) {
	f := paymentFixture(t)
	a := f.NewScope(WithScopeID("a"))
	b := f.NewScope(WithScopeID("b"))

	assert.Equal(t, []any{int64(4), int64(2)}, resolveValues(a, payKey, args(2), args(2)))
	assert.Equal(t, []any{int64(4)}, resolveValues(b, payKey, args(2)))
	assert.Equal(t, 2, a.Count(payKey, Normalize(args(2))))
	assert.Equal(t, 1, b.Count(payKey, Normalize(args(2))))
}

func TestScopeObserver(t *testing.T) {
	var got []Resolution
	s := paymentFixture(t).NewScope(
		WithScopeID("scope-1"),
		WithObserver(ObserverFunc(func(r Resolution) { got = append(got, r) })),
	)

	_, _ = s.Resolve(payKey, args(2))
	_, _ = s.Resolve(payKey, args(9))
	_, _ = s.Resolve(payKey, args(2))

	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{got[0].Seq, got[1].Seq, got[2].Seq})
	for _, r := range got {
		assert.Equal(t, "scope-1", r.ScopeID)
		assert.Equal(t, payKey, r.Target)
	}

	assert.NoError(t, got[0].Err)
	assert.Equal(t, 1, got[0].Clause)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, ir.IRInt(4), got[0].Action.Value)

	assert.True(t, IsNoStubMatched(got[1].Err))
	assert.Equal(t, Signature(`{"positional":[9]}`), got[1].Signature)

	assert.Equal(t, 1, got[2].Index)
	assert.Equal(t, ir.IRInt(2), got[2].Action.Value)
}

func TestScopeSharedClock(t *testing.T) {
	f := paymentFixture(t)
	clock := NewClock()
	var seqs []int64
	obs := WithObserver(ObserverFunc(func(r Resolution) { seqs = append(seqs, r.Seq) }))

	a := f.NewScope(WithScopeID("a"), WithClock(clock), obs)
	b := f.NewScope(WithScopeID("b"), WithClock(clock), obs)
	_, _ = a.Resolve(payKey, args(2))
	_, _ = b.Resolve(payKey, args(2))
	_, _ = a.Resolve(payKey, args(3))

	assert.Equal(t, []int64{1, 2, 3}, seqs)
}

func TestScopeIDGeneration(t *testing.T) {
	f := paymentFixture(t)

	s := f.NewScope(WithIDGenerator(NewFixedGenerator("fixed-1")))
	assert.Equal(t, "fixed-1", s.ID())

	s = f.NewScope()
	assert.Len(t, s.ID(), 36)
	assert.Same(t, f, s.Fixture())
}
