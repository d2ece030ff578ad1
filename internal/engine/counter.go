package engine

import "github.com/coderberry/fixturama/internal/ir"

type counterKey struct {
	target ir.TargetKey
	key    Signature
}

// Counter tracks invocation counts per (target, signature key) pair.
//
// Each pair starts at 0 the first time it is observed and advances by one
// per invocation. The counter never resets itself: the owning Scope is
// discarded at the end of a test, and its counter with it.
//
// Thread-safety: Counter is NOT safe for concurrent use.
type Counter struct {
	next map[counterKey]int
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{next: make(map[counterKey]int)}
}

// Next returns the invocation index for this call and advances the pair.
func (c *Counter) Next(target ir.TargetKey, key Signature) int {
	k := counterKey{target: target, key: key}
	idx := c.next[k]
	c.next[k] = idx + 1
	return idx
}

// Peek returns how many invocations the pair has seen, without advancing.
func (c *Counter) Peek(target ir.TargetKey, key Signature) int {
	return c.next[counterKey{target: target, key: key}]
}
