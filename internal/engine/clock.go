package engine

import "sync/atomic"

// SeqSource stamps resolutions with a logical sequence number.
type SeqSource interface {
	Next() int64
}

// Clock is a monotonic logical clock for ordering resolutions.
//
// Sequence numbers order resolutions within a trace; wall-clock time is
// never used. Several scopes may share one Clock to produce a single
// ordered trace.
//
// Thread-safety: Clock is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
