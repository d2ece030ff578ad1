package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/coderberry/fixturama/internal/ir"
)

// Sequence is a run-length encoded action timeline.
//
// Entry i covers count_i consecutive invocation indices. The cumulative end
// offsets are computed once at construction, so Select is a binary search.
// The last entry is sticky: every index at or past the declared total
// selects it, whatever its own count.
type Sequence struct {
	entries []ir.ActionEntry

	// ends[i] is the exclusive end index of entry i.
	ends []int
}

// NewSequence builds the offset table for entries.
// Entries must be non-empty and every count positive. Offsets saturate
// at math.MaxInt; entries starting past it are unreachable.
func NewSequence(entries []ir.ActionEntry) (*Sequence, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("action sequence is empty")
	}

	ends := make([]int, len(entries))
	total := 0
	for i, e := range entries {
		if e.Count < 1 {
			return nil, fmt.Errorf("action %d: count must be positive, got %d", i+1, e.Count)
		}
		if e.Count > math.MaxInt-total {
			total = math.MaxInt
		} else {
			total += e.Count
		}
		ends[i] = total
	}

	cp := make([]ir.ActionEntry, len(entries))
	copy(cp, entries)
	return &Sequence{entries: cp, ends: ends}, nil
}

// Select returns the entry for the given 0-based invocation index.
func (s *Sequence) Select(index int) ir.ActionEntry {
	return s.entries[s.position(index)]
}

// position returns the entry position for index.
func (s *Sequence) position(index int) int {
	if index < 0 {
		index = 0
	}
	if index >= s.Total() {
		return len(s.entries) - 1
	}
	return sort.Search(len(s.ends), func(i int) bool {
		return s.ends[i] > index
	})
}

// Total returns the sum of declared counts.
func (s *Sequence) Total() int {
	return s.ends[len(s.ends)-1]
}

// Entries returns a copy of the declared entries.
func (s *Sequence) Entries() []ir.ActionEntry {
	cp := make([]ir.ActionEntry, len(s.entries))
	copy(cp, s.entries)
	return cp
}
