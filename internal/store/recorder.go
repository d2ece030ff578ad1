package store

import (
	"context"

	"github.com/coderberry/fixturama/internal/engine"
)

// Recorder is an engine.Observer that writes every resolution to a store.
//
// Observers cannot fail a resolution, so the first write error is kept and
// later resolutions are dropped; check Err when the scope ends.
type Recorder struct {
	ctx     context.Context
	store   *Store
	fixture string
	label   string

	written map[string]bool // scope IDs already inserted
	count   int
	err     error
}

// NewRecorder creates a recorder labelling its scopes with fixture and
// label.
func (s *Store) NewRecorder(ctx context.Context, fixture, label string) *Recorder {
	return &Recorder{
		ctx:     ctx,
		store:   s,
		fixture: fixture,
		label:   label,
		written: make(map[string]bool),
	}
}

// ObserveResolution implements engine.Observer.
func (r *Recorder) ObserveResolution(res engine.Resolution) {
	if r.err != nil {
		return
	}

	if !r.written[res.ScopeID] {
		if err := r.store.WriteScope(r.ctx, ScopeRecord{
			ID:      res.ScopeID,
			Fixture: r.fixture,
			Label:   r.label,
		}); err != nil {
			r.err = err
			return
		}
		r.written[res.ScopeID] = true
	}

	rec, err := NewResolution(res)
	if err != nil {
		r.err = err
		return
	}
	if err := r.store.WriteResolution(r.ctx, rec); err != nil {
		r.err = err
		return
	}
	r.count++
}

// Count returns the number of resolutions written.
func (r *Recorder) Count() int {
	return r.count
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	return r.err
}
