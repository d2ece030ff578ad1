package store

import (
	"context"
	"fmt"

	"github.com/coderberry/fixturama/internal/ir"
)

// WriteScope inserts a scope record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteScope(ctx context.Context, rec ScopeRecord) error {
	if rec.EngineVersion == "" {
		rec.EngineVersion = ir.EngineVersion
	}
	if rec.IRVersion == "" {
		rec.IRVersion = ir.IRVersion
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scopes (id, fixture, label, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, rec.ID, rec.Fixture, rec.Label, rec.EngineVersion, rec.IRVersion)
	if err != nil {
		return fmt.Errorf("write scope: %w", err)
	}
	return nil
}

// WriteResolution inserts a resolution record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - the ID is content
// addressed, so rewriting a trace changes nothing.
//
// The payload is stored as RFC 8785 canonical JSON.
// The scope referenced by ScopeID must exist (foreign key constraint).
func (s *Store) WriteResolution(ctx context.Context, rec Resolution) error {
	payload, err := ir.MarshalCanonical(rec.Payload)
	if err != nil {
		return fmt.Errorf("write resolution: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resolutions
		(id, scope_id, seq, target_key, signature_hash, signature, match_key, invocation_index, clause, action_kind, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.ScopeID,
		rec.Seq,
		rec.TargetKey,
		rec.SignatureHash,
		rec.Signature,
		rec.MatchKey,
		rec.Index,
		rec.Clause,
		rec.ActionKind,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("write resolution: %w", err)
	}
	return nil
}
