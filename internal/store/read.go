package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coderberry/fixturama/internal/ir"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ReadScope returns every resolution of a scope.
// Results are ordered deterministically: ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if the scope has no resolutions.
func (s *Store) ReadScope(ctx context.Context, scopeID string) ([]Resolution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scope_id, seq, target_key, signature_hash, signature, match_key, invocation_index, clause, action_kind, payload
		FROM resolutions
		WHERE scope_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, scopeID)
	if err != nil {
		return nil, fmt.Errorf("query resolutions: %w", err)
	}
	defer rows.Close()

	out := []Resolution{}
	for rows.Next() {
		var (
			rec     Resolution
			payload string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.ScopeID,
			&rec.Seq,
			&rec.TargetKey,
			&rec.SignatureHash,
			&rec.Signature,
			&rec.MatchKey,
			&rec.Index,
			&rec.Clause,
			&rec.ActionKind,
			&payload,
		); err != nil {
			return nil, fmt.Errorf("scan resolution: %w", err)
		}
		rec.Payload, err = ir.UnmarshalIRValue([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("decode payload of %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolutions: %w", err)
	}
	return out, nil
}

// GetScope returns one scope record, or ErrNotFound.
func (s *Store) GetScope(ctx context.Context, id string) (ScopeRecord, error) {
	var rec ScopeRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, fixture, label, engine_version, ir_version
		FROM scopes
		WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Fixture, &rec.Label, &rec.EngineVersion, &rec.IRVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return ScopeRecord{}, fmt.Errorf("scope %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ScopeRecord{}, fmt.Errorf("query scope: %w", err)
	}
	return rec, nil
}

// ListScopes returns every stored scope with its resolution count.
// UUIDv7 scope IDs sort in creation order.
func (s *Store) ListScopes(ctx context.Context) ([]ScopeSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.fixture, s.label, s.engine_version, s.ir_version, COUNT(r.id)
		FROM scopes s
		LEFT JOIN resolutions r ON r.scope_id = s.id
		GROUP BY s.id
		ORDER BY s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query scopes: %w", err)
	}
	defer rows.Close()

	out := []ScopeSummary{}
	for rows.Next() {
		var sum ScopeSummary
		if err := rows.Scan(
			&sum.ID,
			&sum.Fixture,
			&sum.Label,
			&sum.EngineVersion,
			&sum.IRVersion,
			&sum.Resolutions,
		); err != nil {
			return nil, fmt.Errorf("scan scope: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scopes: %w", err)
	}
	return out, nil
}
