// Package ir provides the canonical intermediate representation for
// fixture documents.
//
// This package contains value and type definitions only. All other internal
// packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - Signatures and hashes always go through MarshalCanonical (RFC 8785)
//   - A clause predicate is either Exact or Universal, never an implicit nil
package ir
