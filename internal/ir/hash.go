package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainSignature  = "fixturama/signature/v1"
	DomainResolution = "fixturama/resolution/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SignatureHash returns a fixed-width identifier for a canonical signature.
// Signatures can be arbitrarily large; the hash keeps store rows and log
// lines bounded.
func SignatureHash(signature string) string {
	return hashWithDomain(DomainSignature, []byte(signature))
}

// ResolutionID computes the content-addressed ID of one resolution record.
// The same scope, target, signature, and seq always yield the same ID, so
// rewriting a trace is idempotent.
func ResolutionID(scopeID, targetKey, signature string, seq int64) (string, error) {
	obj := IRObject{
		"scope_id":   IRString(scopeID),
		"target_key": IRString(targetKey),
		"signature":  IRString(signature),
		"seq":        IRInt(seq),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ResolutionID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainResolution, canonical), nil
}

// MustResolutionID is like ResolutionID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustResolutionID(scopeID, targetKey, signature string, seq int64) string {
	id, err := ResolutionID(scopeID, targetKey, signature, seq)
	if err != nil {
		panic(err)
	}
	return id
}
