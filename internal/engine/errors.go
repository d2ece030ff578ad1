package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coderberry/fixturama/internal/ir"
)

// ErrorCode categorizes fixture errors.
type ErrorCode string

const (
	// ErrCodeDuplicateStubRule indicates two clauses of one target share a
	// predicate, a target declares more than one universal clause, or a
	// target is declared twice.
	ErrCodeDuplicateStubRule ErrorCode = "DUPLICATE_STUB_RULE"

	// ErrCodeNoStubMatched indicates a call matched neither an exact clause
	// nor a universal clause of a stubbed target.
	ErrCodeNoStubMatched ErrorCode = "NO_STUB_MATCHED"

	// ErrCodeMalformedAction indicates an action entry that is not exactly
	// one of return or raise, a raise without kind or message, a
	// non-positive count, or an empty action list.
	ErrCodeMalformedAction ErrorCode = "MALFORMED_ACTION"

	// ErrCodeInvalidTarget indicates a target that cannot be stubbed as
	// declared: unknown descriptor, unknown target, an argument predicate
	// on an argument-less target, or a malformed HTTP response.
	ErrCodeInvalidTarget ErrorCode = "INVALID_TARGET"
)

// Error is a fixture authoring error detected at compile or match time.
// None of these are transient; callers should never retry.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Target is the affected target, when known.
	Target ir.TargetKey

	// Signature is the call or predicate signature involved, when known.
	Signature Signature

	// Clause is the 1-based clause position within the target, or 0.
	Clause int

	// Line is the 1-based line in the fixture source, or 0 when unknown.
	Line int
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)

	var ctx []string
	if e.Target != "" {
		ctx = append(ctx, "target="+string(e.Target))
	}
	if e.Clause > 0 {
		ctx = append(ctx, fmt.Sprintf("clause=%d", e.Clause))
	}
	if e.Line > 0 {
		ctx = append(ctx, fmt.Sprintf("line=%d", e.Line))
	}
	if e.Signature != "" {
		ctx = append(ctx, "signature="+string(e.Signature))
	}
	if len(ctx) > 0 {
		b.WriteString(" (" + strings.Join(ctx, ", ") + ")")
	}
	return b.String()
}

// CodeOf returns the code of the first *Error in err's tree, or "".
func CodeOf(err error) ErrorCode {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	var fe *Error
	if errors.As(err, &fe) && fe.Code == code {
		return true
	}
	// errors.As stops at the first match; joined errors may hold several.
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if hasCode(e, code) {
				return true
			}
		}
	}
	return false
}

// IsDuplicateStubRule returns true if err contains a duplicate rule error.
func IsDuplicateStubRule(err error) bool {
	return hasCode(err, ErrCodeDuplicateStubRule)
}

// IsNoStubMatched returns true if err contains an unmatched call error.
func IsNoStubMatched(err error) bool {
	return hasCode(err, ErrCodeNoStubMatched)
}

// IsMalformedAction returns true if err contains a malformed action error.
func IsMalformedAction(err error) bool {
	return hasCode(err, ErrCodeMalformedAction)
}

// IsInvalidTarget returns true if err contains an invalid target error.
func IsInvalidTarget(err error) bool {
	return hasCode(err, ErrCodeInvalidTarget)
}

// Errors flattens err into the *Error values it carries, in order.
// Errors that are not *Error are skipped.
func Errors(err error) []*Error {
	switch e := err.(type) {
	case nil:
		return nil
	case *Error:
		return []*Error{e}
	case interface{ Unwrap() []error }:
		var out []*Error
		for _, inner := range e.Unwrap() {
			out = append(out, Errors(inner)...)
		}
		return out
	case interface{ Unwrap() error }:
		return Errors(e.Unwrap())
	}
	return nil
}
