// Package engine implements fixture resolution.
//
// A compiled Fixture holds one RuleTable per stubbed target. A Scope owns
// the mutable per-test state and answers one question per invocation:
// which declared action applies to this call?
//
// RESOLUTION PIPELINE:
//
//  1. Normalize the call's Args into a canonical Signature.
//  2. RuleTable.Match: exact clause for that signature, else the
//     universal clause (keyed by UniversalKey), else NoStubMatched.
//  3. Counter.Next(target, key): 0, 1, 2, ... per (target, key) pair.
//  4. Sequence.Select(index): the entry covering that index, or the
//     last entry once the declared counts are exhausted.
//  5. The selected entry is handed back as an Action.
//
// Compiled fixtures are immutable and may be shared. A Scope is not safe
// for concurrent use; parallel tests each create their own.
//
// The engine does no logging and no I/O. Callers observe resolutions
// through WithObserver and report failures with their own context.
package engine
