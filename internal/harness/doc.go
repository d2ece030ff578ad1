// Package harness runs fixture scenarios end to end.
//
// A scenario loads one fixture, resolves a list of calls against a fresh
// scope, checks each call's expected outcome, and asserts on the
// resulting resolution trace.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: payment_sequence
//	description: "Repeated payments walk the declared sequence"
//	fixture: stub.yml
//	calls:
//	  - target: Payment#pay
//	    args: [2]
//	    expect:
//	      return: 4
//	  - target: Payment#pay
//	    args: [0]
//	    expect:
//	      raise: {kind: ArgumentError}
//	  - target: Payment#pay
//	    args: [3]
//	    times: 3
//	  - target: Nope#nope
//	    expect:
//	      error: INVALID_TARGET
//	assertions:
//	  - type: resolution_count
//	    target: Payment#pay
//	    args: [3]
//	    count: 3
//	  - type: resolution_order
//	    targets: [Payment#pay, Nope#nope]
//
// The fixture path is relative to the scenario file.
//
// # Assertion Types
//
//   - resolution_contains: the target resolved at least once
//   - resolution_order: targets first resolved in the given order
//   - resolution_count: the target resolved exactly N times
//
// resolution_contains and resolution_count accept args and options to
// narrow the match to one signature.
//
// # Deterministic Testing
//
// Every scenario runs with a fixed scope ID (scope_id, or the scenario
// name) and its own logical clock, so two runs produce byte-identical
// traces for golden file comparison.
package harness
