// Package fixture loads fixture documents.
//
// A fixture is a mapping of target descriptor to stub clauses:
//
//	Payment#pay:
//	  - arguments: [1]
//	    return: 8
//	  - arguments: [2]
//	    actions:
//	      - return: 4
//	      - return: 2
//	      - return: 0
//	  - return: -1          # universal clause
//	env:FOO:
//	  return: oof
//	const:TIMEOUT:
//	  return: 10
//	http:GET www.example.com/foo:
//	  return: {status: 200, body: foo}
//
// Descriptors:
//
//   - Type#method or Type.method: a method target
//   - env:NAME or ENV[NAME]: an environment variable
//   - const:NAME: a named constant
//   - http:METHOD url: an outbound HTTP request (scheme ignored)
//
// A clause with arguments, options or body is exact; without, it is the
// target's universal clause. A list whose items are all bare actions is
// shorthand for one universal clause with that action sequence.
//
// YAML and CUE sources are both accepted; see package compiler.
package fixture
