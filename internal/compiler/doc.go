// Package compiler turns fixture sources into an ordered document tree.
//
// Two front-ends produce the same Node tree:
//
//   - YAML via gopkg.in/yaml.v3 node API (key order and lines preserved)
//   - CUE via the cuelang.org/go SDK (evaluated, must be concrete)
//
// The tree is format-neutral. Interpreting it as a fixture document
// (target descriptors, clauses, actions) is the fixture package's job.
//
// Floats are rejected at this layer: fixture values feed canonical
// signatures, which admit integers only.
package compiler
