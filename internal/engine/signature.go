package engine

import (
	"fmt"

	"github.com/coderberry/fixturama/internal/ir"
)

// Signature is the canonical form of a call's arguments.
//
// Format: RFC 8785 canonical JSON of
//
//	{"options":{...},"positional":[...]}
//
// with "options" omitted when the bag is empty. Two argument lists with the
// same positional values and the same options, in any order, produce
// byte-equal signatures.
type Signature string

// UniversalKey is the counter key shared by every call that falls through
// to a target's universal clause. It is not valid JSON, so no normalized
// signature can collide with it.
const UniversalKey Signature = "*"

// EmptySignature is the signature of a call with no arguments.
var EmptySignature = Normalize(ir.NoArgs)

// Normalize returns the canonical signature of args. Pure and total:
// IR values are sealed, and every variant has a canonical encoding.
func Normalize(args ir.Args) Signature {
	positional := args.Positional
	if positional == nil {
		positional = ir.IRArray{}
	}

	obj := ir.IRObject{"positional": positional}
	if len(args.Options) > 0 {
		obj["options"] = args.Options
	}

	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		// Unreachable for sealed IR values.
		panic(fmt.Sprintf("engine: normalize signature: %v", err))
	}
	return Signature(data)
}

// Hash returns the domain-separated SHA-256 of the signature.
func (s Signature) Hash() string {
	return ir.SignatureHash(string(s))
}

// IsUniversal reports whether s is the universal clause key.
func (s Signature) IsUniversal() bool {
	return s == UniversalKey
}
