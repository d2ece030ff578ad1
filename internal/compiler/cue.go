package compiler

import (
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// CompileCUE evaluates a CUE source and converts the result to a Node tree.
//
// The value must be concrete: unresolved constraints such as `int` or
// `string | *"x"` without a default are reported as errors. Regular fields
// are visited in declaration order; definitions, hidden and optional
// fields are ignored.
func CompileCUE(filename string, data []byte) (*Node, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(filename, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(filename, err)
	}
	return cueNode(filename, v)
}

func cueNode(filename string, v cue.Value) (*Node, error) {
	out := &Node{Line: v.Pos().Line()}

	switch v.Kind() {
	case cue.NullKind:
		out.Kind = KindNull
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(filename, err)
		}
		out.Kind, out.Bool = KindBool, b
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(filename, err)
		}
		out.Kind, out.Int = KindInt, i
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(filename, err)
		}
		out.Kind, out.Str = KindString, s
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(filename, err)
		}
		out.Kind = KindList
		for iter.Next() {
			child, err := cueNode(filename, iter.Value())
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, child)
		}
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(filename, err)
		}
		out.Kind = KindMap
		for iter.Next() {
			child, err := cueNode(filename, iter.Value())
			if err != nil {
				return nil, err
			}
			out.Fields = append(out.Fields, Field{
				Key:   iter.Selector().Unquoted(),
				Value: child,
				Line:  child.Line,
			})
		}
	case cue.FloatKind, cue.NumberKind:
		pos := v.Pos()
		return nil, &CompileError{
			File:    filename,
			Line:    pos.Line(),
			Column:  pos.Column(),
			Message: "floats are not supported in fixtures - use int instead",
		}
	default:
		pos := v.Pos()
		return nil, &CompileError{
			File:    filename,
			Line:    pos.Line(),
			Column:  pos.Column(),
			Message: "unsupported CUE value kind " + v.Kind().String(),
		}
	}
	return out, nil
}

// CompileFile reads path and compiles it with the front-end matching its
// extension: .yml, .yaml or .cue.
func CompileFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return CompileBytes(path, data)
}

// CompileBytes compiles data, choosing the front-end from filename's
// extension.
func CompileBytes(filename string, data []byte) (*Node, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yml", ".yaml":
		return CompileYAML(filename, data)
	case ".cue":
		return CompileCUE(filename, data)
	default:
		return nil, &CompileError{
			File:    filename,
			Message: "unsupported fixture format (want .yml, .yaml or .cue)",
		}
	}
}
