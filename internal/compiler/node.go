package compiler

import (
	"fmt"

	"github.com/coderberry/fixturama/internal/ir"
)

// Kind is the type of a Node.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindBool
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "mapping"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is one value in a compiled document.
type Node struct {
	Kind Kind

	Str  string
	Int  int64
	Bool bool

	// Items holds list elements.
	Items []*Node

	// Fields holds mapping entries in source order.
	Fields []Field

	// Line is the 1-based source line, or 0 when unknown.
	Line int
}

// Field is one mapping entry.
type Field struct {
	Key   string
	Value *Node
	Line  int
}

// Lookup returns the value for key in a mapping node.
func (n *Node) Lookup(key string) (*Node, bool) {
	if n == nil || n.Kind != KindMap {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// ToIR converts the subtree to an IR value.
func (n *Node) ToIR() ir.IRValue {
	if n == nil {
		return ir.IRNull{}
	}
	switch n.Kind {
	case KindString:
		return ir.IRString(n.Str)
	case KindInt:
		return ir.IRInt(n.Int)
	case KindBool:
		return ir.IRBool(n.Bool)
	case KindList:
		arr := make(ir.IRArray, len(n.Items))
		for i, item := range n.Items {
			arr[i] = item.ToIR()
		}
		return arr
	case KindMap:
		obj := make(ir.IRObject, len(n.Fields))
		for _, f := range n.Fields {
			obj[f.Key] = f.Value.ToIR()
		}
		return obj
	default:
		return ir.IRNull{}
	}
}
