package compiler

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// CompileYAML parses a YAML document into a Node tree.
//
// The yaml.Node API is used instead of decoding into map[string]any so
// mapping order and line numbers survive. An empty document compiles to an
// empty mapping.
func CompileYAML(filename string, data []byte) (*Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &CompileError{File: filename, Message: err.Error()}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return &Node{Kind: KindMap}, nil
	}

	c := yamlCompiler{filename: filename}
	return c.node(root.Content[0])
}

type yamlCompiler struct {
	filename string
}

func (c yamlCompiler) errorf(n *yaml.Node, format string, args ...any) error {
	return &CompileError{
		File:    c.filename,
		Line:    n.Line,
		Column:  n.Column,
		Message: fmt.Sprintf(format, args...),
	}
}

func (c yamlCompiler) node(n *yaml.Node) (*Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &Node{Kind: KindNull, Line: n.Line}, nil
		}
		return c.node(n.Content[0])
	case yaml.AliasNode:
		return c.node(n.Alias)
	case yaml.ScalarNode:
		return c.scalar(n)
	case yaml.SequenceNode:
		out := &Node{Kind: KindList, Line: n.Line, Items: make([]*Node, 0, len(n.Content))}
		for _, item := range n.Content {
			child, err := c.node(item)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, child)
		}
		return out, nil
	case yaml.MappingNode:
		return c.mapping(n)
	default:
		return nil, c.errorf(n, "unsupported YAML node kind %d", n.Kind)
	}
}

func (c yamlCompiler) mapping(n *yaml.Node) (*Node, error) {
	out := &Node{Kind: KindMap, Line: n.Line, Fields: make([]Field, 0, len(n.Content)/2)}
	seen := make(map[string]bool, len(n.Content)/2)

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, c.errorf(keyNode, "mapping keys must be scalars")
		}
		if keyNode.Tag == "!!merge" {
			return nil, c.errorf(keyNode, "merge keys are not supported")
		}
		key := keyNode.Value
		if seen[key] {
			return nil, c.errorf(keyNode, "duplicate key %q", key)
		}
		seen[key] = true

		val, err := c.node(valNode)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, Field{Key: key, Value: val, Line: keyNode.Line})
	}
	return out, nil
}

func (c yamlCompiler) scalar(n *yaml.Node) (*Node, error) {
	out := &Node{Line: n.Line}
	switch n.ShortTag() {
	case "!!null":
		out.Kind = KindNull
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, c.errorf(n, "invalid bool %q", n.Value)
		}
		out.Kind, out.Bool = KindBool, b
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, c.errorf(n, "integer %q out of range", n.Value)
		}
		out.Kind, out.Int = KindInt, i
	case "!!float":
		return nil, c.errorf(n, "floats are not supported in fixtures: %s (quote it or use an integer)", n.Value)
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text.
		out.Kind, out.Str = KindString, n.Value
	}
	return out, nil
}
