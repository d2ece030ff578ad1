package fixture

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/coderberry/fixturama/internal/compiler"
	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/ir"
)

// Clause and action keys.
const (
	keyArguments = "arguments"
	keyOptions   = "options"
	keyBody      = "body"
	keyHeaders   = "headers"
	keyActions   = "actions"
	keyReturn    = "return"
	keyRaise     = "raise"
	keyCount     = "count"
	keyKind      = "kind"
	keyMessage   = "message"
)

// Parse interprets a compiled document tree as a fixture document.
//
// Every problem is collected; the error is an errors.Join of *engine.Error
// values carrying source lines. Semantic checks that need the whole
// target (duplicates, action well-formedness) are left to engine.Compile.
func Parse(source string, root *compiler.Node) (ir.Document, error) {
	doc := ir.Document{Source: source}
	if root.Kind != compiler.KindMap {
		return doc, &engine.Error{
			Code:    engine.ErrCodeInvalidTarget,
			Message: fmt.Sprintf("fixture must be a mapping of target descriptors, got %s", root.Kind),
			Line:    root.Line,
		}
	}

	p := &parser{}
	for _, field := range root.Fields {
		if spec, ok := p.target(field); ok {
			doc.Targets = append(doc.Targets, spec)
		}
	}
	if len(p.errs) > 0 {
		return doc, errors.Join(p.errs...)
	}
	return doc, nil
}

type parser struct {
	errs []error
}

func (p *parser) fail(code engine.ErrorCode, target ir.TargetKey, line int, format string, args ...any) {
	p.errs = append(p.errs, &engine.Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Target:  target,
		Line:    line,
	})
}

func (p *parser) target(field compiler.Field) (ir.TargetSpec, bool) {
	target, err := ParseDescriptor(field.Key)
	if err != nil {
		p.fail(engine.ErrCodeInvalidTarget, "", field.Line, "%v", err)
		return ir.TargetSpec{}, false
	}
	spec := ir.TargetSpec{Target: target, Line: field.Line}
	key := target.Key()

	switch node := field.Value; node.Kind {
	case compiler.KindMap:
		if c, ok := p.clause(target, node); ok {
			spec.Clauses = append(spec.Clauses, c)
		}
	case compiler.KindList:
		if len(node.Items) == 0 {
			p.fail(engine.ErrCodeMalformedAction, key, node.Line, "target declares no clauses")
			return spec, false
		}
		if allBareActions(node.Items) {
			c := ir.Clause{Predicate: ir.Universal{}, Line: node.Line}
			for i, item := range node.Items {
				if entry, ok := p.action(key, item, fmt.Sprintf("action %d", i+1)); ok {
					c.Actions = append(c.Actions, entry)
				}
			}
			spec.Clauses = append(spec.Clauses, c)
			break
		}
		for i, item := range node.Items {
			if item.Kind != compiler.KindMap {
				p.fail(engine.ErrCodeMalformedAction, key, item.Line, "clause %d must be a mapping, got %s", i+1, item.Kind)
				continue
			}
			if c, ok := p.clause(target, item); ok {
				spec.Clauses = append(spec.Clauses, c)
			}
		}
	default:
		p.fail(engine.ErrCodeMalformedAction, key, node.Line, "target value must be a clause or a list of clauses, got %s", node.Kind)
		return spec, false
	}
	spec.Headers = headerNames(spec.Clauses)
	return spec, true
}

// headers reads a header predicate. Names are matched case-insensitively,
// so they are lower-cased; values must be scalars.
func (p *parser) headers(key ir.TargetKey, node *compiler.Node) (map[string]string, bool) {
	if node.Kind != compiler.KindMap {
		p.fail(engine.ErrCodeInvalidTarget, key, node.Line, "headers must be a mapping, got %s", node.Kind)
		return nil, false
	}
	out := make(map[string]string, len(node.Fields))
	for _, f := range node.Fields {
		name := strings.ToLower(f.Key)
		if _, dup := out[name]; dup {
			p.fail(engine.ErrCodeInvalidTarget, key, f.Line, "header %q declared twice", f.Key)
			return nil, false
		}
		switch v := f.Value; v.Kind {
		case compiler.KindString:
			out[name] = v.Str
		case compiler.KindInt:
			out[name] = strconv.FormatInt(v.Int, 10)
		case compiler.KindBool:
			out[name] = strconv.FormatBool(v.Bool)
		default:
			p.fail(engine.ErrCodeInvalidTarget, key, f.Line, "header %q must be a scalar, got %s", f.Key, f.Value.Kind)
			return nil, false
		}
	}
	return out, true
}

// headerNames collects the header names any clause matches on.
func headerNames(clauses []ir.Clause) []string {
	seen := make(map[string]bool)
	for _, c := range clauses {
		exact, ok := c.Predicate.(ir.Exact)
		if !ok {
			continue
		}
		if h, ok := exact.Args.Options[keyHeaders].(ir.IRObject); ok {
			for name := range h {
				seen[name] = true
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// allBareActions reports whether every item is a mapping holding only
// action keys.
func allBareActions(items []*compiler.Node) bool {
	for _, item := range items {
		if item.Kind != compiler.KindMap || len(item.Fields) == 0 {
			return false
		}
		for _, f := range item.Fields {
			switch f.Key {
			case keyReturn, keyRaise, keyCount:
			default:
				return false
			}
		}
	}
	return true
}

func (p *parser) clause(target ir.Target, node *compiler.Node) (ir.Clause, bool) {
	key := target.Key()
	c := ir.Clause{Line: node.Line}

	var (
		exact    bool
		args     ir.Args
		body     string
		headers  map[string]string
		actions  *compiler.Node
		inline   []compiler.Field
		ok       = true
		inlineAt = node.Line
	)

	for _, f := range node.Fields {
		switch f.Key {
		case keyArguments:
			if f.Value.Kind != compiler.KindList {
				p.fail(engine.ErrCodeMalformedAction, key, f.Line, "arguments must be a list, got %s", f.Value.Kind)
				ok = false
				continue
			}
			if target.Kind == ir.TargetHTTP {
				p.fail(engine.ErrCodeInvalidTarget, key, f.Line, "http targets match on body and headers, not arguments")
				ok = false
				continue
			}
			exact = true
			args.Positional = f.Value.ToIR().(ir.IRArray)
		case keyOptions:
			if f.Value.Kind != compiler.KindMap {
				p.fail(engine.ErrCodeMalformedAction, key, f.Line, "options must be a mapping, got %s", f.Value.Kind)
				ok = false
				continue
			}
			if target.Kind == ir.TargetHTTP {
				p.fail(engine.ErrCodeInvalidTarget, key, f.Line, "http targets match on body and headers, not options")
				ok = false
				continue
			}
			exact = true
			args.Options = f.Value.ToIR().(ir.IRObject)
		case keyBody:
			if target.Kind != ir.TargetHTTP {
				p.fail(engine.ErrCodeInvalidTarget, key, f.Line, "body predicates apply to http targets only")
				ok = false
				continue
			}
			if f.Value.Kind != compiler.KindString {
				p.fail(engine.ErrCodeInvalidTarget, key, f.Line, "body must be a string, got %s", f.Value.Kind)
				ok = false
				continue
			}
			exact = true
			body = f.Value.Str
		case keyHeaders:
			if target.Kind != ir.TargetHTTP {
				p.fail(engine.ErrCodeInvalidTarget, key, f.Line, "header predicates apply to http targets only")
				ok = false
				continue
			}
			h, hok := p.headers(key, f.Value)
			if !hok {
				ok = false
				continue
			}
			exact = true
			headers = h
		case keyActions:
			actions = f.Value
		case keyReturn, keyRaise, keyCount:
			if len(inline) == 0 {
				inlineAt = f.Line
			}
			inline = append(inline, f)
		default:
			p.fail(engine.ErrCodeMalformedAction, key, f.Line, "unknown clause key %q (want %s)", f.Key,
				strings.Join([]string{keyArguments, keyOptions, keyBody, keyHeaders, keyActions, keyReturn, keyRaise, keyCount}, ", "))
			ok = false
		}
	}

	if target.Kind == ir.TargetHTTP {
		args = RequestArgs(body, headers)
	}
	if exact {
		c.Predicate = ir.Exact{Args: args}
	} else {
		c.Predicate = ir.Universal{}
	}

	switch {
	case actions != nil && len(inline) > 0:
		p.fail(engine.ErrCodeMalformedAction, key, inlineAt, "clause declares both actions and inline %s", inline[0].Key)
		return c, false
	case actions != nil:
		if actions.Kind != compiler.KindList {
			p.fail(engine.ErrCodeMalformedAction, key, actions.Line, "actions must be a list, got %s", actions.Kind)
			return c, false
		}
		for i, item := range actions.Items {
			entry, entryOK := p.action(key, item, fmt.Sprintf("action %d", i+1))
			if !entryOK {
				ok = false
				continue
			}
			c.Actions = append(c.Actions, entry)
		}
	case len(inline) > 0:
		entry, entryOK := p.actionFields(key, inline, inlineAt, "action")
		if !entryOK {
			return c, false
		}
		c.Actions = []ir.ActionEntry{entry}
	}
	// An empty action list is reported by engine.Compile with clause context.
	return c, ok
}

func (p *parser) action(key ir.TargetKey, node *compiler.Node, label string) (ir.ActionEntry, bool) {
	if node.Kind != compiler.KindMap {
		p.fail(engine.ErrCodeMalformedAction, key, node.Line, "%s must be a mapping, got %s", label, node.Kind)
		return ir.ActionEntry{}, false
	}
	return p.actionFields(key, node.Fields, node.Line, label)
}

func (p *parser) actionFields(key ir.TargetKey, fields []compiler.Field, line int, label string) (ir.ActionEntry, bool) {
	entry := ir.ActionEntry{Count: 1}
	ok := true
	countSeen := false

	for _, f := range fields {
		switch f.Key {
		case keyReturn:
			entry.Return = f.Value.ToIR()
		case keyRaise:
			spec, specOK := p.raise(key, f, label)
			if !specOK {
				ok = false
				continue
			}
			entry.Raise = spec
		case keyCount:
			if countSeen {
				p.fail(engine.ErrCodeMalformedAction, key, f.Line, "%s: conflicting count", label)
				ok = false
				continue
			}
			countSeen = true
			if f.Value.Kind != compiler.KindInt || f.Value.Int < 1 {
				p.fail(engine.ErrCodeMalformedAction, key, f.Line, "%s: count must be a positive integer", label)
				ok = false
				continue
			}
			entry.Count = int(f.Value.Int)
		default:
			p.fail(engine.ErrCodeMalformedAction, key, f.Line, "%s: unknown action key %q (want return, raise or count)", label, f.Key)
			ok = false
		}
	}

	switch {
	case !ok:
	case entry.Return == nil && entry.Raise == nil:
		p.fail(engine.ErrCodeMalformedAction, key, line, "%s declares neither return nor raise", label)
		ok = false
	case entry.Return != nil && entry.Raise != nil:
		p.fail(engine.ErrCodeMalformedAction, key, line, "%s declares both return and raise", label)
		ok = false
	}
	return entry, ok
}

func (p *parser) raise(key ir.TargetKey, f compiler.Field, label string) (*ir.ErrorSpec, bool) {
	if f.Value.Kind != compiler.KindMap {
		p.fail(engine.ErrCodeMalformedAction, key, f.Line, "%s: raise must be a mapping with kind and message", label)
		return nil, false
	}

	spec := &ir.ErrorSpec{}
	for _, rf := range f.Value.Fields {
		if rf.Value.Kind != compiler.KindString {
			p.fail(engine.ErrCodeMalformedAction, key, rf.Line, "%s: raise %s must be a string", label, rf.Key)
			return nil, false
		}
		switch rf.Key {
		case keyKind:
			spec.Kind = rf.Value.Str
		case keyMessage:
			spec.Message = rf.Value.Str
		default:
			p.fail(engine.ErrCodeMalformedAction, key, rf.Line, "%s: unknown raise key %q (want kind and message)", label, rf.Key)
			return nil, false
		}
	}
	if spec.Kind == "" || spec.Message == "" {
		p.fail(engine.ErrCodeMalformedAction, key, f.Line, "%s: raise requires both kind and message", label)
		return nil, false
	}
	return spec, true
}

// RequestArgs returns the argument signature of an HTTP request: the body
// and the matched headers go into the options bag. A request with neither
// has no arguments.
func RequestArgs(body string, headers map[string]string) ir.Args {
	if body == "" && len(headers) == 0 {
		return ir.NoArgs
	}
	opts := make(ir.IRObject, 2)
	if body != "" {
		opts[keyBody] = ir.IRString(body)
	}
	if len(headers) > 0 {
		h := make(ir.IRObject, len(headers))
		for name, value := range headers {
			h[strings.ToLower(name)] = ir.IRString(value)
		}
		opts[keyHeaders] = h
	}
	return ir.Args{Options: opts}
}
