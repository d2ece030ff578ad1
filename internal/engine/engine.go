package engine

import (
	"errors"
	"fmt"

	"github.com/coderberry/fixturama/internal/ir"
)

// Fixture is a compiled fixture document: one RuleTable per target.
//
// A Fixture is immutable after Compile and safe to share between
// goroutines. Mutable per-test state lives in the Scopes created from it.
type Fixture struct {
	source string
	tables map[ir.TargetKey]*RuleTable
	order  []ir.TargetKey // declaration order
}

// Compile builds rule tables for every target in doc.
//
// All authoring errors are collected and returned together as an
// errors.Join of *Error values, so one pass reports every problem in the
// document. No Fixture is returned if any target fails.
func Compile(doc ir.Document) (*Fixture, error) {
	f := &Fixture{
		source: doc.Source,
		tables: make(map[ir.TargetKey]*RuleTable, len(doc.Targets)),
	}
	firstLine := make(map[ir.TargetKey]int, len(doc.Targets))

	var errs []error
	for _, spec := range doc.Targets {
		key := spec.Target.Key()
		if _, seen := firstLine[key]; seen {
			errs = append(errs, &Error{
				Code:    ErrCodeDuplicateStubRule,
				Message: fmt.Sprintf("target %q declared more than once", spec.Target.Descriptor),
				Target:  key,
				Line:    spec.Line,
			})
			continue
		}
		firstLine[key] = spec.Line

		table, err := NewRuleTable(spec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		f.tables[key] = table
		f.order = append(f.order, key)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return f, nil
}

// MustCompile is like Compile but panics on error.
// Use only in tests.
func MustCompile(doc ir.Document) *Fixture {
	f, err := Compile(doc)
	if err != nil {
		panic(err)
	}
	return f
}

// Source returns the path or name the document was loaded from.
func (f *Fixture) Source() string {
	return f.source
}

// Targets returns the stubbed targets in declaration order.
func (f *Fixture) Targets() []ir.Target {
	out := make([]ir.Target, len(f.order))
	for i, key := range f.order {
		out[i] = f.tables[key].Target()
	}
	return out
}

// Table returns the rule table for key.
func (f *Fixture) Table(key ir.TargetKey) (*RuleTable, bool) {
	t, ok := f.tables[key]
	return t, ok
}

// Stubs reports whether the fixture declares key.
func (f *Fixture) Stubs(key ir.TargetKey) bool {
	_, ok := f.tables[key]
	return ok
}
