package fixture

import (
	"fmt"

	"github.com/coderberry/fixturama/internal/compiler"
	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/ir"
)

// LoadError reports a fixture that could not be loaded.
// Err is a *compiler.CompileError for syntax problems, or a join of
// *engine.Error values for authoring problems.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load fixture %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads, parses and compiles the fixture at path.
func Load(path string) (*engine.Fixture, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return compile(path, doc)
}

// LoadBytes parses and compiles data; name selects the format by
// extension and labels errors.
func LoadBytes(name string, data []byte) (*engine.Fixture, error) {
	root, err := compiler.CompileBytes(name, data)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	doc, err := Parse(name, root)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	return compile(name, doc)
}

// LoadDocument reads and parses the fixture at path without compiling it.
func LoadDocument(path string) (ir.Document, error) {
	root, err := compiler.CompileFile(path)
	if err != nil {
		return ir.Document{}, &LoadError{Path: path, Err: err}
	}
	doc, err := Parse(path, root)
	if err != nil {
		return ir.Document{}, &LoadError{Path: path, Err: err}
	}
	return doc, nil
}

func compile(path string, doc ir.Document) (*engine.Fixture, error) {
	f, err := engine.Compile(doc)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return f, nil
}
