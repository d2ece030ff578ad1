package compiler

import (
	"fmt"

	"cuelang.org/go/cue/errors"
)

// CompileError is a syntax or type error with source position.
type CompileError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *CompileError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// formatCUEError extracts position info from CUE errors.
// Only the first error is kept; CUE reports every conflicting path.
func formatCUEError(filename string, err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{File: filename, Message: err.Error()}
	}

	first := errs[0]
	ce := &CompileError{File: filename, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Line = positions[0].Line()
		ce.Column = positions[0].Column()
	}
	return ce
}
