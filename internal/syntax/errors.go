package syntax

import (
	"errors"
	"fmt"
)

// Grammar-build errors. Any of them fails the whole load.
var (
	ErrMissingField    = errors.New("missing required field")
	ErrMissingMain     = errors.New(`grammar has no "main" context`)
	ErrBadPattern      = errors.New("pattern does not compile")
	ErrAmbiguousAction = errors.New("rule declares more than one of push, pop, set")
	ErrUnknownVariable = errors.New("undefined variable")
	ErrCyclicVariable  = errors.New("cyclic variable definition")
	ErrMalformed       = errors.New("malformed grammar")
)

// BuildError locates a grammar-build error within the document.
type BuildError struct {
	// Context is the context being built, empty for top-level fields.
	Context string
	// Rule is the index of the rule within Context, or -1.
	Rule int
	Err  error
}

func (e *BuildError) Error() string {
	switch {
	case e.Context == "":
		return fmt.Sprintf("build syntax: %v", e.Err)
	case e.Rule < 0:
		return fmt.Sprintf("build syntax: context %q: %v", e.Context, e.Err)
	default:
		return fmt.Sprintf("build syntax: context %q rule %d: %v", e.Context, e.Rule, e.Err)
	}
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
