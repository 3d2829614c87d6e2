package highlighter

import "fmt"

// ErrorKind classifies problems hit while parsing. None of them stop the
// highlighter from covering the text.
type ErrorKind int

const (
	// StackUnderflow: a pop would have emptied the stack. The pop is ignored.
	StackUnderflow ErrorKind = iota
	// StackOverflow: the stack grew past the configured depth. The rest of
	// the text is emitted unscoped.
	StackOverflow
	// MissingContext: the top frame names a context the grammar lacks. The
	// rest of the text is emitted unscoped.
	MissingContext
	// ZeroProgress: a rule matched nothing and changed nothing. One
	// character is consumed to move on.
	ZeroProgress
)

func (k ErrorKind) String() string {
	switch k {
	case StackUnderflow:
		return "stack underflow"
	case StackOverflow:
		return "stack overflow"
	case MissingContext:
		return "missing context"
	case ZeroProgress:
		return "zero progress"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// RuntimeError records a recovered parse problem.
type RuntimeError struct {
	Kind    ErrorKind
	Offset  int
	Context string
}

func (e RuntimeError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s at offset %d", e.Kind, e.Offset)
	}
	return fmt.Sprintf("%s at offset %d in context %q", e.Kind, e.Offset, e.Context)
}
