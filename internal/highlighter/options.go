package highlighter

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultMaxStackDepth bounds the context stack.
	DefaultMaxStackDepth = 50
	// DefaultMaxIncludeDepth bounds include expansion while resolving the
	// candidate matches of one context.
	DefaultMaxIncludeDepth = 64
)

// TieBreak decides between candidates whose matches start at the same offset.
type TieBreak int

const (
	// TieBreakDeclarationOrder picks the candidate declared first in
	// include-expansion order, regardless of match length.
	TieBreakDeclarationOrder TieBreak = iota
	// TieBreakLongest picks the longest match; declaration order breaks
	// length ties.
	TieBreakLongest
)

func (t TieBreak) String() string {
	switch t {
	case TieBreakDeclarationOrder:
		return "declaration"
	case TieBreakLongest:
		return "longest"
	default:
		return fmt.Sprintf("TieBreak(%d)", int(t))
	}
}

// ParseTieBreak converts a config value to a TieBreak.
// The empty string selects the default.
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "declaration", "declaration_order", "first":
		return TieBreakDeclarationOrder, nil
	case "longest":
		return TieBreakLongest, nil
	default:
		return TieBreakDeclarationOrder, fmt.Errorf("unknown tie-break policy %q (want \"declaration\" or \"longest\")", s)
	}
}

type options struct {
	maxStackDepth   int
	maxIncludeDepth int
	tieBreak        TieBreak
	tracer          trace.Tracer
}

func defaultOptions() options {
	return options{
		maxStackDepth:   DefaultMaxStackDepth,
		maxIncludeDepth: DefaultMaxIncludeDepth,
		tieBreak:        TieBreakDeclarationOrder,
	}
}

// Option configures a Highlighter.
type Option func(*options)

// WithMaxStackDepth sets the context stack bound. Values below 1 are ignored.
func WithMaxStackDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxStackDepth = depth
		}
	}
}

// WithMaxIncludeDepth sets the include expansion bound. Values below 1 are
// ignored.
func WithMaxIncludeDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxIncludeDepth = depth
		}
	}
}

// WithTieBreak sets the policy for equal-start candidates.
func WithTieBreak(t TieBreak) Option {
	return func(o *options) {
		o.tieBreak = t
	}
}

// WithTracer sets the tracer used for parse spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}
