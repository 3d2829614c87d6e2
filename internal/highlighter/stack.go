package highlighter

import (
	"strings"

	"github.com/zjrosen/scopes/internal/syntax"
)

// Stack is a persistent context stack. Every operation returns a new Stack
// and leaves the receiver untouched, so snapshots are free and nodes can
// share them.
type Stack struct {
	top    syntax.StackValue
	parent *Stack
	depth  int
}

// NewStack returns a stack holding only root.
func NewStack(root syntax.StackValue) *Stack {
	return (*Stack)(nil).Push(root)
}

// Push returns s with v on top. v must be a Name or an Inline.
// Push on a nil stack starts a new one.
func (s *Stack) Push(v syntax.StackValue) *Stack {
	depth := 1
	if s != nil {
		depth = s.depth + 1
	}
	return &Stack{top: v, parent: s, depth: depth}
}

// Pop returns s without its top frame. It reports false, and returns s
// unchanged, when s has a single frame.
func (s *Stack) Pop() (*Stack, bool) {
	if s == nil || s.parent == nil {
		return s, false
	}
	return s.parent, true
}

// Top returns the top frame.
func (s *Stack) Top() syntax.StackValue {
	if s == nil {
		return nil
	}
	return s.top
}

// Depth returns the number of frames.
func (s *Stack) Depth() int {
	if s == nil {
		return 0
	}
	return s.depth
}

// Values returns the frames from bottom to top.
func (s *Stack) Values() []syntax.StackValue {
	out := make([]syntax.StackValue, s.Depth())
	for f, i := s, s.Depth()-1; f != nil; f, i = f.parent, i-1 {
		out[i] = f.top
	}
	return out
}

// Equal reports whether both stacks hold the same frames.
func (s *Stack) Equal(other *Stack) bool {
	for s != nil && other != nil {
		if s == other {
			return true
		}
		if s.depth != other.depth || s.top != other.top {
			return false
		}
		s, other = s.parent, other.parent
	}
	return s == nil && other == nil
}

func (s *Stack) String() string {
	vals := s.Values()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
