package highlighter

import (
	"fmt"

	"github.com/zjrosen/scopes/internal/scope"
)

// Node is one highlighted span. Nodes are immutable and linked backwards, so
// truncating the history never copies.
type Node struct {
	// stack is the context stack the span was emitted under.
	stack *Stack
	// resume is the stack parsing continues with after this node. It is nil
	// on every span of a match step but the last; Parse never resumes from
	// such a node.
	resume *Stack
	scope  *scope.Scope
	start  int
	end    int
	prev   *Node
}

// Start returns the offset of the first character.
func (n *Node) Start() int { return n.start }

// End returns the offset just past the last character.
func (n *Node) End() int { return n.end }

// Len returns End-Start.
func (n *Node) Len() int { return n.end - n.start }

// Scope returns the span's scope, or nil for unscoped text.
func (n *Node) Scope() *scope.Scope { return n.scope }

// Stack returns the context stack in effect when the span was emitted.
func (n *Node) Stack() *Stack { return n.stack }

// Prev returns the preceding node, or nil for the first one.
func (n *Node) Prev() *Node { return n.prev }

func (n *Node) String() string {
	return fmt.Sprintf("[%d,%d) %q %s", n.start, n.end, scope.String(n.scope), n.stack)
}

// Span is a detached copy of a node's location and scope.
type Span struct {
	Start int
	End   int
	Scope *scope.Scope
}

func (n *Node) span() Span {
	return Span{Start: n.start, End: n.end, Scope: n.scope}
}
