// Package syntax holds the immutable grammar model built from a
// .sublime-syntax document: named and anonymous contexts, compiled match
// patterns, capture scopes and the push/pop/set actions that drive the
// tokenizer's context stack.
package syntax

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/zjrosen/scopes/internal/scope"
)

// MainContext is the context every stack starts with.
const MainContext = "main"

// PrototypeContext is implicitly included at the top of every context whose
// MetaIncludePrototype is set.
const PrototypeContext = "prototype"

// ClearAll is the ClearScopes value for "clear_scopes: true".
const ClearAll = -1

// StackValue is what a push or set places on the context stack.
// It is one of Name, Inline or List. Stack frames only ever hold Name or
// Inline; a List is expanded into several frames when pushed.
type StackValue interface {
	stackValue()
	String() string
}

// MatchValue is the value carried by a Push or Set action.
type MatchValue = StackValue

// Name refers to a named context.
type Name string

// Inline refers to an anonymous context by its index in Syntax.Anonymous.
type Inline int

// List pushes each value in order, so the last one ends up on top.
type List []StackValue

func (Name) stackValue()   {}
func (Inline) stackValue() {}
func (List) stackValue()   {}

func (n Name) String() string   { return string(n) }
func (i Inline) String() string { return fmt.Sprintf("#anon%d", int(i)) }

func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// MatchAction is one of Push, Pop or Set.
type MatchAction interface {
	action()
}

// Push extends the stack with Value.
type Push struct {
	Value MatchValue
}

// Pop removes Count frames from the top of the stack (at least one).
type Pop struct {
	Count int
}

// Set pops the top frame and pushes Value.
type Set struct {
	Value MatchValue
}

func (Push) action() {}
func (Pop) action()  {}
func (Set) action()  {}

// Match is a compiled match rule.
type Match struct {
	// Pattern is the compiled, variable-interpolated pattern.
	Pattern *regexp2.Regexp
	// Source is the interpolated pattern text Pattern was compiled from.
	Source string
	// Scope is the default scope for the matched text.
	Scope *scope.Scope
	// Captures maps capture group numbers to scopes. Entries for groups
	// without a declared scope are nil.
	Captures []*scope.Scope
	// Action is nil when the match does not touch the stack.
	Action MatchAction
}

// CaptureScope returns the declared scope for group i, or nil.
func (m *Match) CaptureScope(i int) *scope.Scope {
	if i < 0 || i >= len(m.Captures) {
		return nil
	}
	return m.Captures[i]
}

// HasCaptures reports whether any capture group declares a scope.
func (m *Match) HasCaptures() bool {
	for _, c := range m.Captures {
		if c != nil {
			return true
		}
	}
	return false
}

// ContextElement is either an Include or a *Match.
type ContextElement interface {
	element()
}

// Include splices the named context's elements in place.
type Include struct {
	Name string
}

func (Include) element() {}
func (*Match) element()  {}

// Context is one lexical state.
type Context struct {
	// Name is the context's key in Syntax.Contexts, or "#anonN".
	Name     string
	Elements []ContextElement

	MetaScope        *scope.Scope
	MetaContentScope *scope.Scope
	// ClearScopes is the number of enclosing scopes to clear, or ClearAll.
	ClearScopes          int
	MetaIncludePrototype bool
}

// FillScope is the scope for text in this context that no rule claims.
func (c *Context) FillScope() *scope.Scope {
	if c.MetaScope != nil {
		return c.MetaScope
	}
	return c.MetaContentScope
}

// Syntax is a fully built grammar. It is immutable once Build returns and may
// be shared by any number of highlighters.
type Syntax struct {
	Name           string
	Scope          string
	FileExtensions []string
	FirstLineMatch *regexp2.Regexp
	Hidden         bool

	Contexts  map[string]*Context
	Anonymous []*Context
	Variables map[string]string
}

// Resolve returns the context a stack frame refers to.
// A List is never a stack frame and always resolves to false.
func (s *Syntax) Resolve(v StackValue) (*Context, bool) {
	switch v := v.(type) {
	case Name:
		ctx, ok := s.Contexts[string(v)]
		return ctx, ok
	case Inline:
		if int(v) < 0 || int(v) >= len(s.Anonymous) {
			return nil, false
		}
		return s.Anonymous[v], true
	default:
		return nil, false
	}
}

// Prototype returns the prototype context, if the grammar defines one.
func (s *Syntax) Prototype() *Context {
	return s.Contexts[PrototypeContext]
}

// HandlesExtension reports whether ext (with or without a leading dot) is
// one of the grammar's file extensions.
func (s *Syntax) HandlesExtension(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	for _, e := range s.FileExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
