// Package scope defines the dotted, hierarchical labels attached to spans of
// text by the tokenizer (for example "string.quoted.double").
package scope

import "strings"

// Scope is an immutable dotted identifier.
type Scope struct {
	name string
}

// New wraps name as a Scope. Surrounding whitespace is trimmed.
func New(name string) Scope {
	return Scope{name: strings.TrimSpace(name)}
}

// Ptr returns a pointer to a new Scope, or nil when name is blank.
// Grammar fields that are optional are stored as *Scope.
func Ptr(name string) *Scope {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	s := New(name)
	return &s
}

// String returns the dotted name.
func (s Scope) String() string {
	return s.name
}

// IsZero reports whether the scope is empty.
func (s Scope) IsZero() bool {
	return s.name == ""
}

// Equal reports whether two scopes have the same name.
func (s Scope) Equal(other Scope) bool {
	return s.name == other.name
}

// HasPrefix reports whether prefix is a leading run of whole atoms of s.
// "keyword" matches "keyword.control" but not "keywords.control".
// The empty prefix matches every scope.
func (s Scope) HasPrefix(prefix string) bool {
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(s.name, prefix) {
		return false
	}
	return len(s.name) == len(prefix) || s.name[len(prefix)] == '.'
}

// Atoms splits the scope on dots.
func (s Scope) Atoms() []string {
	if s.name == "" {
		return nil
	}
	return strings.Split(s.name, ".")
}

// String renders an optional scope, using "" for nil.
func String(s *Scope) string {
	if s == nil {
		return ""
	}
	return s.name
}

// Same reports whether two optional scopes are both nil or equal.
func Same(a, b *Scope) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.name == b.name
}
