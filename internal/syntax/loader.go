package syntax

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"time"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/scopes/internal/log"
	"github.com/zjrosen/scopes/internal/scope"
)

// DefaultMatchTimeout bounds a single regex evaluation. A timed-out
// evaluation is treated as no match.
const DefaultMatchTimeout = 100 * time.Millisecond

// Option configures how a grammar is built.
type Option func(*builder)

// WithMatchTimeout overrides DefaultMatchTimeout for every compiled pattern.
func WithMatchTimeout(d time.Duration) Option {
	return func(b *builder) {
		b.timeout = d
	}
}

// Load reads and builds the grammar at path within fsys.
func Load(fsys fs.FS, path string, opts ...Option) (*Syntax, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	syn, err := Parse(content, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return syn, nil
}

// Parse decodes a .sublime-syntax document and builds it.
func Parse(src []byte, opts ...Option) (*Syntax, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(StripDirective(src), &doc); err != nil {
		return nil, &BuildError{Rule: -1, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return Build(&doc, opts...)
}

// StripDirective drops a leading "%YAML 1.2" line, which sublime-syntax
// files carry but the decoder does not need.
func StripDirective(src []byte) []byte {
	trimmed := bytes.TrimLeft(src, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("%YAML")) {
		return src
	}
	if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
		return trimmed[i+1:]
	}
	return nil
}

type builder struct {
	vars    map[string]string
	anon    []*Context
	timeout time.Duration
}

// Build turns a decoded YAML document into a Syntax.
func Build(doc *yaml.Node, opts ...Option) (*Syntax, error) {
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, &BuildError{Rule: -1, Err: fmt.Errorf("%w: empty document", ErrMalformed)}
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, &BuildError{Rule: -1, Err: fmt.Errorf("%w: document is not a mapping", ErrMalformed)}
	}

	name, err := requiredScalar(root, "name")
	if err != nil {
		return nil, err
	}
	scopeName, err := requiredScalar(root, "scope")
	if err != nil {
		return nil, err
	}

	extNode := field(root, "file_extensions")
	if extNode == nil {
		return nil, &BuildError{Rule: -1, Err: fmt.Errorf("%w: file_extensions", ErrMissingField)}
	}
	var exts []string
	if err := extNode.Decode(&exts); err != nil {
		return nil, &BuildError{Rule: -1, Err: fmt.Errorf("%w: file_extensions: %v", ErrMalformed, err)}
	}

	vars := map[string]string{}
	if varNode := field(root, "variables"); varNode != nil {
		if err := varNode.Decode(&vars); err != nil {
			return nil, &BuildError{Rule: -1, Err: fmt.Errorf("%w: variables: %v", ErrMalformed, err)}
		}
	}
	resolved, err := ResolveVariables(vars)
	if err != nil {
		return nil, &BuildError{Rule: -1, Err: err}
	}

	b := &builder{vars: resolved, timeout: DefaultMatchTimeout}
	for _, opt := range opts {
		opt(b)
	}

	ctxNode := field(root, "contexts")
	if ctxNode == nil {
		return nil, &BuildError{Rule: -1, Err: fmt.Errorf("%w: contexts", ErrMissingField)}
	}
	if ctxNode.Kind != yaml.MappingNode {
		return nil, &BuildError{Rule: -1, Err: fmt.Errorf("%w: contexts is not a mapping", ErrMalformed)}
	}

	contexts := make(map[string]*Context, len(ctxNode.Content)/2)
	for i := 0; i+1 < len(ctxNode.Content); i += 2 {
		key, val := ctxNode.Content[i], ctxNode.Content[i+1]
		if val.Kind != yaml.SequenceNode {
			return nil, &BuildError{Context: key.Value, Rule: -1, Err: fmt.Errorf("%w: context is not a list", ErrMalformed)}
		}
		ctx, err := b.context(key.Value, val)
		if err != nil {
			return nil, err
		}
		contexts[key.Value] = ctx
	}
	if _, ok := contexts[MainContext]; !ok {
		return nil, &BuildError{Rule: -1, Err: ErrMissingMain}
	}

	syn := &Syntax{
		Name:           name,
		Scope:          scopeName,
		FileExtensions: exts,
		Contexts:       contexts,
		Anonymous:      b.anon,
		Variables:      resolved,
	}

	if n := field(root, "first_line_match"); n != nil {
		re, err := b.compile(n.Value)
		if err != nil {
			return nil, &BuildError{Rule: -1, Err: fmt.Errorf("first_line_match: %w", err)}
		}
		syn.FirstLineMatch = re
	}
	if n := field(root, "hidden"); n != nil {
		if err := n.Decode(&syn.Hidden); err != nil {
			return nil, &BuildError{Rule: -1, Err: fmt.Errorf("%w: hidden: %v", ErrMalformed, err)}
		}
	}

	log.Debug(log.CatGrammar, "built syntax",
		"name", name,
		"contexts", len(contexts),
		"anonymous", len(b.anon))
	return syn, nil
}

func (b *builder) context(name string, seq *yaml.Node) (*Context, error) {
	ctx := &Context{Name: name, MetaIncludePrototype: true}
	for i, item := range seq.Content {
		if item.Kind != yaml.MappingNode {
			return nil, &BuildError{Context: name, Rule: i, Err: fmt.Errorf("%w: rule is not a mapping", ErrMalformed)}
		}
		switch {
		case field(item, "match") != nil:
			m, err := b.match(name, i, item)
			if err != nil {
				return nil, err
			}
			ctx.Elements = append(ctx.Elements, m)
		case field(item, "include") != nil:
			inc := field(item, "include")
			if inc.Kind != yaml.ScalarNode || inc.Value == "" {
				return nil, &BuildError{Context: name, Rule: i, Err: fmt.Errorf("%w: include must name a context", ErrMalformed)}
			}
			ctx.Elements = append(ctx.Elements, Include{Name: inc.Value})
		default:
			if err := settings(ctx, item); err != nil {
				return nil, &BuildError{Context: name, Rule: i, Err: err}
			}
		}
	}
	return ctx, nil
}

// settings applies a context-level entry such as {meta_scope: …}.
func settings(ctx *Context, item *yaml.Node) error {
	known := false
	if n := field(item, "meta_scope"); n != nil {
		ctx.MetaScope = scope.Ptr(n.Value)
		known = true
	}
	if n := field(item, "meta_content_scope"); n != nil {
		ctx.MetaContentScope = scope.Ptr(n.Value)
		known = true
	}
	if n := field(item, "clear_scopes"); n != nil {
		known = true
		if n.Tag == "!!bool" {
			var all bool
			if err := n.Decode(&all); err != nil {
				return fmt.Errorf("%w: clear_scopes: %v", ErrMalformed, err)
			}
			if all {
				ctx.ClearScopes = ClearAll
			}
		} else if err := n.Decode(&ctx.ClearScopes); err != nil || ctx.ClearScopes < 0 {
			return fmt.Errorf("%w: clear_scopes must be true or a non-negative count", ErrMalformed)
		}
	}
	if n := field(item, "meta_include_prototype"); n != nil {
		known = true
		if err := n.Decode(&ctx.MetaIncludePrototype); err != nil {
			return fmt.Errorf("%w: meta_include_prototype: %v", ErrMalformed, err)
		}
	}
	if !known {
		log.Warn(log.CatGrammar, "ignoring unrecognized context entry", "context", ctx.Name)
	}
	return nil
}

func (b *builder) match(ctxName string, rule int, item *yaml.Node) (*Match, error) {
	fail := func(err error) (*Match, error) {
		var be *BuildError
		if errors.As(err, &be) {
			return nil, err
		}
		return nil, &BuildError{Context: ctxName, Rule: rule, Err: err}
	}

	src := field(item, "match")
	if src.Kind != yaml.ScalarNode {
		return fail(fmt.Errorf("%w: match must be a string", ErrMalformed))
	}
	pattern, err := Interpolate(src.Value, b.vars)
	if err != nil {
		return fail(err)
	}
	re, err := b.compile(pattern)
	if err != nil {
		return fail(err)
	}

	m := &Match{Pattern: re, Source: pattern}
	if n := field(item, "scope"); n != nil {
		m.Scope = scope.Ptr(n.Value)
	}

	if n := field(item, "captures"); n != nil {
		caps, err := captures(n, re)
		if err != nil {
			return fail(err)
		}
		m.Captures = caps
	}

	declared := 0
	for _, key := range []string{"push", "pop", "set"} {
		if field(item, key) != nil {
			declared++
		}
	}
	if declared > 1 {
		return fail(ErrAmbiguousAction)
	}

	switch {
	case field(item, "push") != nil:
		v, err := b.value(ctxName, field(item, "push"))
		if err != nil {
			return fail(err)
		}
		m.Action = Push{Value: v}
	case field(item, "set") != nil:
		v, err := b.value(ctxName, field(item, "set"))
		if err != nil {
			return fail(err)
		}
		m.Action = Set{Value: v}
	case field(item, "pop") != nil:
		action, err := pop(field(item, "pop"))
		if err != nil {
			return fail(err)
		}
		m.Action = action
	}
	return m, nil
}

func (b *builder) compile(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadPattern, pattern, err)
	}
	re.MatchTimeout = b.timeout
	return re, nil
}

// value decodes the target of a push or set.
func (b *builder) value(ctxName string, n *yaml.Node) (MatchValue, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value == "" {
			return nil, fmt.Errorf("%w: empty context name", ErrMalformed)
		}
		return Name(n.Value), nil
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return nil, fmt.Errorf("%w: empty context list", ErrMalformed)
		}
		// A list of rules is one inline context.
		if n.Content[0].Kind == yaml.MappingNode {
			return b.inline(ctxName, n)
		}
		list := make(List, 0, len(n.Content))
		for _, item := range n.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				list = append(list, Name(item.Value))
			case yaml.SequenceNode:
				v, err := b.inline(ctxName, item)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			default:
				return nil, fmt.Errorf("%w: context list entries must be names or rule lists", ErrMalformed)
			}
		}
		return list, nil
	default:
		return nil, fmt.Errorf("%w: push/set must be a name or a list", ErrMalformed)
	}
}

// inline builds an anonymous context and registers it in the arena.
// Nested inline contexts are registered before their parent.
func (b *builder) inline(parent string, seq *yaml.Node) (Inline, error) {
	ctx, err := b.context(parent+" (inline)", seq)
	if err != nil {
		return 0, err
	}
	idx := Inline(len(b.anon))
	ctx.Name = idx.String()
	b.anon = append(b.anon, ctx)
	return idx, nil
}

func pop(n *yaml.Node) (MatchAction, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%w: pop must be a boolean or a count", ErrMalformed)
	}
	if n.Tag == "!!int" {
		count, err := strconv.Atoi(n.Value)
		if err != nil || count < 1 {
			return nil, fmt.Errorf("%w: pop count must be positive", ErrMalformed)
		}
		return Pop{Count: count}, nil
	}
	var doPop bool
	if err := n.Decode(&doPop); err != nil {
		return nil, fmt.Errorf("%w: pop: %v", ErrMalformed, err)
	}
	if !doPop {
		return nil, nil
	}
	return Pop{Count: 1}, nil
}

// captures maps group numbers to scopes. Every key must name a group the
// pattern defines.
func captures(n *yaml.Node, re *regexp2.Regexp) ([]*scope.Scope, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: captures must be a mapping", ErrMalformed)
	}
	var caps []*scope.Scope
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		group, err := strconv.Atoi(key.Value)
		if err != nil || group < 0 {
			return nil, fmt.Errorf("%w: capture key %q is not a group number", ErrMalformed, key.Value)
		}
		if !slices.Contains(re.GetGroupNumbers(), group) {
			return nil, fmt.Errorf("%w: capture group %d is not defined by the pattern", ErrMalformed, group)
		}
		for len(caps) <= group {
			caps = append(caps, nil)
		}
		caps[group] = scope.Ptr(val.Value)
	}
	return caps, nil
}

// field returns the value node for key in a mapping node, or nil.
func field(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func requiredScalar(m *yaml.Node, key string) (string, error) {
	n := field(m, key)
	if n == nil || n.Kind != yaml.ScalarNode || n.Value == "" {
		return "", &BuildError{Rule: -1, Err: fmt.Errorf("%w: %s", ErrMissingField, key)}
	}
	return n.Value, nil
}
