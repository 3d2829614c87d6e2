// Package highlighter runs the context-stack state machine that assigns
// scopes to text, and keeps the resulting span history so later edits only
// re-tokenize from the edited line onward.
package highlighter

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/scopes/internal/log"
	"github.com/zjrosen/scopes/internal/scope"
	"github.com/zjrosen/scopes/internal/syntax"
	"github.com/zjrosen/scopes/internal/text"
	"github.com/zjrosen/scopes/internal/tracing"
)

// Highlighter tokenizes one document with one grammar. It is not safe for
// concurrent use; the Syntax it reads may be shared.
type Highlighter struct {
	syn    *syntax.Syntax
	opts   options
	tracer trace.Tracer

	tail   *Node
	count  int
	reused int
	errs   []RuntimeError
}

// New returns a Highlighter with an empty history.
func New(syn *syntax.Syntax, opts ...Option) *Highlighter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	tracer := o.tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	return &Highlighter{syn: syn, opts: o, tracer: tracer}
}

// Syntax returns the grammar.
func (h *Highlighter) Syntax() *syntax.Syntax { return h.syn }

// Tail returns the most recent node, or nil before the first parse.
func (h *Highlighter) Tail() *Node { return h.tail }

// Count returns the number of nodes in the history.
func (h *Highlighter) Count() int { return h.count }

// Reused returns how many nodes the last Parse kept from the previous
// history.
func (h *Highlighter) Reused() int { return h.reused }

// Errors returns the runtime errors recorded by the last Parse.
func (h *Highlighter) Errors() []RuntimeError { return h.errs }

// MarkDirty drops every node that ends at or after editIndex. The last node
// ending strictly before it becomes the tail. It must be called before Parse
// after any edit; call it with the start of the edited line for the result
// to equal a fresh parse.
func (h *Highlighter) MarkDirty(editIndex int) {
	for h.tail != nil && h.tail.end >= editIndex {
		h.tail = h.tail.prev
		h.count--
	}
}

// Parse tokenizes src from the end of the retained history to the end of
// the text.
func (h *Highlighter) Parse(src text.Source) {
	h.ParseContext(context.Background(), src)
}

// ParseContext is Parse with a parent context for tracing.
func (h *Highlighter) ParseContext(ctx context.Context, src text.Source) {
	n := src.Len()
	if h.tail != nil && h.tail.end > n {
		// Text shrank without a MarkDirty; drop what no longer fits.
		h.MarkDirty(n)
	}
	// Only the last span of a match step knows the stack to continue with.
	for h.tail != nil && h.tail.resume == nil {
		h.tail = h.tail.prev
		h.count--
	}

	stack := NewStack(syntax.Name(syntax.MainContext))
	cursor := 0
	if h.tail != nil {
		stack = h.tail.resume
		cursor = h.tail.end
	}
	reused := h.count
	h.reused = reused

	_, span := h.tracer.Start(ctx, tracing.SpanParse, trace.WithAttributes(
		attribute.String(tracing.AttrGrammarName, h.syn.Name),
		attribute.Int(tracing.AttrParseFrom, cursor),
		attribute.Int(tracing.AttrParseReused, reused),
	))
	defer span.End()

	h.errs = nil
	stalls := 0
	for cursor < n {
		top := stack.Top()
		if stack.Depth() > h.opts.maxStackDepth {
			h.record(StackOverflow, cursor, top.String())
			h.emit(stack, stack, nil, cursor, n)
			break
		}
		cur, ok := h.syn.Resolve(top)
		if !ok {
			h.record(MissingContext, cursor, top.String())
			h.emit(stack, stack, nil, cursor, n)
			break
		}

		action, spans := consumeNextMatch(src.Line(cursor), cursor, cur, h.syn, h.opts)
		next := h.apply(stack, action, cursor, cur.Name)

		if len(spans) == 0 {
			// The winner consumed nothing.
			if action == nil {
				h.record(ZeroProgress, cursor, cur.Name)
				h.emit(stack, stack, cur.FillScope(), cursor, cursor+1)
				cursor++
				continue
			}
			stalls++
			if stalls > h.opts.maxStackDepth {
				h.record(ZeroProgress, cursor, cur.Name)
				h.emit(stack, stack, nil, cursor, cursor+1)
				cursor++
				stalls = 0
				continue
			}
			stack = next
			continue
		}

		stalls = 0
		for i, s := range spans {
			var resume *Stack
			if i == len(spans)-1 {
				resume = next
			}
			h.emit(stack, resume, s.scope, s.start, s.end)
			cursor = max(cursor, s.end)
		}
		stack = next
	}

	span.SetAttributes(
		attribute.Int(tracing.AttrParseNodes, h.count-reused),
		attribute.Int(tracing.AttrParseErrors, len(h.errs)),
	)
	log.Debug(log.CatTokenizer, "Parsed",
		"grammar", h.syn.Name, "reused", reused, "built", h.count-reused, "errors", len(h.errs))
}

func (h *Highlighter) emit(stack, resume *Stack, sc *scope.Scope, start, end int) {
	h.tail = &Node{
		stack:  stack,
		resume: resume,
		scope:  sc,
		start:  start,
		end:    end,
		prev:   h.tail,
	}
	h.count++
}

// apply returns the stack after action. Pops past the root are recorded
// and ignored.
func (h *Highlighter) apply(stack *Stack, action syntax.MatchAction, at int, ctxName string) *Stack {
	switch a := action.(type) {
	case syntax.Push:
		return pushValue(stack, a.Value)
	case syntax.Pop:
		for range max(a.Count, 1) {
			parent, ok := stack.Pop()
			if !ok {
				h.record(StackUnderflow, at, ctxName)
				break
			}
			stack = parent
		}
		return stack
	case syntax.Set:
		// Set on the root frame replaces it.
		next := pushValue(stack.parent, a.Value)
		if next.Depth() == 0 {
			h.record(StackUnderflow, at, ctxName)
			return stack
		}
		return next
	default:
		return stack
	}
}

func pushValue(s *Stack, v syntax.StackValue) *Stack {
	if list, ok := v.(syntax.List); ok {
		for _, item := range list {
			s = pushValue(s, item)
		}
		return s
	}
	return s.Push(v)
}

func (h *Highlighter) record(kind ErrorKind, at int, ctxName string) {
	err := RuntimeError{Kind: kind, Offset: at, Context: ctxName}
	log.Warn(log.CatTokenizer, "Recovered from tokenizer error",
		"kind", kind.String(), "offset", at, "context", ctxName)
	h.errs = append(h.errs, err)
}

// Walk calls fn for each node from the most recent to the first, stopping
// when fn returns false.
func (h *Highlighter) Walk(fn func(*Node) bool) {
	for n := h.tail; n != nil; n = n.prev {
		if !fn(n) {
			return
		}
	}
}

// Spans returns the spans overlapping [from, to) in document order.
func (h *Highlighter) Spans(from, to int) []Span {
	n := h.tail
	for n != nil && n.start >= to {
		n = n.prev
	}
	var out []Span
	for ; n != nil && n.end > from; n = n.prev {
		out = append(out, n.span())
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// NodeAt returns the node covering offset, or nil.
func (h *Highlighter) NodeAt(offset int) *Node {
	for n := h.tail; n != nil; n = n.prev {
		if n.start <= offset && offset < n.end {
			return n
		}
		if n.end <= offset {
			return nil
		}
	}
	return nil
}

// ScopesAt returns the full scope path at offset: the grammar's scope, the
// meta scopes of every context on the stack, then the span's own scope.
// It returns nil when offset is not covered.
func (h *Highlighter) ScopesAt(offset int) []scope.Scope {
	n := h.NodeAt(offset)
	if n == nil {
		return nil
	}

	path := []scope.Scope{scope.New(h.syn.Scope)}
	for _, v := range n.stack.Values() {
		ctx, ok := h.syn.Resolve(v)
		if !ok {
			continue
		}
		switch {
		case ctx.ClearScopes == syntax.ClearAll:
			path = path[:0]
		case ctx.ClearScopes > 0:
			path = path[:max(len(path)-ctx.ClearScopes, 0)]
		}
		if ctx.MetaScope != nil {
			path = append(path, *ctx.MetaScope)
		}
		if ctx.MetaContentScope != nil {
			path = append(path, *ctx.MetaContentScope)
		}
	}
	if n.scope != nil && (len(path) == 0 || !path[len(path)-1].Equal(*n.scope)) {
		path = append(path, *n.scope)
	}
	return path
}
