package highlighter

import (
	"github.com/zjrosen/scopes/internal/log"
	"github.com/zjrosen/scopes/internal/syntax"
)

type iterFrame struct {
	ctx   *syntax.Context
	elems []syntax.ContextElement
}

// matchIter yields the match rules of a context in declaration order,
// splicing includes in place. The prototype, when it applies, comes first.
type matchIter struct {
	syn      *syntax.Syntax
	maxDepth int
	frames   []iterFrame
}

func newMatchIter(syn *syntax.Syntax, ctx *syntax.Context, maxDepth int) *matchIter {
	it := &matchIter{syn: syn, maxDepth: maxDepth}
	it.frames = append(it.frames, iterFrame{ctx: ctx, elems: ctx.Elements})
	if ctx.MetaIncludePrototype {
		if proto := syn.Prototype(); proto != nil && proto != ctx {
			it.frames = append(it.frames, iterFrame{ctx: proto, elems: proto.Elements})
		}
	}
	return it
}

// next returns the next match rule, or nil when the context is exhausted.
func (it *matchIter) next() *syntax.Match {
	for len(it.frames) > 0 {
		top := &it.frames[len(it.frames)-1]
		if len(top.elems) == 0 {
			it.frames = it.frames[:len(it.frames)-1]
			continue
		}
		el := top.elems[0]
		top.elems = top.elems[1:]

		switch el := el.(type) {
		case *syntax.Match:
			return el
		case syntax.Include:
			ctx, ok := it.syn.Contexts[el.Name]
			if !ok {
				log.Warn(log.CatTokenizer, "Skipping include of missing context",
					"include", el.Name, "from", top.ctx.Name)
				continue
			}
			if len(it.frames) >= it.maxDepth {
				log.Warn(log.CatTokenizer, "Include depth limit reached",
					"include", el.Name, "depth", len(it.frames))
				continue
			}
			if it.expanding(ctx) {
				log.Debug(log.CatTokenizer, "Skipping recursive include",
					"include", el.Name, "from", top.ctx.Name)
				continue
			}
			it.frames = append(it.frames, iterFrame{ctx: ctx, elems: ctx.Elements})
		}
	}
	return nil
}

// expanding reports whether ctx is already being expanded, which would
// make an include cycle.
func (it *matchIter) expanding(ctx *syntax.Context) bool {
	for _, f := range it.frames {
		if f.ctx == ctx {
			return true
		}
	}
	return false
}
