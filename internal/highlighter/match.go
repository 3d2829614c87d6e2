package highlighter

import (
	"unicode"

	"github.com/dlclark/regexp2"

	"github.com/zjrosen/scopes/internal/log"
	"github.com/zjrosen/scopes/internal/scope"
	"github.com/zjrosen/scopes/internal/syntax"
)

// scopeMatch is a span produced by one match selection, in absolute offsets.
type scopeMatch struct {
	scope *scope.Scope
	start int
	end   int
}

type candidate struct {
	rule  *syntax.Match
	res   *regexp2.Match
	start int
	end   int
}

// consumeNextMatch picks the winning rule of ctx for line, which holds the
// text from offset up to and including the next newline, and slices the
// consumed text into spans. Zero-width spans are never returned, so an
// empty result means the winner matched nothing at offset.
func consumeNextMatch(line []rune, offset int, ctx *syntax.Context, syn *syntax.Syntax, opts options) (syntax.MatchAction, []scopeMatch) {
	if len(line) == 0 {
		return nil, nil
	}
	if isBlank(line) {
		return nil, []scopeMatch{{start: offset, end: offset + len(line)}}
	}

	var best *candidate
	it := newMatchIter(syn, ctx, opts.maxIncludeDepth)
	for rule := it.next(); rule != nil; rule = it.next() {
		res, err := rule.Pattern.FindRunesMatch(line)
		if err != nil {
			log.Warn(log.CatTokenizer, "Pattern evaluation failed",
				"pattern", rule.Source, "offset", offset, "error", err)
			continue
		}
		if res == nil {
			continue
		}
		c := &candidate{rule: rule, res: res, start: res.Index, end: res.Index + res.Length}
		if best == nil || c.start < best.start ||
			(opts.tieBreak == TieBreakLongest && c.start == best.start && c.end > best.end) {
			best = c
		}
		if opts.tieBreak == TieBreakDeclarationOrder && best.start == 0 {
			break
		}
	}

	fill := ctx.FillScope()
	if best == nil {
		return nil, []scopeMatch{{scope: fill, start: offset, end: offset + len(line)}}
	}

	var spans []scopeMatch
	if best.start > 0 {
		spans = append(spans, scopeMatch{scope: fill, start: offset, end: offset + best.start})
	}
	for _, s := range sliceCaptures(best, fill) {
		s.start += offset
		s.end += offset
		spans = append(spans, s)
	}
	return best.rule.Action, spans
}

// sliceCaptures splits the winning match into contiguous spans, relative to
// the line. Declared captures get their own scope; everything else in the
// match gets the fallback scope.
func sliceCaptures(c *candidate, fill *scope.Scope) []scopeMatch {
	fallback := c.rule.CaptureScope(0)
	if fallback == nil {
		fallback = c.rule.Scope
	}
	if fallback == nil {
		fallback = fill
	}

	var out []scopeMatch
	cursor := c.start
	for i := 1; i < len(c.rule.Captures); i++ {
		sc := c.rule.Captures[i]
		if sc == nil {
			continue
		}
		g := c.res.GroupByNumber(i)
		if g == nil || len(g.Captures) == 0 || g.Length == 0 {
			continue
		}
		start, end := g.Index, g.Index+g.Length
		// Nested or overlapping groups that begin inside an earlier capture
		// are dropped.
		if start < cursor || start >= c.end {
			continue
		}
		end = min(end, c.end)
		if start > cursor {
			out = append(out, scopeMatch{scope: fallback, start: cursor, end: start})
		}
		out = append(out, scopeMatch{scope: sc, start: start, end: end})
		cursor = end
	}
	if cursor < c.end {
		out = append(out, scopeMatch{scope: fallback, start: cursor, end: c.end})
	}
	return out
}

func isBlank(line []rune) bool {
	for _, r := range line {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
