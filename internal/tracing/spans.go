package tracing

// Span names.
const (
	SpanGrammarBuild = "grammar.build"
	SpanParse        = "highlighter.parse"
)

// Span attribute keys.
const (
	AttrGrammarName     = "grammar.name"
	AttrGrammarExt      = "grammar.extension"
	AttrGrammarContexts = "grammar.contexts"
	AttrGrammarSource   = "grammar.source"

	AttrParseFrom   = "parse.from"
	AttrParseReused = "parse.reused_nodes"
	AttrParseNodes  = "parse.new_nodes"
	AttrParseErrors = "parse.errors"
)
