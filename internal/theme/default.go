package theme

// DefaultRules is a small dark-terminal palette covering the common
// top-level scope names.
var DefaultRules = []Rule{
	{Name: "Comment", Scope: "comment", Foreground: "#6A9955", Italic: true},
	{Name: "String", Scope: "string", Foreground: "#CE9178"},
	{Name: "Escape", Scope: "constant.character.escape", Foreground: "#D7BA7D"},
	{Name: "Number", Scope: "constant.numeric", Foreground: "#B5CEA8"},
	{Name: "Constant", Scope: "constant.language, support.constant", Foreground: "#569CD6"},
	{Name: "Keyword", Scope: "keyword, storage", Foreground: "#C586C0", Bold: true},
	{Name: "Operator", Scope: "keyword.operator, punctuation", Foreground: "#D4D4D4"},
	{Name: "Type", Scope: "storage.type, entity.name.type, support.type", Foreground: "#4EC9B0"},
	{Name: "Function", Scope: "entity.name.function, support.function", Foreground: "#DCDCAA"},
	{Name: "Variable", Scope: "variable", Foreground: "#9CDCFE"},
	{Name: "Attribute", Scope: "meta.attribute, entity.other.attribute-name", Foreground: "#9CDCFE", Italic: true},
	{Name: "Invalid", Scope: "invalid", Foreground: "#F44747", Underline: true},
}

// DefaultForeground is used for text no rule claims.
const DefaultForeground = "#D4D4D4"

// Default returns a Theme over DefaultRules.
func Default() *Theme {
	return New(DefaultRules, DefaultForeground)
}
