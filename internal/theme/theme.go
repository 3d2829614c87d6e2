// Package theme maps scopes to terminal styles by longest matching scope
// prefix.
package theme

import (
	"context"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/scopes/internal/cachemanager"
	"github.com/zjrosen/scopes/internal/highlighter"
	"github.com/zjrosen/scopes/internal/log"
	"github.com/zjrosen/scopes/internal/scope"
)

// Rule styles every scope that one of its selectors is a prefix of.
type Rule struct {
	Name string `mapstructure:"name" yaml:"name,omitempty"`
	// Scope is a comma-separated list of selectors, e.g. "keyword, storage.type".
	Scope      string `mapstructure:"scope" yaml:"scope"`
	Foreground string `mapstructure:"foreground" yaml:"foreground,omitempty"`
	Background string `mapstructure:"background" yaml:"background,omitempty"`
	Bold       bool   `mapstructure:"bold" yaml:"bold,omitempty"`
	Italic     bool   `mapstructure:"italic" yaml:"italic,omitempty"`
	Underline  bool   `mapstructure:"underline" yaml:"underline,omitempty"`
}

// Selectors returns the rule's trimmed, non-empty selectors.
func (r Rule) Selectors() []string {
	var out []string
	for _, s := range strings.Split(r.Scope, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r Rule) style(base lipgloss.Style) lipgloss.Style {
	st := base
	if r.Foreground != "" {
		st = st.Foreground(lipgloss.Color(r.Foreground))
	}
	if r.Background != "" {
		st = st.Background(lipgloss.Color(r.Background))
	}
	return st.Bold(r.Bold).Italic(r.Italic).Underline(r.Underline)
}

type scopeKey string

// Theme resolves scopes to styles. Resolution is memoized per scope name.
type Theme struct {
	rules  []Rule
	base   lipgloss.Style
	styles *cachemanager.ReadThroughCache[scopeKey, lipgloss.Style, string]
}

// New builds a Theme. defaultForeground styles unscoped text and scopes no
// rule matches; it may be empty.
func New(rules []Rule, defaultForeground string) *Theme {
	base := lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if defaultForeground != "" {
		base = base.Foreground(lipgloss.Color(defaultForeground))
	}
	t := &Theme{rules: rules, base: base}
	cache := cachemanager.NewInMemoryCacheManager[scopeKey, lipgloss.Style](
		"theme", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval)
	t.styles = cachemanager.NewReadThroughCache[scopeKey, lipgloss.Style, string](cache, t.resolve, false)
	return t
}

// Rules returns the theme's rules in declaration order.
func (t *Theme) Rules() []Rule { return t.rules }

// Match returns the rule with the longest selector that is a dot-boundary
// prefix of name. Earlier rules win ties.
func (t *Theme) Match(name string) (Rule, bool) {
	sc := scope.New(name)
	best, bestLen := -1, -1
	for i, r := range t.rules {
		for _, sel := range r.Selectors() {
			if len(sel) > bestLen && sc.HasPrefix(sel) {
				best, bestLen = i, len(sel)
			}
		}
	}
	if best < 0 {
		return Rule{}, false
	}
	return t.rules[best], true
}

func (t *Theme) resolve(_ context.Context, name string) (lipgloss.Style, error) {
	r, ok := t.Match(name)
	if !ok {
		log.Debug(log.CatTheme, "No rule for scope", "scope", name)
		return t.base, nil
	}
	return r.style(t.base), nil
}

// Style returns the style for sc. A nil scope gets the base style.
func (t *Theme) Style(ctx context.Context, sc *scope.Scope) lipgloss.Style {
	if sc == nil {
		return t.base
	}
	name := sc.String()
	st, err := t.styles.Get(ctx, scopeKey(name), name, cachemanager.NoExpiration)
	if err != nil {
		return t.base
	}
	return st
}

// Render styles src according to spans. Text outside every span is
// rendered with the base style. Newlines are never styled so each line
// stays independent.
func (t *Theme) Render(ctx context.Context, src []rune, spans []highlighter.Span) string {
	var b strings.Builder
	cursor := 0
	for _, sp := range spans {
		start := max(sp.Start, cursor)
		end := min(sp.End, len(src))
		if start >= end {
			continue
		}
		if start > cursor {
			writeStyled(&b, t.base, string(src[cursor:start]))
		}
		writeStyled(&b, t.Style(ctx, sp.Scope), string(src[start:end]))
		cursor = end
	}
	if cursor < len(src) {
		writeStyled(&b, t.base, string(src[cursor:]))
	}
	return b.String()
}

func writeStyled(b *strings.Builder, st lipgloss.Style, s string) {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		if line != "" {
			b.WriteString(st.Render(line))
		}
	}
}
