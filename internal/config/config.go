// Package config provides configuration types and defaults for scopes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/scopes/internal/highlighter"
	"github.com/zjrosen/scopes/internal/log"
	"github.com/zjrosen/scopes/internal/paths"
	"github.com/zjrosen/scopes/internal/registry"
	"github.com/zjrosen/scopes/internal/syntax"
	"github.com/zjrosen/scopes/internal/theme"
	"github.com/zjrosen/scopes/internal/tracing"
)

// Config holds all configuration options for scopes.
type Config struct {
	// GrammarDirs are scanned for *.sublime-syntax after the built-in
	// grammars. Relative entries are relative to the config file.
	GrammarDirs []string          `mapstructure:"grammar_dirs"`
	Highlighter HighlighterConfig `mapstructure:"highlighter"`
	Theme       ThemeConfig       `mapstructure:"theme"`
	Tracing     tracing.Config    `mapstructure:"tracing"`
	Debug       bool              `mapstructure:"debug"`
	LogPath     string            `mapstructure:"log_path"`
}

// HighlighterConfig tunes the tokenizer.
type HighlighterConfig struct {
	MaxStackDepth   int           `mapstructure:"max_stack_depth"`
	MaxIncludeDepth int           `mapstructure:"max_include_depth"`
	TieBreak        string        `mapstructure:"tie_break"`    // "declaration" (default) or "longest"
	MatchTimeout    time.Duration `mapstructure:"match_timeout"` // per regex evaluation, e.g. "100ms"
}

// ThemeConfig holds the color scheme.
type ThemeConfig struct {
	// Rules replace the built-in palette when non-empty.
	Rules             []theme.Rule `mapstructure:"rules"`
	DefaultForeground string       `mapstructure:"default_foreground"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Highlighter: HighlighterConfig{
			MaxStackDepth:   highlighter.DefaultMaxStackDepth,
			MaxIncludeDepth: highlighter.DefaultMaxIncludeDepth,
			TieBreak:        highlighter.TieBreakDeclarationOrder.String(),
			MatchTimeout:    syntax.DefaultMatchTimeout,
		},
		Theme: ThemeConfig{
			DefaultForeground: theme.DefaultForeground,
		},
		Tracing: tracing.DefaultConfig(),
		LogPath: "debug.log",
	}
}

// Validate checks the configuration for errors. Zero values mean defaults
// and are valid.
func (c Config) Validate() error {
	if err := ValidateHighlighter(c.Highlighter); err != nil {
		return err
	}
	if err := ValidateTheme(c.Theme); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateHighlighter checks tokenizer limits and the tie-break policy.
func ValidateHighlighter(h HighlighterConfig) error {
	if h.MaxStackDepth < 0 {
		return fmt.Errorf("highlighter.max_stack_depth must not be negative, got %d", h.MaxStackDepth)
	}
	if h.MaxIncludeDepth < 0 {
		return fmt.Errorf("highlighter.max_include_depth must not be negative, got %d", h.MaxIncludeDepth)
	}
	if h.MatchTimeout < 0 {
		return fmt.Errorf("highlighter.match_timeout must not be negative, got %s", h.MatchTimeout)
	}
	if _, err := highlighter.ParseTieBreak(h.TieBreak); err != nil {
		return fmt.Errorf("highlighter.tie_break: %w", err)
	}
	return nil
}

// ValidateTheme checks that every rule names at least one scope.
func ValidateTheme(t ThemeConfig) error {
	for i, r := range t.Rules {
		if len(r.Selectors()) == 0 {
			return fmt.Errorf("theme.rules[%d]: scope is required", i)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" {
		switch tc.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tc.Enabled {
		if tc.Exporter == "file" && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// HighlighterOptions maps the highlighter section onto tokenizer options.
// Call Validate first; an unknown tie-break falls back to the default.
func (c Config) HighlighterOptions() []highlighter.Option {
	h := c.Highlighter
	opts := []highlighter.Option{
		highlighter.WithMaxStackDepth(h.MaxStackDepth),
		highlighter.WithMaxIncludeDepth(h.MaxIncludeDepth),
	}
	if tb, err := highlighter.ParseTieBreak(h.TieBreak); err == nil {
		opts = append(opts, highlighter.WithTieBreak(tb))
	}
	return opts
}

// SyntaxOptions returns the grammar build options.
func (c Config) SyntaxOptions() []syntax.Option {
	if c.Highlighter.MatchTimeout <= 0 {
		return nil
	}
	return []syntax.Option{syntax.WithMatchTimeout(c.Highlighter.MatchTimeout)}
}

// GrammarSources returns the built-in grammars followed by each configured
// directory, resolved against baseDir.
func (c Config) GrammarSources(baseDir string) []registry.Source {
	sources := []registry.Source{{Name: "builtin", FS: registry.BuiltinFS()}}
	for _, dir := range c.GrammarDirs {
		resolved := paths.Resolve(baseDir, dir)
		if info, err := os.Stat(resolved); err != nil || !info.IsDir() {
			log.Warn(log.CatConfig, "Skipping grammar directory", "dir", resolved)
			continue
		}
		sources = append(sources, registry.DirSource(resolved))
	}
	return sources
}

// NewTheme builds the configured theme, or the default palette when no
// rules are set.
func (c Config) NewTheme() *theme.Theme {
	rules := c.Theme.Rules
	if len(rules) == 0 {
		rules = theme.DefaultRules
	}
	return theme.New(rules, c.Theme.DefaultForeground)
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/scopes/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	dir := paths.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# scopes configuration

# Extra directories scanned for *.sublime-syntax grammars, after the
# built-in ones. A grammar here takes over the extensions of a built-in one.
# Relative paths are relative to this file.
grammar_dirs: []

# Tokenizer settings
highlighter:
  max_stack_depth: 50        # Deeper context stacks end the parse
  max_include_depth: 64      # Nested include expansion limit
  tie_break: declaration     # "declaration" (first declared rule wins) or "longest"
  match_timeout: 100ms       # Per-pattern evaluation limit

# Color scheme
# Each rule styles every scope that one of its comma-separated selectors is a
# dot-boundary prefix of. The longest matching selector wins.
theme:
  default_foreground: "#D4D4D4"
  # rules:
  #   - name: Comment
  #     scope: comment
  #     foreground: "#6A9955"
  #     italic: true
  #   - name: Keyword
  #     scope: keyword, storage
  #     foreground: "#C586C0"
  #     bold: true

# Write debug logs to log_path (same as --debug or SCOPES_DEBUG=1)
debug: false
log_path: debug.log

# Distributed tracing of grammar builds and parses
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/scopes/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
