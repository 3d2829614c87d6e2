// Package app wires configuration, grammars, theme and tracing into the
// services the commands use.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zjrosen/scopes/internal/config"
	"github.com/zjrosen/scopes/internal/document"
	"github.com/zjrosen/scopes/internal/highlighter"
	"github.com/zjrosen/scopes/internal/log"
	"github.com/zjrosen/scopes/internal/registry"
	"github.com/zjrosen/scopes/internal/syntax"
	"github.com/zjrosen/scopes/internal/theme"
	"github.com/zjrosen/scopes/internal/tracing"
)

// App is the set of long-lived services built from a Config.
type App struct {
	cfg      config.Config
	registry *registry.Registry
	theme    *theme.Theme
	tracing  *tracing.Provider
}

// New validates cfg and builds the services. Relative grammar directories
// are resolved against configDir.
func New(cfg config.Config, configDir string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	tc := cfg.Tracing
	if tc.Enabled && tc.Exporter == "file" && tc.FilePath == "" {
		tc.FilePath = config.DefaultTracesFilePath()
	}
	tp, err := tracing.NewProvider(tc)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	reg, err := registry.New(cfg.GrammarSources(configDir),
		registry.WithTracer(tp.Tracer()),
		registry.WithSyntaxOptions(cfg.SyntaxOptions()...),
	)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return nil, fmt.Errorf("loading grammars: %w", err)
	}

	return &App{
		cfg:      cfg,
		registry: reg,
		theme:    cfg.NewTheme(),
		tracing:  tp,
	}, nil
}

// Registry returns the grammar registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// Theme returns the configured theme.
func (a *App) Theme() *theme.Theme { return a.theme }

// HighlighterOptions returns the tokenizer options, traced.
func (a *App) HighlighterOptions() []highlighter.Option {
	return append(a.cfg.HighlighterOptions(), highlighter.WithTracer(a.tracing.Tracer()))
}

// Grammar picks the grammar for path. An explicit ext wins over the
// file's own extension and first line.
func (a *App) Grammar(ctx context.Context, path, ext, content string) (*syntax.Syntax, error) {
	if ext != "" {
		return a.registry.Lookup(ctx, ext)
	}
	return a.registry.LookupPath(ctx, path, firstLine(content))
}

// Open reads path and returns it highlighted. A file no grammar handles is
// an error wrapping registry.ErrNoGrammar.
func (a *App) Open(ctx context.Context, path, ext string) (*document.Document, error) {
	content, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	syn, err := a.Grammar(ctx, path, ext, content)
	if err != nil {
		if !errors.Is(err, registry.ErrNoGrammar) {
			log.Warn(log.CatRegistry, "Grammar unavailable", "path", path, "error", err)
		}
		return nil, err
	}
	return document.New(ctx, syn, content, a.HighlighterOptions()...), nil
}

// Close flushes traces.
func (a *App) Close(ctx context.Context) error {
	return a.tracing.Shutdown(ctx)
}

// ReadFile returns the contents of path, or of stdin for "-".
func ReadFile(path string) (string, error) {
	if path == "-" {
		var b strings.Builder
		r := bufio.NewReader(os.Stdin)
		if _, err := r.WriteTo(&b); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return b.String(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-supplied input file
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
