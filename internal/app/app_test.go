package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scopes/internal/config"
	"github.com/zjrosen/scopes/internal/registry"
)

const customGrammar = `name: Notes
scope: text.notes
file_extensions: [notes]
contexts:
  main:
    - match: '^TODO'
      scope: keyword.todo
`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Highlighter.TieBreak = "coin-flip"

	_, err := New(cfg, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid configuration")
}

func TestOpenBuiltin(t *testing.T) {
	a, err := New(config.Defaults(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	path := write(t, t.TempDir(), "main.go", "package main\n// hi\n")
	doc, err := a.Open(context.Background(), path, "")
	require.NoError(t, err)
	require.Equal(t, "package main\n// hi\n", doc.String())
	require.Equal(t, "source.go", doc.Highlighter().Syntax().Scope)
	require.NotEmpty(t, doc.Spans(0, doc.Buffer().Len()))
}

func TestOpenWithConfiguredGrammarDir(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "grammars"), 0o755))
	write(t, filepath.Join(base, "grammars"), "Notes.sublime-syntax", customGrammar)

	cfg := config.Defaults()
	cfg.GrammarDirs = []string{"grammars"}
	a, err := New(cfg, base)
	require.NoError(t, err)

	path := write(t, t.TempDir(), "today.notes", "TODO ship\n")
	doc, err := a.Open(context.Background(), path, "")
	require.NoError(t, err)
	require.Equal(t, "keyword.todo", doc.Highlighter().ScopesAt(0)[1].String())
}

func TestOpenExplicitSyntax(t *testing.T) {
	a, err := New(config.Defaults(), "")
	require.NoError(t, err)

	path := write(t, t.TempDir(), "snippet.txt", "fn main() {}\n")
	doc, err := a.Open(context.Background(), path, "rs")
	require.NoError(t, err)
	require.Equal(t, "Rust", doc.Highlighter().Syntax().Name)
}

func TestOpenByFirstLine(t *testing.T) {
	a, err := New(config.Defaults(), "")
	require.NoError(t, err)

	path := write(t, t.TempDir(), "noext", "package main\n")
	doc, err := a.Open(context.Background(), path, "")
	require.NoError(t, err)
	require.Equal(t, "Go", doc.Highlighter().Syntax().Name)
}

func TestOpenUnknown(t *testing.T) {
	a, err := New(config.Defaults(), "")
	require.NoError(t, err)

	path := write(t, t.TempDir(), "data.xyz", "hello\n")
	_, err = a.Open(context.Background(), path, "")
	require.ErrorIs(t, err, registry.ErrNoGrammar)

	_, err = a.Open(context.Background(), filepath.Join(t.TempDir(), "missing.go"), "")
	require.Error(t, err)
}

func TestTracingToFile(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	cfg := config.Defaults()
	cfg.Tracing.Enabled = true
	cfg.Tracing.FilePath = tracePath

	a, err := New(cfg, "")
	require.NoError(t, err)
	path := write(t, t.TempDir(), "main.go", "package main\n")
	_, err = a.Open(context.Background(), path, "")
	require.NoError(t, err)
	require.NoError(t, a.Close(context.Background()))

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	require.Contains(t, string(data), "grammar.build")
	require.Contains(t, string(data), "highlighter.parse")
}

func TestFirstLine(t *testing.T) {
	require.Equal(t, "a", firstLine("a\nb"))
	require.Equal(t, "abc", firstLine("abc"))
	require.Equal(t, "", firstLine(""))
}
