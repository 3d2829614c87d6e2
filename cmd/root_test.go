package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scopes/internal/config"
	"github.com/zjrosen/scopes/internal/presentation"
)

const goSource = "package main\n\n// entry point\nfunc main() {\n\tprintln(\"hi\")\n}\n"

// run executes the CLI with args against a clean global state.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SCOPES_DEBUG", "")

	viper.Reset()
	cfg = config.Config{}
	cfgFile, colorMode, debugFlag = "", "auto", false
	tokenizeSyntax, tokenizeFormat = "", "json"
	scopeSyntax, scopeJSON = "", false
	grammarsAll = false
	configInitForce, configInitTheme = false, false
	services = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTokenizeJSON(t *testing.T) {
	path := writeFile(t, "main.go", goSource)

	out, err := run(t, "tokenize", path)
	require.NoError(t, err)

	var res presentation.TokenizeResultDTO
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, "Go", res.Grammar)
	require.Empty(t, res.Errors)

	var text strings.Builder
	end := 0
	for _, s := range res.Spans {
		require.Equal(t, end, s.Start, "spans are contiguous")
		end = s.End
		text.WriteString(s.Text)
	}
	require.Equal(t, goSource, text.String())

	var sawComment bool
	for _, s := range res.Spans {
		if s.Text == "// entry point" {
			sawComment = strings.HasPrefix(s.Scope, "comment.line")
		}
	}
	require.True(t, sawComment)
}

func TestTokenizePlainWithSyntax(t *testing.T) {
	path := writeFile(t, "snippet.txt", "fn main() {}\n")

	out, err := run(t, "tokenize", "--format", "plain", "--syntax", "rs", path)
	require.NoError(t, err)
	require.Contains(t, out, "0-2\tstorage.type.function.rust\t\"fn\"\n")
}

func TestTokenizeANSI(t *testing.T) {
	path := writeFile(t, "main.go", goSource)

	out, err := run(t, "--color", "always", "tokenize", "-f", "ansi", path)
	require.NoError(t, err)
	require.NotEqual(t, goSource, out)
	require.Equal(t, goSource, ansi.Strip(out))
}

func TestTokenizeErrors(t *testing.T) {
	_, err := run(t, "tokenize", writeFile(t, "data.xyz", "x\n"))
	require.ErrorContains(t, err, "no grammar")

	_, err = run(t, "tokenize", "-f", "xml", writeFile(t, "main.go", goSource))
	require.ErrorContains(t, err, "--format")

	_, err = run(t, "--color", "sometimes", "grammars:list")
	require.ErrorContains(t, err, "--color")
}

func TestScope(t *testing.T) {
	path := writeFile(t, "main.go", goSource)
	offset := strings.Index(goSource, "entry")

	out, err := run(t, "scope", path, strconv.Itoa(offset))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, "source.go", lines[0])
	require.True(t, strings.HasPrefix(lines[len(lines)-1], "comment.line"), out)

	out, err = run(t, "scope", "--json", path, "0")
	require.NoError(t, err)
	var dto presentation.ScopePathDTO
	require.NoError(t, json.Unmarshal([]byte(out), &dto))
	require.Equal(t, 0, dto.Offset)
	require.Equal(t, "source.go", dto.Scopes[0])

	_, err = run(t, "scope", path, "9999")
	require.ErrorContains(t, err, "out of range")

	_, err = run(t, "scope", path, "abc")
	require.Error(t, err)
}

func TestGrammarsList(t *testing.T) {
	out, err := run(t, "grammars:list")
	require.NoError(t, err)

	var grammars []presentation.GrammarDTO
	require.NoError(t, json.Unmarshal([]byte(out), &grammars))
	var names []string
	for _, g := range grammars {
		names = append(names, g.Name)
	}
	require.Contains(t, names, "Go")
	require.Contains(t, names, "Rust")
}

func TestConfigInitAndGrammarsAdd(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")

	out, err := run(t, "--config", configFile, "config:init", "--theme")
	require.NoError(t, err)
	require.Contains(t, out, configFile)
	data, err := os.ReadFile(configFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "rules:")

	_, err = run(t, "--config", configFile, "config:init")
	require.ErrorContains(t, err, "already exists")

	grammarDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(grammarDir, "Notes.sublime-syntax"), []byte(`name: Notes
scope: text.notes
file_extensions: [notes]
contexts:
  main:
    - match: TODO
      scope: keyword.todo
`), 0o644))

	_, err = run(t, "--config", configFile, "grammars:add", grammarDir)
	require.NoError(t, err)

	out, err = run(t, "--config", configFile, "tokenize", "-f", "plain", writeFile(t, "a.notes", "TODO x\n"))
	require.NoError(t, err)
	require.Contains(t, out, "0-4\tkeyword.todo\t\"TODO\"")
}
