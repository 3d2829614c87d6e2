package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatJSON writes v as indented JSON
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatGrammars formats a list of grammars as JSON
func (f *Formatter) FormatGrammars(grammars []GrammarDTO) error {
	return f.FormatJSON(grammars)
}

// FormatSpansPlain writes one "start-end scope text" line per span, with
// the text quoted. Unscoped spans print "-" for the scope.
func (f *Formatter) FormatSpansPlain(spans []SpanDTO) error {
	for _, s := range spans {
		sc := s.Scope
		if sc == "" {
			sc = "-"
		}
		if _, err := fmt.Fprintf(f.writer, "%d-%d\t%s\t%s\n", s.Start, s.End, sc, strconv.Quote(s.Text)); err != nil {
			return err
		}
	}
	return nil
}

// FormatScopesPlain writes the scope path one scope per line, outermost
// first.
func (f *Formatter) FormatScopesPlain(path ScopePathDTO) error {
	for _, s := range path.Scopes {
		if _, err := fmt.Fprintln(f.writer, s); err != nil {
			return err
		}
	}
	return nil
}
