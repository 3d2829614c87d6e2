package presentation

import (
	"github.com/zjrosen/scopes/internal/highlighter"
	"github.com/zjrosen/scopes/internal/registry"
	"github.com/zjrosen/scopes/internal/scope"
	"github.com/zjrosen/scopes/internal/text"
)

// SpanDTO represents one highlighted span for presentation
type SpanDTO struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Scope string `json:"scope"` // empty for unscoped text
	Text  string `json:"text"`
}

// ErrorDTO represents a recovered tokenizer error
type ErrorDTO struct {
	Kind    string `json:"kind"`
	Offset  int    `json:"offset"`
	Context string `json:"context"`
}

// TokenizeResultDTO is the output of tokenizing one file
type TokenizeResultDTO struct {
	File    string     `json:"file"`
	Grammar string     `json:"grammar"`
	Spans   []SpanDTO  `json:"spans"`
	Errors  []ErrorDTO `json:"errors,omitempty"`
}

// ScopePathDTO is the scope path at one offset, outermost first
type ScopePathDTO struct {
	Offset int      `json:"offset"`
	Scopes []string `json:"scopes"`
}

// GrammarDTO represents a discovered grammar
type GrammarDTO struct {
	Name           string   `json:"name"`
	Scope          string   `json:"scope"`
	FileExtensions []string `json:"file_extensions"`
	FirstLineMatch string   `json:"first_line_match,omitempty"`
	Hidden         bool     `json:"hidden,omitempty"`
	Source         string   `json:"source"`
	Path           string   `json:"path"`
}

// FromSpans converts spans over buf to DTOs.
func FromSpans(buf *text.Buffer, spans []highlighter.Span) []SpanDTO {
	out := make([]SpanDTO, len(spans))
	for i, s := range spans {
		out[i] = SpanDTO{
			Start: s.Start,
			End:   s.End,
			Scope: scope.String(s.Scope),
			Text:  buf.Slice(s.Start, s.End),
		}
	}
	return out
}

// FromErrors converts runtime errors to DTOs.
func FromErrors(errs []highlighter.RuntimeError) []ErrorDTO {
	if len(errs) == 0 {
		return nil
	}
	out := make([]ErrorDTO, len(errs))
	for i, e := range errs {
		out[i] = ErrorDTO{Kind: e.Kind.String(), Offset: e.Offset, Context: e.Context}
	}
	return out
}

// FromScopes converts a scope path to a DTO.
func FromScopes(offset int, path []scope.Scope) ScopePathDTO {
	scopes := make([]string, len(path))
	for i, s := range path {
		scopes[i] = s.String()
	}
	return ScopePathDTO{Offset: offset, Scopes: scopes}
}

// FromEntries converts registry entries to DTOs.
func FromEntries(entries []registry.Entry) []GrammarDTO {
	out := make([]GrammarDTO, len(entries))
	for i, e := range entries {
		exts := e.FileExtensions
		if exts == nil {
			exts = []string{}
		}
		out[i] = GrammarDTO{
			Name:           e.Name,
			Scope:          e.Scope,
			FileExtensions: exts,
			FirstLineMatch: e.FirstLineMatch,
			Hidden:         e.Hidden,
			Source:         e.Source,
			Path:           e.Path,
		}
	}
	return out
}
