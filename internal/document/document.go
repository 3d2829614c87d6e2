// Package document couples an editable text buffer with its highlighter and
// keeps the two in step across edits.
package document

import (
	"context"
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/scopes/internal/highlighter"
	"github.com/zjrosen/scopes/internal/log"
	"github.com/zjrosen/scopes/internal/syntax"
	"github.com/zjrosen/scopes/internal/text"
)

// Edit describes one change applied to a Document.
type Edit struct {
	// Offset is where the change starts.
	Offset int
	// Deleted and Inserted are character counts.
	Deleted  int
	Inserted int
	// Reused is how many highlight nodes survived the change.
	Reused int
}

// Empty reports whether the edit changed nothing.
func (e Edit) Empty() bool {
	return e.Deleted == 0 && e.Inserted == 0
}

// Document is a buffer whose highlighting is refreshed after every edit,
// re-tokenizing only from the first edited line. It is not safe for
// concurrent use.
type Document struct {
	buf *text.Buffer
	hl  *highlighter.Highlighter
	dmp *diffmatchpatch.DiffMatchPatch
}

// New returns a Document holding content, already highlighted.
func New(ctx context.Context, syn *syntax.Syntax, content string, opts ...highlighter.Option) *Document {
	d := &Document{
		buf: text.NewBuffer(content),
		hl:  highlighter.New(syn, opts...),
		dmp: diffmatchpatch.New(),
	}
	d.hl.ParseContext(ctx, d.buf)
	return d
}

// Buffer returns the underlying text.
func (d *Document) Buffer() *text.Buffer { return d.buf }

// Highlighter returns the highlighter tracking the buffer.
func (d *Document) Highlighter() *highlighter.Highlighter { return d.hl }

// String returns the document text.
func (d *Document) String() string { return d.buf.String() }

// Spans returns the highlighted spans overlapping [from, to).
func (d *Document) Spans(from, to int) []highlighter.Span {
	return d.hl.Spans(from, to)
}

// Insert inserts s at offset at and re-highlights.
func (d *Document) Insert(ctx context.Context, at int, s string) (Edit, error) {
	if err := d.buf.Insert(at, s); err != nil {
		return Edit{}, fmt.Errorf("document insert: %w", err)
	}
	e := Edit{Offset: at, Inserted: len([]rune(s))}
	e.Reused = d.refresh(ctx, at)
	return e, nil
}

// Delete removes [from, to) and re-highlights.
func (d *Document) Delete(ctx context.Context, from, to int) (Edit, error) {
	if err := d.buf.Delete(from, to); err != nil {
		return Edit{}, fmt.Errorf("document delete: %w", err)
	}
	e := Edit{Offset: from, Deleted: to - from}
	e.Reused = d.refresh(ctx, from)
	return e, nil
}

// Replace swaps the whole text for next, applying it as the single edit
// between the common prefix and suffix of the old and new text. An
// unchanged text costs no parsing.
func (d *Document) Replace(ctx context.Context, next string) Edit {
	old := d.buf.Runes()
	nr := []rune(next)

	prefix := d.dmp.DiffCommonPrefix(string(old), next)
	if prefix == len(old) && prefix == len(nr) {
		return Edit{Offset: prefix, Reused: d.hl.Count()}
	}
	suffix := d.dmp.DiffCommonSuffix(string(old[prefix:]), string(nr[prefix:]))

	e := Edit{
		Offset:   prefix,
		Deleted:  len(old) - prefix - suffix,
		Inserted: len(nr) - prefix - suffix,
	}
	d.buf.Reset(next)
	e.Reused = d.refresh(ctx, prefix)
	return e
}

// refresh invalidates the history from the start of the line holding at and
// re-parses. It returns the number of reused nodes.
func (d *Document) refresh(ctx context.Context, at int) int {
	d.hl.MarkDirty(d.buf.LineStart(at))
	d.hl.ParseContext(ctx, d.buf)
	log.Debug(log.CatTokenizer, "Document refreshed",
		"offset", at, "reused", d.hl.Reused(), "nodes", d.hl.Count())
	return d.hl.Reused()
}
