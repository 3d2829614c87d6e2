// Package text provides the read-only, line-addressable view of a document
// that the highlighter consumes, plus a simple editable buffer implementing
// it. All offsets are character (rune) offsets.
package text

import (
	"fmt"
	"sort"
)

// Source is a document the highlighter can read.
type Source interface {
	// Len returns the number of characters in the document.
	Len() int
	// Line returns the characters from at up to and including the next
	// newline, or to the end of the document. The slice must not be
	// modified.
	Line(at int) []rune
}

// Buffer is an editable Source backed by a rune slice and a line index.
type Buffer struct {
	runes      []rune
	lineStarts []int
}

// NewBuffer returns a Buffer holding s.
func NewBuffer(s string) *Buffer {
	b := &Buffer{runes: []rune(s)}
	b.reindex()
	return b
}

// Len implements Source.
func (b *Buffer) Len() int {
	return len(b.runes)
}

// Line implements Source.
func (b *Buffer) Line(at int) []rune {
	if at < 0 || at >= len(b.runes) {
		return nil
	}
	next := b.LineIndex(at) + 1
	end := len(b.runes)
	if next < len(b.lineStarts) {
		end = b.lineStarts[next]
	}
	return b.runes[at:end:end]
}

// String returns the buffer contents.
func (b *Buffer) String() string {
	return string(b.runes)
}

// Slice returns the text in [from, to), clamped to the buffer.
func (b *Buffer) Slice(from, to int) string {
	from = clamp(from, 0, len(b.runes))
	to = clamp(to, from, len(b.runes))
	return string(b.runes[from:to])
}

// Runes returns the underlying characters. The slice must not be modified.
func (b *Buffer) Runes() []rune {
	return b.runes
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	return len(b.lineStarts)
}

// LineIndex returns the zero-based line containing offset at.
func (b *Buffer) LineIndex(at int) int {
	at = clamp(at, 0, len(b.runes))
	// Index of the last line start <= at.
	return sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > at
	}) - 1
}

// LineStart returns the offset of the first character of the line
// containing at.
func (b *Buffer) LineStart(at int) int {
	return b.lineStarts[b.LineIndex(at)]
}

// LineToOffset returns the offset at which line starts.
func (b *Buffer) LineToOffset(line int) int {
	if line <= 0 {
		return 0
	}
	if line >= len(b.lineStarts) {
		return len(b.runes)
	}
	return b.lineStarts[line]
}

// Insert inserts s at offset at.
func (b *Buffer) Insert(at int, s string) error {
	if at < 0 || at > len(b.runes) {
		return fmt.Errorf("insert at %d: out of range [0, %d]", at, len(b.runes))
	}
	ins := []rune(s)
	out := make([]rune, 0, len(b.runes)+len(ins))
	out = append(out, b.runes[:at]...)
	out = append(out, ins...)
	out = append(out, b.runes[at:]...)
	b.runes = out
	b.reindex()
	return nil
}

// Delete removes the characters in [from, to).
func (b *Buffer) Delete(from, to int) error {
	if from < 0 || to > len(b.runes) || from > to {
		return fmt.Errorf("delete [%d, %d): out of range [0, %d]", from, to, len(b.runes))
	}
	b.runes = append(b.runes[:from:from], b.runes[to:]...)
	b.reindex()
	return nil
}

// Reset replaces the whole contents.
func (b *Buffer) Reset(s string) {
	b.runes = []rune(s)
	b.reindex()
}

func (b *Buffer) reindex() {
	b.lineStarts = b.lineStarts[:0]
	b.lineStarts = append(b.lineStarts, 0)
	for i, r := range b.runes {
		if r == '\n' {
			b.lineStarts = append(b.lineStarts, i+1)
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
