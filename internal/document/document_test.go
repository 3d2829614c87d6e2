package document

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scopes/internal/highlighter"
	"github.com/zjrosen/scopes/internal/syntax"
)

const grammar = `name: Test
scope: source.test
file_extensions: [t]
contexts:
  main:
    - match: '"'
      push: str
    - match: '#.*'
      scope: comment.line
    - match: '\d+'
      scope: constant.numeric
  str:
    - match: '"'
      pop: true
    - match: '[^"]+'
      scope: string
`

func mustSyntax(t *testing.T) *syntax.Syntax {
	t.Helper()
	syn, err := syntax.Parse([]byte(grammar))
	require.NoError(t, err)
	return syn
}

func fresh(t *testing.T, content string) []highlighter.Span {
	t.Helper()
	d := New(context.Background(), mustSyntax(t), content)
	return d.Spans(0, len([]rune(content)))
}

func requireSameAsFresh(t *testing.T, d *Document) {
	t.Helper()
	want := fresh(t, d.String())
	got := d.Spans(0, d.Buffer().Len())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("spans differ from a fresh parse (-want +got):\n%s", diff)
	}
}

func TestInsertReusesEarlierLines(t *testing.T) {
	ctx := context.Background()
	d := New(ctx, mustSyntax(t), "1 # one\n2 # two\n3 # three\n")
	before := d.Highlighter().Count()

	e, err := d.Insert(ctx, d.Buffer().LineToOffset(2), "42 ")
	require.NoError(t, err)
	require.Equal(t, 3, e.Inserted)
	require.Positive(t, e.Reused)
	require.Less(t, e.Reused, before)
	requireSameAsFresh(t, d)
}

func TestInsertOpensString(t *testing.T) {
	ctx := context.Background()
	d := New(ctx, mustSyntax(t), "1\n2\n3\n")

	_, err := d.Insert(ctx, 2, `"`)
	require.NoError(t, err)
	requireSameAsFresh(t, d)

	n := d.Highlighter().NodeAt(d.Buffer().Len() - 1)
	require.NotNil(t, n)
	require.Equal(t, "[main str]", n.Stack().String())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	d := New(ctx, mustSyntax(t), "\"abc\"\n12\n")

	e, err := d.Delete(ctx, 0, 1)
	require.NoError(t, err)
	require.Equal(t, Edit{Offset: 0, Deleted: 1, Reused: 0}, e)
	requireSameAsFresh(t, d)

	_, err = d.Delete(ctx, 5, 99)
	require.Error(t, err)
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name string
		old  string
		next string
		want Edit
	}{
		{name: "unchanged", old: "1\n2\n", next: "1\n2\n", want: Edit{Offset: 4}},
		{name: "append", old: "1\n", next: "1\n2\n", want: Edit{Offset: 2, Inserted: 2}},
		{name: "middle", old: "1\nabc\n3\n", next: "1\naXc\n3\n", want: Edit{Offset: 3, Deleted: 1, Inserted: 1}},
		{name: "truncate", old: "1\n2\n3\n", next: "1\n", want: Edit{Offset: 2, Deleted: 4}},
		{name: "multibyte", old: "é 1\n", next: "é 12\n", want: Edit{Offset: 3, Inserted: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			d := New(ctx, mustSyntax(t), tt.old)
			e := d.Replace(ctx, tt.next)

			require.Equal(t, tt.want.Offset, e.Offset)
			require.Equal(t, tt.want.Deleted, e.Deleted)
			require.Equal(t, tt.want.Inserted, e.Inserted)
			require.Equal(t, tt.next, d.String())
			requireSameAsFresh(t, d)
		})
	}
}

func TestReplaceUnchangedKeepsHistory(t *testing.T) {
	ctx := context.Background()
	d := New(ctx, mustSyntax(t), "1 # x\n")
	tail := d.Highlighter().Tail()

	e := d.Replace(ctx, "1 # x\n")
	require.True(t, e.Empty())
	require.Same(t, tail, d.Highlighter().Tail())
}
