package highlighter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scopes/internal/syntax"
)

func TestStack_Persistent(t *testing.T) {
	root := NewStack(syntax.Name("main"))
	pushed := root.Push(syntax.Inline(3)).Push(syntax.Name("str"))

	require.Equal(t, 1, root.Depth())
	require.Equal(t, 3, pushed.Depth())
	require.Equal(t, syntax.Name("str"), pushed.Top())
	require.Equal(t, []syntax.StackValue{syntax.Name("main"), syntax.Inline(3), syntax.Name("str")}, pushed.Values())
	require.Equal(t, "[main #anon3 str]", pushed.String())

	popped, ok := pushed.Pop()
	require.True(t, ok)
	require.Equal(t, syntax.Inline(3), popped.Top())
	require.Equal(t, 3, pushed.Depth(), "pop leaves the receiver untouched")

	same, ok := root.Pop()
	require.False(t, ok)
	require.Same(t, root, same)
}

func TestStack_Equal(t *testing.T) {
	a := NewStack(syntax.Name("main")).Push(syntax.Name("x"))
	b := NewStack(syntax.Name("main")).Push(syntax.Name("x"))
	c := NewStack(syntax.Name("main")).Push(syntax.Name("y"))

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(NewStack(syntax.Name("main"))))

	var empty *Stack
	require.True(t, empty.Equal(nil))
	require.Zero(t, empty.Depth())
	require.Nil(t, empty.Top())
}

func TestPushValue_ExpandsLists(t *testing.T) {
	s := pushValue(NewStack(syntax.Name("main")), syntax.List{syntax.Name("a"), syntax.List{syntax.Inline(0), syntax.Name("b")}})
	require.Equal(t, "[main a #anon0 b]", s.String())
}
