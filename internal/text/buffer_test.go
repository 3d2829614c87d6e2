package text

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer_Line(t *testing.T) {
	b := NewBuffer("ab\ncd\n\nλx")

	require.Equal(t, 9, b.Len()) // λ is one character
	require.Equal(t, "ab\n", string(b.Line(0)))
	require.Equal(t, "b\n", string(b.Line(1)))
	require.Equal(t, "cd\n", string(b.Line(3)))
	require.Equal(t, "\n", string(b.Line(6)))
	require.Equal(t, "λx", string(b.Line(7)))
	require.Equal(t, "x", string(b.Line(8)))
	require.Nil(t, b.Line(9))
	require.Nil(t, b.Line(-1))
}

func TestBuffer_LineIndex(t *testing.T) {
	b := NewBuffer("ab\ncd\n")

	require.Equal(t, 3, b.LineCount())
	require.Equal(t, 0, b.LineIndex(0))
	require.Equal(t, 0, b.LineIndex(2))
	require.Equal(t, 1, b.LineIndex(3))
	require.Equal(t, 2, b.LineIndex(6))
	require.Equal(t, 3, b.LineStart(5))
	require.Equal(t, 6, b.LineStart(6))
	require.Equal(t, 3, b.LineToOffset(1))
	require.Equal(t, 6, b.LineToOffset(10))
	require.Equal(t, 0, b.LineToOffset(-1))
}

func TestBuffer_InsertDelete(t *testing.T) {
	b := NewBuffer("hello\nworld")
	line := b.Line(6)

	require.NoError(t, b.Insert(5, ", there"))
	require.Equal(t, "hello, there\nworld", b.String())
	require.Equal(t, 2, b.LineCount())
	require.Equal(t, "world", string(line), "earlier Line slices stay valid")

	require.NoError(t, b.Delete(0, 7))
	require.Equal(t, "there\nworld", b.String())
	require.Equal(t, 6, b.LineStart(8))

	require.Error(t, b.Insert(100, "x"))
	require.Error(t, b.Delete(3, 2))
	require.Error(t, b.Delete(0, 100))
}

func TestBuffer_SliceAndReset(t *testing.T) {
	b := NewBuffer("abcdef")
	require.Equal(t, "bcd", b.Slice(1, 4))
	require.Equal(t, "ef", b.Slice(4, 100))
	require.Equal(t, "", b.Slice(5, 2))

	b.Reset("x\ny")
	require.Equal(t, 2, b.LineCount())
	require.Equal(t, []rune("x\ny"), b.Runes())
}

func TestBuffer_Empty(t *testing.T) {
	b := NewBuffer("")
	require.Equal(t, 0, b.Len())
	require.Equal(t, 1, b.LineCount())
	require.Equal(t, 0, b.LineStart(0))
	require.Nil(t, b.Line(0))
}
