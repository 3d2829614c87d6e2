package viewer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scopes/internal/document"
	"github.com/zjrosen/scopes/internal/syntax"
	"github.com/zjrosen/scopes/internal/theme"
)

const grammar = `name: Test
scope: source.test
file_extensions: [t]
contexts:
  main:
    - match: '#.*'
      scope: comment.line
    - match: '"'
      push: str
  str:
    - meta_scope: string.quoted
    - match: '"'
      pop: true
`

func newModel(t *testing.T, content string, opts ...Option) Model {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
	syn, err := syntax.Parse([]byte(grammar))
	require.NoError(t, err)
	doc := document.New(context.Background(), syn, content)
	return New(doc, theme.Default(), append([]Option{WithTitle("test.t")}, opts...)...)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func lines(n int) string {
	var b strings.Builder
	for i := range n {
		if i == 5 {
			b.WriteString("\"quoted\n")
			continue
		}
		b.WriteString("# line\n")
	}
	return b.String()
}

func TestViewBeforeSize(t *testing.T) {
	m := newModel(t, "# hi\n")
	require.Equal(t, "loading...", m.View())
}

func TestViewRendersText(t *testing.T) {
	m := newModel(t, "# hi\nplain\n")
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 5})

	view := ansi.Strip(m.View())
	require.Contains(t, view, "# hi")
	require.Contains(t, view, "plain")
	require.Contains(t, view, "test.t")
	require.Contains(t, view, "source.test comment.line")
}

func TestScrollUpdatesScopePath(t *testing.T) {
	m := newModel(t, lines(20))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 5})
	require.Equal(t, 0, m.TopOffset())

	for range 6 {
		m, _ = update(t, m, keyMsg("j"))
	}
	require.Equal(t, m.doc.Buffer().LineToOffset(6), m.TopOffset())
	require.Equal(t, "source.test string.quoted", m.ScopePath())

	m, _ = update(t, m, keyMsg("g"))
	require.Equal(t, 0, m.TopOffset())

	m, _ = update(t, m, keyMsg("G"))
	require.Positive(t, m.TopOffset())

	m, _ = update(t, m, keyMsg("k"))
	require.Positive(t, m.TopOffset())
}

func TestQuit(t *testing.T) {
	m := newModel(t, "x\n")
	_, cmd := update(t, m, keyMsg("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestReloadReusesNodes(t *testing.T) {
	changes := make(chan struct{}, 1)
	content := "# one\n# two\n"
	m := newModel(t, content, WithFollow(changes, func() (string, error) {
		return content, nil
	}))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 5})

	changes <- struct{}{}
	msg := m.Init()()
	require.Equal(t, ChangedMsg{}, msg)

	content = "# one\n# two\n# three\n"
	m, cmd := update(t, m, msg)
	require.NotNil(t, cmd)
	m, next := update(t, m, cmd())

	require.NotNil(t, next, "keeps following")
	require.Equal(t, content, m.doc.String())
	require.Contains(t, ansi.Strip(m.View()), "# three")
	require.Contains(t, m.note, "nodes reused")
}

func TestReloadError(t *testing.T) {
	changes := make(chan struct{})
	m := newModel(t, "# one\n", WithFollow(changes, func() (string, error) {
		return "", errors.New("gone")
	}))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 5})

	m, cmd := update(t, m, ChangedMsg{})
	m, _ = update(t, m, cmd())
	require.EqualError(t, m.err, "gone")
	require.Equal(t, "# one\n", m.doc.String())
	require.Contains(t, ansi.Strip(m.View()), "gone")
}

func TestFollowStopsWhenChannelCloses(t *testing.T) {
	changes := make(chan struct{})
	close(changes)
	m := newModel(t, "x\n", WithFollow(changes, func() (string, error) { return "x\n", nil }))
	require.Nil(t, m.Init()())
}

func TestProgram(t *testing.T) {
	m := newModel(t, lines(3))
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(60, 6))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("# line"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(keyMsg("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final, ok := tm.FinalModel(t).(Model)
	require.True(t, ok)
	require.True(t, final.ready)
}

func TestHelpToggle(t *testing.T) {
	m := newModel(t, lines(20))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 12})
	full := m.viewport.Height
	require.NotContains(t, ansi.Strip(m.View()), "half page down")

	m, _ = update(t, m, keyMsg("?"))
	require.Less(t, m.viewport.Height, full)
	require.Contains(t, ansi.Strip(m.View()), "half page down")

	m, _ = update(t, m, keyMsg("?"))
	require.Equal(t, full, m.viewport.Height)
}

func TestHalfPage(t *testing.T) {
	m := newModel(t, lines(40))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 11})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	require.Equal(t, 5, m.viewport.YOffset)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	require.Equal(t, 0, m.viewport.YOffset)
}
