// Package viewer is a read-only pager over a highlighted document. It can
// follow the file on disk, re-highlighting only what changed.
package viewer

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/scopes/internal/document"
	"github.com/zjrosen/scopes/internal/keys"
	"github.com/zjrosen/scopes/internal/log"
	"github.com/zjrosen/scopes/internal/theme"
)

// ChangedMsg reports that the followed file changed on disk.
type ChangedMsg struct{}

// ReloadedMsg carries the file contents read after a change.
type ReloadedMsg struct {
	Content string
	Err     error
}

// Loader reads the current contents of the followed file.
type Loader func() (string, error)

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1E1E1E")).
			Background(lipgloss.Color("#9CDCFE"))
	statusErrStyle = statusStyle.Background(lipgloss.Color("#F44747"))
)

// Model is the viewer state.
type Model struct {
	doc   *document.Document
	theme *theme.Theme
	title string

	changes <-chan struct{}
	load    Loader

	keys     keys.ViewerKeyMap
	help     help.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int
	note     string
	err      error
}

// Option configures a Model.
type Option func(*Model)

// WithTitle sets the name shown in the status line.
func WithTitle(title string) Option {
	return func(m *Model) {
		m.title = title
	}
}

// WithFollow reloads the document through load whenever changes fires.
func WithFollow(changes <-chan struct{}, load Loader) Option {
	return func(m *Model) {
		m.changes = changes
		m.load = load
	}
}

// New creates a viewer over doc.
func New(doc *document.Document, th *theme.Theme, opts ...Option) Model {
	m := Model{doc: doc, theme: th, keys: keys.Viewer, help: help.New()}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return ChangedMsg{}
	}
}

func (m Model) reload() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		content, err := load()
		return ReloadedMsg{Content: content, Err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Down):
			m.viewport.ScrollDown(1)
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.viewport.ScrollUp(1)
			return m, nil
		case key.Matches(msg, m.keys.HalfPageDown):
			m.viewport.HalfPageDown()
			return m, nil
		case key.Matches(msg, m.keys.HalfPageUp):
			m.viewport.HalfPageUp()
			return m, nil
		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, 1)
			m.ready = true
		}
		m.resize()
		m.render()
		return m, nil

	case ChangedMsg:
		if m.load == nil {
			return m, nil
		}
		return m, m.reload()

	case ReloadedMsg:
		if msg.Err != nil {
			log.ErrorErr(log.CatUI, "Reload failed", msg.Err)
			m.err = msg.Err
			return m, m.waitForChange()
		}
		m.err = nil
		edit := m.doc.Replace(context.Background(), msg.Content)
		if !edit.Empty() {
			m.note = fmt.Sprintf("reloaded, %d nodes reused", edit.Reused)
			log.Debug(log.CatUI, "Reloaded", "offset", edit.Offset, "reused", edit.Reused)
			m.render()
		}
		return m, m.waitForChange()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// resize gives the viewport whatever the status line and help leave.
func (m *Model) resize() {
	if !m.ready {
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-1-m.helpHeight(), 1)
}

func (m Model) helpHeight() int {
	if !m.help.ShowAll {
		return 0
	}
	return lipgloss.Height(m.help.View(m.keys))
}

func (m *Model) render() {
	if !m.ready {
		return
	}
	buf := m.doc.Buffer()
	spans := m.doc.Spans(0, buf.Len())
	m.viewport.SetContent(m.theme.Render(context.Background(), buf.Runes(), spans))
}

// TopOffset returns the character offset of the first visible line.
func (m Model) TopOffset() int {
	return m.doc.Buffer().LineToOffset(m.viewport.YOffset)
}

// ScopePath returns the scope path at the top-left visible character.
func (m Model) ScopePath() string {
	path := m.doc.Highlighter().ScopesAt(m.TopOffset())
	names := make([]string, len(path))
	for i, s := range path {
		names[i] = s.String()
	}
	return strings.Join(names, " ")
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	view := m.viewport.View() + "\n" + m.statusLine()
	if m.help.ShowAll {
		view += "\n" + m.help.View(m.keys)
	}
	return view
}

func (m Model) statusLine() string {
	style := statusStyle
	left := m.title
	if m.err != nil {
		style = statusErrStyle
		left += "  " + m.err.Error()
	} else if m.note != "" {
		left += "  " + m.note
	}
	right := fmt.Sprintf("%d%%  %s", int(m.viewport.ScrollPercent()*100), m.ScopePath())

	gap := m.width - runewidth.StringWidth(left) - runewidth.StringWidth(right) - 2
	line := " " + left + strings.Repeat(" ", max(gap, 1)) + right + " "
	return style.Render(runewidth.Truncate(line, max(m.width, 0), ""))
}
