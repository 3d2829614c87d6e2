package cmd

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zjrosen/scopes/internal/app"
	"github.com/zjrosen/scopes/internal/ui/viewer"
	"github.com/zjrosen/scopes/internal/watcher"
)

func init() {
	// Query the terminal background before the program starts so the
	// OSC 11 reply does not race with Bubble Tea's input loop.
	_ = lipgloss.HasDarkBackground()
}

var (
	viewSyntax string
	viewFollow bool
)

var viewCmd = &cobra.Command{
	Use:   "view FILE",
	Short: "Page through a highlighted file",
	Long: `Open FILE in a read-only pager. The status line shows the scope path at
the top-left visible character.

Keys: j/k scroll, g/G top/bottom, q quit.

With --follow the file is re-read whenever it changes on disk and only the
lines from the first change onward are re-highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		a, err := loadServices()
		if err != nil {
			return err
		}
		doc, err := a.Open(cmd.Context(), path, viewSyntax)
		if err != nil {
			return err
		}

		opts := []viewer.Option{viewer.WithTitle(filepath.Base(path))}
		if viewFollow {
			w, err := watcher.New(watcher.DefaultConfig(path))
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()
			changes, err := w.Start()
			if err != nil {
				return err
			}
			opts = append(opts, viewer.WithFollow(changes, func() (string, error) {
				return app.ReadFile(path)
			}))
		}

		p := tea.NewProgram(viewer.New(doc, a.Theme(), opts...), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running viewer: %w", err)
		}
		return nil
	},
}

func init() {
	viewCmd.Flags().StringVarP(&viewSyntax, "syntax", "s", "", "grammar to use, by file extension")
	viewCmd.Flags().BoolVarP(&viewFollow, "follow", "F", false, "reload when the file changes")
	rootCmd.AddCommand(viewCmd)
}
