package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/scopes/internal/presentation"
)

var (
	scopeSyntax string
	scopeJSON   bool
)

var scopeCmd = &cobra.Command{
	Use:   "scope FILE OFFSET",
	Short: "Print the scope path at a character offset",
	Long: `Print the full scope path at OFFSET (in characters, not bytes), outermost
first: the grammar's scope, the meta scopes of every open context, then the
scope of the span itself.

Examples:
  scopes scope main.go 120
  scopes scope --json lib.rs 0`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("offset %q: %w", args[1], err)
		}

		a, err := loadServices()
		if err != nil {
			return err
		}
		doc, err := a.Open(cmd.Context(), args[0], scopeSyntax)
		if err != nil {
			return err
		}
		if offset < 0 || offset >= doc.Buffer().Len() {
			return fmt.Errorf("offset %d out of range [0, %d)", offset, doc.Buffer().Len())
		}

		path := presentation.FromScopes(offset, doc.Highlighter().ScopesAt(offset))
		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if scopeJSON {
			return formatter.FormatJSON(path)
		}
		return formatter.FormatScopesPlain(path)
	},
}

func init() {
	scopeCmd.Flags().StringVarP(&scopeSyntax, "syntax", "s", "", "grammar to use, by file extension")
	scopeCmd.Flags().BoolVar(&scopeJSON, "json", false, "print JSON instead of one scope per line")
	rootCmd.AddCommand(scopeCmd)
}
