package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/scopes/internal/presentation"
)

var (
	tokenizeSyntax string
	tokenizeFormat string
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize FILE",
	Short: "Print the highlighted spans of a file",
	Long: `Tokenize FILE and print its spans.

The grammar is chosen by --syntax, else by the file extension, else by the
grammars' first_line_match. Use "-" to read standard input (with --syntax).

Formats:
  json   spans with offsets, scope and text, plus any recovered errors
  plain  one "start-end<TAB>scope<TAB>text" line per span
  ansi   the file rendered with the configured theme

Examples:
  scopes tokenize main.go
  scopes tokenize --format plain lib.rs
  cat main.go | scopes tokenize --syntax go --format ansi -
  scopes tokenize main.go | jq '.spans[] | select(.scope | startswith("comment"))'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadServices()
		if err != nil {
			return err
		}
		path := args[0]
		doc, err := a.Open(cmd.Context(), path, tokenizeSyntax)
		if err != nil {
			return err
		}

		buf := doc.Buffer()
		spans := doc.Spans(0, buf.Len())
		formatter := presentation.NewFormatter(cmd.OutOrStdout())

		switch tokenizeFormat {
		case "json":
			return formatter.FormatJSON(presentation.TokenizeResultDTO{
				File:    path,
				Grammar: doc.Highlighter().Syntax().Name,
				Spans:   presentation.FromSpans(buf, spans),
				Errors:  presentation.FromErrors(doc.Highlighter().Errors()),
			})
		case "plain":
			return formatter.FormatSpansPlain(presentation.FromSpans(buf, spans))
		case "ansi":
			_, err := fmt.Fprint(cmd.OutOrStdout(), a.Theme().Render(cmd.Context(), buf.Runes(), spans))
			return err
		default:
			return fmt.Errorf(`--format must be "json", "plain" or "ansi", got %q`, tokenizeFormat)
		}
	},
}

func init() {
	tokenizeCmd.Flags().StringVarP(&tokenizeSyntax, "syntax", "s", "", "grammar to use, by file extension (e.g. go, rs)")
	tokenizeCmd.Flags().StringVarP(&tokenizeFormat, "format", "f", "json", `output format: "json", "plain" or "ansi"`)
	rootCmd.AddCommand(tokenizeCmd)
}
