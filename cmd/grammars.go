package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zjrosen/scopes/internal/config"
	"github.com/zjrosen/scopes/internal/presentation"
	"github.com/zjrosen/scopes/internal/registry"
)

var grammarsAll bool

var grammarsListCmd = &cobra.Command{
	Use:   "grammars:list",
	Short: "List known grammars",
	Long: `List the built-in grammars and those found in the configured grammar_dirs
as JSON. Hidden grammars are left out unless --all is given.

Examples:
  scopes grammars:list
  scopes grammars:list | jq '.[].file_extensions[]'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadServices()
		if err != nil {
			return err
		}
		var entries []registry.Entry
		for _, e := range a.Registry().List() {
			if e.Hidden && !grammarsAll {
				continue
			}
			entries = append(entries, e)
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatGrammars(presentation.FromEntries(entries))
	},
}

var grammarsAddCmd = &cobra.Command{
	Use:   "grammars:add DIR",
	Short: "Add a grammar directory to the config",
	Long: `Append DIR to grammar_dirs in the config file, creating the file if needed.
Every *.sublime-syntax below DIR is picked up on the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("%s is not a directory", args[0])
		}
		path := configPath()
		if err := config.AddGrammarDir(path, dir, cfg.GrammarDirs); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", dir, path)
		return err
	},
}

func init() {
	grammarsListCmd.Flags().BoolVarP(&grammarsAll, "all", "a", false, "include hidden grammars")
	rootCmd.AddCommand(grammarsListCmd)
	rootCmd.AddCommand(grammarsAddCmd)
}
