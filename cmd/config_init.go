package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/scopes/internal/config"
	"github.com/zjrosen/scopes/internal/theme"
)

var (
	configInitForce bool
	configInitTheme bool
)

var configInitCmd = &cobra.Command{
	Use:   "config:init",
	Short: "Write a default config file",
	Long: `Write a commented default config to --config, or to
~/.config/scopes/config.yaml. With --theme the built-in color rules are
written out too, ready to edit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := cfgFile
		if path == "" {
			path = configPath()
		}
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		if configInitTheme {
			if err := config.SaveThemeRules(path, theme.DefaultRules); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configInitTheme, "theme", false, "include the default theme rules")
	rootCmd.AddCommand(configInitCmd)
}
