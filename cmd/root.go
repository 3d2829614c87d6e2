package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/scopes/internal/app"
	"github.com/zjrosen/scopes/internal/config"
	"github.com/zjrosen/scopes/internal/log"
	"github.com/zjrosen/scopes/internal/paths"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	colorMode string
	cfg       config.Config

	// services is built lazily by commands that need grammars.
	services   *app.App
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "scopes",
	Short: "Scope-based syntax highlighting from Sublime grammars",
	Long: `scopes tokenizes source files with .sublime-syntax grammars, assigning
every character a scope such as comment.line or string.quoted.double.

It can print the spans as JSON, render them as colored text, report the full
scope path at an offset, or page through a file and follow it as it changes.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .scopes/config.yaml, then ~/.config/scopes/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also SCOPES_DEBUG=1)")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto",
		`color output: "auto", "always" or "never"`)
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("highlighter.max_stack_depth", defaults.Highlighter.MaxStackDepth)
	viper.SetDefault("highlighter.max_include_depth", defaults.Highlighter.MaxIncludeDepth)
	viper.SetDefault("highlighter.tie_break", defaults.Highlighter.TieBreak)
	viper.SetDefault("highlighter.match_timeout", defaults.Highlighter.MatchTimeout)
	viper.SetDefault("theme.default_foreground", defaults.Theme.DefaultForeground)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	viper.SetDefault("log_path", defaults.LogPath)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .scopes/config.yaml (current directory)
		// 2. ~/.config/scopes/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			viper.AddConfigPath(paths.ConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// A missing config file is fine: defaults apply.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

const localConfigPath = ".scopes/config.yaml"

// configPath returns the config file in use, or where a new one goes.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			return used
		}
	}
	if cfgFile != "" {
		return cfgFile
	}
	if dir := paths.ConfigDir(); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return localConfigPath
}

func setup(cmd *cobra.Command, _ []string) error {
	if debugFlag || os.Getenv("SCOPES_DEBUG") != "" || cfg.Debug {
		logPath := os.Getenv("SCOPES_LOG")
		if logPath == "" {
			logPath = cfg.LogPath
		}
		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "scopes starting", "version", version, "config", viper.ConfigFileUsed())
	}

	switch colorMode {
	case "auto", "":
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		return fmt.Errorf(`--color must be "auto", "always" or "never", got %q`, colorMode)
	}
	return nil
}

// loadServices builds the grammar registry and theme on first use.
func loadServices() (*app.App, error) {
	if services != nil {
		return services, nil
	}
	a, err := app.New(cfg, filepath.Dir(configPath()))
	if err != nil {
		return nil, err
	}
	services = a
	return a, nil
}

func teardown(ctx context.Context) {
	if services != nil {
		if err := services.Close(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Flushing traces failed", err)
		}
		services = nil
	}
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	teardown(context.Background())
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
