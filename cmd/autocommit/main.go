// Package main is the entry point for the autocommit CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/autocommit/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFile  string
	settings string
	repo     string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "autocommit",
		Short: "Commit a Git working tree automatically",
		Long: `autocommit watches a Git working tree and commits on your behalf once
enough modifications have accumulated. The commit message is written by a
text generation service (Gemini by default) from the pending diff.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.PersistentFlags().StringVar(&flags.settings, "settings", "", "Path to settings file (default: .autocommit/settings.json)")
	cmd.PersistentFlags().StringVar(&flags.repo, "repo", "", "Path inside the repository to watch (default: settings repoPath or current directory)")

	cmd.AddCommand(watchCmd(flags))
	cmd.AddCommand(commitCmd(flags))
	cmd.AddCommand(statusCmd(flags))
	cmd.AddCommand(historyCmd(flags))
	cmd.AddCommand(initCmd(flags))
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// settingsPath returns the flag value, falling back to the configured path.
func (f *globalFlags) settingsPath(cfg config.AppConfig) string {
	if f.settings != "" {
		return f.settings
	}
	return cfg.SettingsPath()
}
