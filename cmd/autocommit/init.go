package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/autocommit/internal/config"
)

func initCmd(flags *globalFlags) *cobra.Command {
	var (
		apiKey    string
		threshold int
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default settings file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), flags, apiKey, threshold, force)
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key of the text generation service")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "Modifications before a commit (default: 5)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing settings file")

	return cmd
}

func runInit(out io.Writer, flags *globalFlags, apiKey string, threshold int, force bool) error {
	cfg, err := loadConfig(flags.envFile)
	if err != nil {
		return err
	}
	path := flags.settingsPath(cfg)

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("settings file %s already exists, use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("check settings file: %w", err)
	}

	settings := config.DefaultSettings()
	settings.APIKey = apiKey
	settings.RepoPath = flags.repo
	if threshold > 0 {
		settings.ModificationThreshold = threshold
	}

	if err := config.SaveSettings(path, settings); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}
