package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/helixml/autocommit"
	"github.com/helixml/autocommit/internal/config"
	"github.com/helixml/autocommit/internal/log"
)

// environment is the configuration shared by every subcommand.
type environment struct {
	cfg      config.AppConfig
	settings config.Settings
	logger   *slog.Logger
}

// loadEnvironment reads configuration, the settings file and sets up logging.
func loadEnvironment(flags *globalFlags) (environment, error) {
	cfg, err := loadConfig(flags.envFile)
	if err != nil {
		return environment{}, err
	}

	settings, err := config.LoadSettings(flags.settingsPath(cfg))
	if err != nil {
		return environment{}, err
	}

	return environment{
		cfg:      cfg,
		settings: settings,
		logger:   log.Configure(cfg).Slog(),
	}, nil
}

// clientOptions returns the autocommit.Option slice derived from the
// environment. Callers append entrypoint-specific options.
func clientOptions(env environment, flags *globalFlags) []autocommit.Option {
	opts := []autocommit.Option{
		autocommit.WithAppConfig(env.cfg),
		autocommit.WithSettings(env.settings),
		autocommit.WithLogger(env.logger),
	}
	if flags.repo != "" {
		opts = append(opts, autocommit.WithRepository(flags.repo))
	}
	return opts
}

// newClient creates the data directory when the history lives in the
// default SQLite file and opens the Client.
func newClient(env environment, flags *globalFlags) (*autocommit.Client, error) {
	if strings.HasPrefix(env.cfg.DBURL(), "sqlite:") {
		if err := env.cfg.EnsureDataDir(); err != nil {
			return nil, err
		}
	}

	client, err := autocommit.New(clientOptions(env, flags)...)
	if err != nil {
		return nil, fmt.Errorf("create autocommit client: %w", err)
	}
	return client, nil
}

func closeClient(client *autocommit.Client, logger *slog.Logger) {
	if err := client.Close(); err != nil {
		logger.Error("failed to close autocommit client", slog.Any("error", err))
	}
}
