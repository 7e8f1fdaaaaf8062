package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/helixml/autocommit/infrastructure/api"
	"github.com/helixml/autocommit/internal/config"
)

const shutdownTimeout = 10 * time.Second

func watchCmd(flags *globalFlags) *cobra.Command {
	var (
		host       string
		port       int
		disableAPI bool
	)

	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"serve"},
		Short:   "Watch the repository and commit automatically",
		Long: `Watch the repository and commit once the modification threshold is reached.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         API host to bind to (default: 127.0.0.1)
  PORT                         API port to listen on (default: 8765)
  DISABLE_API                  Do not start the HTTP API (default: false)
  DATA_DIR                     Data directory (default: ~/.autocommit)
  DB_URL                       Database URL (default: sqlite:///{data_dir}/autocommit.db)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  SETTINGS_PATH                Settings file (default: .autocommit/settings.json)
  DEBOUNCE_MS                  Event batching window (default: 500)
  STEP_TIMEOUT_SECONDS         Timeout of each git step (default: 30)
  GENERATION_TIMEOUT_SECONDS   Timeout of message generation (default: 60)
  HTTP_CACHE_DIR               Cache generation responses on disk

  PROVIDER                     Text generation backend: gemini, openai (default: gemini)
  MODEL                        Model identifier
  BASE_URL                     Service URL override
  API_KEY                      API key, overrides the settings file
  TIMEOUT                      Request timeout in seconds (default: 60)
  MAX_RETRIES                  Retry attempts per generation (default: 0)
  INITIAL_DELAY                First retry delay in seconds (default: 2)
  BACKOFF_FACTOR               Retry delay multiplier (default: 2)`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), flags, host, port, disableAPI)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "API host to bind to (default: 127.0.0.1)")
	cmd.Flags().IntVar(&port, "port", 0, "API port to listen on (default: 8765)")
	cmd.Flags().BoolVar(&disableAPI, "no-api", false, "Do not start the HTTP API")

	return cmd
}

func runWatch(parent context.Context, flags *globalFlags, host string, port int, disableAPI bool) error {
	env, err := loadEnvironment(flags)
	if err != nil {
		return err
	}
	env.cfg = applyWatchOverrides(env.cfg, host, port, disableAPI)
	logger := env.logger

	attrs := append([]slog.Attr{slog.String("version", version)}, env.cfg.LogAttrs()...)
	logger.LogAttrs(parent, slog.LevelInfo, "starting autocommit", attrs...)

	client, err := newClient(env, flags)
	if err != nil {
		return err
	}
	defer closeClient(client, logger)

	watcher, err := client.Watcher()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(ctx)
	})

	if !env.cfg.DisableAPI() {
		apiServer := api.NewAPIServer(client)
		g.Go(func() error {
			return apiServer.ListenAndServe(env.cfg.Addr())
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return apiServer.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("stopping, waiting for in-flight commits")
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

// applyWatchOverrides applies command line flag overrides to the config.
func applyWatchOverrides(cfg config.AppConfig, host string, port int, disableAPI bool) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}
	if disableAPI {
		opts = append(opts, config.WithDisableAPI(true))
	}

	return cfg.Apply(opts...)
}
