package autocommit

import (
	"io"
	"log/slog"
	"time"

	"github.com/helixml/autocommit/infrastructure/git"
	"github.com/helixml/autocommit/infrastructure/provider"
	"github.com/helixml/autocommit/internal/config"
	"github.com/helixml/autocommit/internal/database"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	dbURL             string
	start             string
	settings          config.Settings
	endpoint          config.Endpoint
	textProvider      provider.TextGenerator
	executor          git.Executor
	logger            *slog.Logger
	httpCacheDir      string
	debounce          time.Duration
	stepTimeout       time.Duration
	generationTimeout time.Duration
	closers           []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		start:             ".",
		settings:          config.DefaultSettings(),
		endpoint:          config.NewEndpoint(),
		debounce:          config.DefaultDebounce,
		stepTimeout:       config.DefaultStepTimeout,
		generationTimeout: config.DefaultGenerationTimeout,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite stores commit history in the SQLite file at path.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = database.SQLiteURL(path)
	}
}

// WithDatabaseURL stores commit history at a sqlite:/// or postgres:// URL.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithRepository sets the path the repository root is resolved from.
func WithRepository(path string) Option {
	return func(c *clientConfig) {
		if path != "" {
			c.start = path
		}
	}
}

// WithSettings sets the API key, base prompt and threshold. A settings
// RepoPath, when present, becomes the repository path.
func WithSettings(s config.Settings) Option {
	return func(c *clientConfig) {
		c.settings = s.Normalize()
		if s.RepoPath != "" {
			c.start = s.RepoPath
		}
	}
}

// WithEndpoint selects and configures the text generation service.
func WithEndpoint(e config.Endpoint) Option {
	return func(c *clientConfig) {
		c.endpoint = e
	}
}

// WithTextProvider uses p instead of building a provider from the endpoint.
func WithTextProvider(p provider.TextGenerator) Option {
	return func(c *clientConfig) {
		c.textProvider = p
	}
}

// WithExecutor replaces the process executor used to run git.
func WithExecutor(e git.Executor) Option {
	return func(c *clientConfig) {
		c.executor = e
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithHTTPCacheDir caches generation responses on disk.
func WithHTTPCacheDir(dir string) Option {
	return func(c *clientConfig) {
		c.httpCacheDir = dir
	}
}

// WithDebounce sets the window that groups filesystem events.
func WithDebounce(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithStepTimeout bounds each git step of a commit.
func WithStepTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.stepTimeout = d
		}
	}
}

// WithGenerationTimeout bounds message generation.
func WithGenerationTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.generationTimeout = d
		}
	}
}

// WithCloser registers a resource closed with the Client.
func WithCloser(closer io.Closer) Option {
	return func(c *clientConfig) {
		c.closers = append(c.closers, closer)
	}
}

// WithAppConfig applies the database, endpoint, cache and timeout settings of cfg.
func WithAppConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.dbURL = cfg.DBURL()
		c.endpoint = cfg.Endpoint()
		c.httpCacheDir = cfg.HTTPCacheDir()
		c.debounce = cfg.Debounce()
		c.stepTimeout = cfg.StepTimeout()
		c.generationTimeout = cfg.GenerationTimeout()
	}
}
