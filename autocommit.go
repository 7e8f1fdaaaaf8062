// Package autocommit watches a Git working tree and commits on the
// developer's behalf once enough modifications have accumulated, with a
// commit message written by a text generation service.
//
// Basic usage:
//
//	client, err := autocommit.New(
//	    autocommit.WithSQLite(".autocommit/history.db"),
//	    autocommit.WithRepository("."),
//	    autocommit.WithSettings(settings),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	w, err := client.Watcher()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = w.Run(ctx)
package autocommit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/helixml/autocommit/application/service"
	"github.com/helixml/autocommit/domain/change"
	"github.com/helixml/autocommit/domain/commit"
	"github.com/helixml/autocommit/infrastructure/git"
	"github.com/helixml/autocommit/infrastructure/persistence"
	"github.com/helixml/autocommit/infrastructure/provider"
	"github.com/helixml/autocommit/infrastructure/watch"
	"github.com/helixml/autocommit/internal/config"
	"github.com/helixml/autocommit/internal/database"
)

var (
	// ErrNoDatabase is returned by New when no database was configured.
	ErrNoDatabase = errors.New("no database configured")
	// ErrClientClosed is returned when the Client has been closed.
	ErrClientClosed = errors.New("client closed")
)

// Client is the main entry point. It owns the modification counter, the
// commit pipeline and the history database.
type Client struct {
	db        database.Database
	attempts  persistence.AttemptStore
	gateway   *git.Gateway
	generator *service.MessageGenerator
	tracker   *change.Tracker
	pipeline  *service.Pipeline
	session   *service.Session
	closers   []io.Closer

	logger   *slog.Logger
	start    string
	apiKey   string
	debounce time.Duration
	closed   atomic.Bool
	mu       sync.RWMutex
}

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.dbURL == "" {
		return nil, ErrNoDatabase
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, cfg.dbURL, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	apiKey := cfg.settings.WithAPIKeyOverride(cfg.endpoint.APIKey()).APIKey

	closers := cfg.closers
	textProvider := cfg.textProvider
	if textProvider == nil {
		built, closer, err := buildTextProvider(cfg, apiKey)
		if err != nil {
			errClose := db.Close()
			return nil, errors.Join(err, errClose)
		}
		textProvider = built
		closers = append(closers, closer)
	}

	gatewayOpts := []git.GatewayOption{}
	if cfg.executor != nil {
		gatewayOpts = append(gatewayOpts, git.WithExecutor(cfg.executor))
	}
	gateway := git.NewGateway(logger, gatewayOpts...)

	generator := service.NewMessageGenerator(textProvider, logger,
		service.WithAPIKey(apiKey),
		service.WithBasePrompt(cfg.settings.BaseCommitMessage),
	)
	attempts := persistence.NewAttemptStore(db)
	tracker := change.NewTracker(cfg.settings.ModificationThreshold)
	pipeline := service.NewPipeline(cfg.start, gateway, generator, tracker, logger,
		service.WithStepTimeout(cfg.stepTimeout),
		service.WithGenerationTimeout(cfg.generationTimeout),
		service.WithRecorder(attempts),
	)

	client := &Client{
		db:        db,
		attempts:  attempts,
		gateway:   gateway,
		generator: generator,
		tracker:   tracker,
		pipeline:  pipeline,
		session:   service.NewSession(tracker, pipeline, logger),
		closers:   closers,
		logger:    logger,
		start:     cfg.start,
		apiKey:    apiKey,
		debounce:  cfg.debounce,
	}

	if apiKey == "" {
		logger.Warn("no API key configured, commits will fail until one is set")
	}
	return client, nil
}

func buildTextProvider(cfg *clientConfig, apiKey string) (provider.TextGenerator, io.Closer, error) {
	var transport http.RoundTripper
	if cfg.httpCacheDir != "" {
		cache, err := provider.NewCachingTransport(cfg.httpCacheDir, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("create response cache: %w", err)
		}
		transport = cache
	}

	e := cfg.endpoint
	switch e.Provider() {
	case config.ProviderOpenAI:
		p := provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:        apiKey,
			BaseURL:       e.BaseURL(),
			ChatModel:     e.Model(),
			Timeout:       e.Timeout(),
			MaxRetries:    e.MaxRetries(),
			InitialDelay:  e.InitialDelay(),
			BackoffFactor: e.BackoffFactor(),
			Transport:     transport,
		})
		return p, p, nil
	default:
		p := provider.NewGeminiProvider(provider.GeminiConfig{
			APIKey:        apiKey,
			BaseURL:       e.BaseURL(),
			Model:         e.Model(),
			Timeout:       e.Timeout(),
			MaxRetries:    e.MaxRetries(),
			InitialDelay:  e.InitialDelay(),
			BackoffFactor: e.BackoffFactor(),
			Transport:     transport,
		})
		return p, p, nil
	}
}

// Notify records one batch of changed paths. A background commit starts
// once the modification threshold is reached.
func (c *Client) Notify(ctx context.Context, paths []string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed.Load() {
		return
	}
	c.session.Notify(ctx, paths)
}

// CommitNow runs one commit synchronously, regardless of the counter.
func (c *Client) CommitNow(ctx context.Context) (commit.Attempt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed.Load() {
		return commit.Attempt{}, ErrClientClosed
	}
	return c.session.CommitNow(ctx)
}

// Status returns the current counter state.
func (c *Client) Status() service.Status {
	return c.session.Status()
}

// Recent returns up to limit recorded attempts, newest first.
func (c *Client) Recent(ctx context.Context, limit int) ([]commit.Attempt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	return c.attempts.Recent(ctx, limit)
}

// Root resolves the repository root.
func (c *Client) Root() (string, error) {
	return c.pipeline.Root()
}

// ApplySettings updates the base prompt and the threshold. The API key is
// fixed for the lifetime of the Client.
func (c *Client) ApplySettings(s config.Settings) {
	s = s.Normalize()
	c.generator.Configure(c.apiKey, s.BaseCommitMessage)
	c.session.SetThreshold(s.ModificationThreshold)
}

// Watcher returns a filesystem watcher over the repository root that reports
// to this Client. Paths ignored by git are skipped.
func (c *Client) Watcher() (*watch.Watcher, error) {
	root, err := c.Root()
	if err != nil {
		return nil, fmt.Errorf("resolve repository root: %w", err)
	}
	filter, err := git.NewIgnorePattern(root)
	if err != nil {
		return nil, fmt.Errorf("load ignore patterns: %w", err)
	}
	return watch.New(root, c,
		watch.WithFilter(filter),
		watch.WithDebounce(c.debounce),
		watch.WithLogger(c.logger),
	), nil
}

// Wait blocks until background commits have finished.
func (c *Client) Wait() {
	c.session.Wait()
}

// Close waits for in-flight commits and releases all resources. Calls that
// started before Close finish first; later calls see the Client as closed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.Wait()

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}
