// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost                  = "127.0.0.1"
	DefaultPort                  = 8765
	DefaultLogLevel              = "INFO"
	DefaultSettingsPath          = ".autocommit/settings.json"
	DefaultDebounce              = 500 * time.Millisecond
	DefaultStepTimeout           = 30 * time.Second
	DefaultGenerationTimeout     = 60 * time.Second
	DefaultEndpointTimeout       = 60 * time.Second
	DefaultEndpointMaxRetries    = 0
	DefaultEndpointInitialDelay  = 2 * time.Second
	DefaultEndpointBackoffFactor = 2.0
	databaseFile                 = "autocommit.db"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Provider names the text generation backend.
type Provider string

// Provider values.
const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Endpoint configures the text generation service.
type Endpoint struct {
	provider      Provider
	baseURL       string
	model         string
	apiKey        string
	timeout       time.Duration
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		provider:      ProviderGemini,
		timeout:       DefaultEndpointTimeout,
		maxRetries:    DefaultEndpointMaxRetries,
		initialDelay:  DefaultEndpointInitialDelay,
		backoffFactor: DefaultEndpointBackoffFactor,
	}
}

// Provider returns the backend name.
func (e Endpoint) Provider() Provider { return e.provider }

// BaseURL returns the base URL override, if any.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the model identifier. Empty selects the provider default.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key set through the environment.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the HTTP request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum retry count.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the initial retry delay.
func (e Endpoint) InitialDelay() time.Duration { return e.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (e Endpoint) BackoffFactor() float64 { return e.backoffFactor }

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithProvider sets the backend.
func WithProvider(p Provider) EndpointOption {
	return func(e *Endpoint) { e.provider = p }
}

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithModel sets the model.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) { e.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) EndpointOption {
	return func(e *Endpoint) { e.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.initialDelay = d }
}

// WithBackoffFactor sets the retry backoff multiplier.
func WithBackoffFactor(f float64) EndpointOption {
	return func(e *Endpoint) { e.backoffFactor = f }
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host              string
	port              int
	dataDir           string
	dbURL             string
	logLevel          string
	logFormat         LogFormat
	disableAPI        bool
	settingsPath      string
	debounce          time.Duration
	stepTimeout       time.Duration
	generationTimeout time.Duration
	endpoint          Endpoint
	httpCacheDir      string
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".autocommit"
	}
	return filepath.Join(home, ".autocommit")
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:              DefaultHost,
		port:              DefaultPort,
		dataDir:           dataDir,
		dbURL:             defaultDBURL(dataDir),
		logLevel:          DefaultLogLevel,
		logFormat:         LogFormatPretty,
		settingsPath:      DefaultSettingsPath,
		debounce:          DefaultDebounce,
		stepTimeout:       DefaultStepTimeout,
		generationTimeout: DefaultGenerationTimeout,
		endpoint:          NewEndpoint(),
	}
}

func defaultDBURL(dataDir string) string {
	return "sqlite:///" + filepath.Join(dataDir, databaseFile)
}

// Host returns the API host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the API port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// DisableAPI reports whether the HTTP API is turned off.
func (c AppConfig) DisableAPI() bool { return c.disableAPI }

// SettingsPath returns the settings file path.
func (c AppConfig) SettingsPath() string { return c.settingsPath }

// Debounce returns the window that groups filesystem events into one batch.
func (c AppConfig) Debounce() time.Duration { return c.debounce }

// StepTimeout returns the per-step timeout of git operations.
func (c AppConfig) StepTimeout() time.Duration { return c.stepTimeout }

// GenerationTimeout returns the timeout of message generation.
func (c AppConfig) GenerationTimeout() time.Duration { return c.generationTimeout }

// Endpoint returns the text generation endpoint.
func (c AppConfig) Endpoint() Endpoint { return c.endpoint }

// HTTPCacheDir returns the on-disk response cache directory, or empty.
func (c AppConfig) HTTPCacheDir() string { return c.httpCacheDir }

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return nil
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the API host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the API port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory. A default database URL follows it.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		if c.dbURL == "" || c.dbURL == defaultDBURL(c.dataDir) {
			c.dbURL = defaultDBURL(dir)
		}
		c.dataDir = dir
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithDisableAPI turns the HTTP API off.
func WithDisableAPI(disabled bool) AppConfigOption {
	return func(c *AppConfig) { c.disableAPI = disabled }
}

// WithSettingsPath sets the settings file path.
func WithSettingsPath(path string) AppConfigOption {
	return func(c *AppConfig) { c.settingsPath = path }
}

// WithDebounce sets the event batching window.
func WithDebounce(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithStepTimeout sets the per-step git timeout.
func WithStepTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.stepTimeout = d
		}
	}
}

// WithGenerationTimeout sets the message generation timeout.
func WithGenerationTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.generationTimeout = d
		}
	}
}

// WithEndpoint sets the text generation endpoint.
func WithEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.endpoint = e }
}

// WithHTTPCacheDir enables the on-disk response cache.
func WithHTTPCacheDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.httpCacheDir = dir }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	return NewAppConfig().Apply(opts...)
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes describing the configuration. The API key
// is reported only as present or absent.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("settings", c.settingsPath),
		slog.String("addr", c.Addr()),
		slog.Bool("api_disabled", c.disableAPI),
		slog.String("provider", string(c.endpoint.provider)),
		slog.String("model", c.endpoint.model),
		slog.Bool("env_api_key", c.endpoint.apiKey != ""),
		slog.Duration("debounce", c.debounce),
	}
}

func (c AppConfig) maskedDBURL() string {
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}

func parseLogFormat(s string) LogFormat {
	if strings.EqualFold(s, string(LogFormatJSON)) {
		return LogFormatJSON
	}
	return LogFormatPretty
}

func parseProvider(s string) Provider {
	if strings.EqualFold(strings.TrimSpace(s), string(ProviderOpenAI)) {
		return ProviderOpenAI
	}
	return ProviderGemini
}
