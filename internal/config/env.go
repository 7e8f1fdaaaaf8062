package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
type EnvConfig struct {
	// Host is the API host to bind to.
	// Env: HOST (default: 127.0.0.1)
	Host string `envconfig:"HOST" default:"127.0.0.1"`

	// Port is the API port to listen on.
	// Env: PORT (default: 8765)
	Port int `envconfig:"PORT" default:"8765"`

	// DataDir holds the history database and caches.
	// Env: DATA_DIR
	// Default: ~/.autocommit
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/autocommit.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// DisableAPI turns off the HTTP API while watching.
	// Env: DISABLE_API (default: false)
	DisableAPI bool `envconfig:"DISABLE_API" default:"false"`

	// SettingsPath is the settings file location.
	// Env: SETTINGS_PATH (default: .autocommit/settings.json)
	SettingsPath string `envconfig:"SETTINGS_PATH" default:".autocommit/settings.json"`

	// DebounceMS groups filesystem events arriving within this many milliseconds.
	// Env: DEBOUNCE_MS (default: 500)
	DebounceMS int `envconfig:"DEBOUNCE_MS" default:"500"`

	// StepTimeoutSeconds bounds each git step.
	// Env: STEP_TIMEOUT_SECONDS (default: 30)
	StepTimeoutSeconds float64 `envconfig:"STEP_TIMEOUT_SECONDS" default:"30"`

	// GenerationTimeoutSeconds bounds message generation, retries included.
	// Env: GENERATION_TIMEOUT_SECONDS (default: 60)
	GenerationTimeoutSeconds float64 `envconfig:"GENERATION_TIMEOUT_SECONDS" default:"60"`

	// HTTPCacheDir caches generation responses on disk when set.
	// Env: HTTP_CACHE_DIR
	HTTPCacheDir string `envconfig:"HTTP_CACHE_DIR"`

	EndpointEnv
}

// EndpointEnv holds environment configuration for the text generation service.
type EndpointEnv struct {
	// Provider selects the backend (gemini or openai).
	// Env: PROVIDER (default: gemini)
	Provider string `envconfig:"PROVIDER" default:"gemini"`

	// Model is the model identifier.
	// Env: MODEL
	Model string `envconfig:"MODEL"`

	// BaseURL overrides the service URL.
	// Env: BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// APIKey overrides the key stored in the settings file.
	// Env: API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Timeout is the HTTP request timeout in seconds.
	// Env: TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the number of extra attempts on a transient failure.
	// Env: MAX_RETRIES (default: 0, a failed message waits for the next threshold)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"0"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	return LoadFromEnvWithPrefix("")
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "AUTOCOMMIT" reads AUTOCOMMIT_DATA_DIR instead of DATA_DIR.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	cfg = applyOption(cfg, WithDisableAPI(e.DisableAPI))
	if e.SettingsPath != "" {
		cfg = applyOption(cfg, WithSettingsPath(e.SettingsPath))
	}
	cfg = applyOption(cfg, WithDebounce(time.Duration(e.DebounceMS)*time.Millisecond))
	cfg = applyOption(cfg, WithStepTimeout(seconds(e.StepTimeoutSeconds)))
	cfg = applyOption(cfg, WithGenerationTimeout(seconds(e.GenerationTimeoutSeconds)))
	if e.HTTPCacheDir != "" {
		cfg = applyOption(cfg, WithHTTPCacheDir(e.HTTPCacheDir))
	}

	return applyOption(cfg, WithEndpoint(e.EndpointEnv.ToEndpoint()))
}

// ToEndpoint converts EndpointEnv to Endpoint.
func (e EndpointEnv) ToEndpoint() Endpoint {
	return NewEndpointWithOptions(
		WithProvider(parseProvider(e.Provider)),
		WithModel(e.Model),
		WithBaseURL(e.BaseURL),
		WithAPIKey(e.APIKey),
		WithTimeout(seconds(e.Timeout)),
		WithMaxRetries(e.MaxRetries),
		WithInitialDelay(seconds(e.InitialDelay)),
		WithBackoffFactor(e.BackoffFactor),
	)
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
