package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/verdict/pkg/classifier"
	"github.com/JaimeStill/verdict/pkg/database"
	"github.com/JaimeStill/verdict/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvVerdictEnv             = "VERDICT_ENV"
	EnvVerdictShutdownTimeout = "VERDICT_SHUTDOWN_TIMEOUT"
	EnvVerdictVersion         = "VERDICT_VERSION"
)

// DatabaseEnv maps the database config to VERDICT_DB_* variables.
var DatabaseEnv = &database.Env{
	Host:            "VERDICT_DB_HOST",
	Port:            "VERDICT_DB_PORT",
	Name:            "VERDICT_DB_NAME",
	User:            "VERDICT_DB_USER",
	Password:        "VERDICT_DB_PASSWORD",
	SSLMode:         "VERDICT_DB_SSL_MODE",
	ApplicationName: "VERDICT_DB_APPLICATION_NAME",
	MaxOpenConns:    "VERDICT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "VERDICT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "VERDICT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "VERDICT_DB_CONN_TIMEOUT",
	PingRetries:     "VERDICT_DB_PING_RETRIES",
	PingBackoff:     "VERDICT_DB_PING_BACKOFF",
}

var storageEnv = &storage.Env{
	Enabled:          "VERDICT_STORAGE_ENABLED",
	ContainerName:    "VERDICT_STORAGE_CONTAINER_NAME",
	ConnectionString: "VERDICT_STORAGE_CONNECTION_STRING",
	AccountURL:       "VERDICT_STORAGE_ACCOUNT_URL",
}

var classifierEnv = &classifier.Env{
	Provider:          "VERDICT_CLASSIFIER_PROVIDER",
	Labels:            "VERDICT_CLASSIFIER_LABELS",
	Timeout:           "VERDICT_CLASSIFIER_TIMEOUT",
	HTTPBaseURL:       "VERDICT_CLASSIFIER_HTTP_BASE_URL",
	HTTPToken:         "VERDICT_CLASSIFIER_HTTP_TOKEN",
	OpenAIBaseURL:     "VERDICT_CLASSIFIER_OPENAI_BASE_URL",
	OpenAIAPIKey:      "VERDICT_CLASSIFIER_OPENAI_API_KEY",
	OpenAIModel:       "VERDICT_CLASSIFIER_OPENAI_MODEL",
	ONNXLibraryPath:   "VERDICT_CLASSIFIER_ONNX_LIBRARY_PATH",
	ONNXModelPath:     "VERDICT_CLASSIFIER_ONNX_MODEL_PATH",
	ONNXTokenizerPath: "VERDICT_CLASSIFIER_ONNX_TOKENIZER_PATH",
	ONNXModelKey:      "VERDICT_CLASSIFIER_ONNX_MODEL_KEY",
	ONNXTokenizerKey:  "VERDICT_CLASSIFIER_ONNX_TOKENIZER_KEY",
}

// Config is the root configuration for the Verdict service.
// Database settings are only finalized when review persistence is enabled.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	API             APIConfig         `toml:"api"`
	Classifier      classifier.Config `toml:"classifier"`
	Reviews         ReviewsConfig     `toml:"reviews"`
	Chat            ChatConfig        `toml:"chat"`
	Logging         LoggingConfig     `toml:"logging"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the VERDICT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvVerdictEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := loadOverlay(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Classifier.Merge(&overlay.Classifier)
	c.Reviews.Merge(&overlay.Reviews)
	c.Chat.Merge(&overlay.Chat)
	c.Logging.Merge(&overlay.Logging)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Reviews.Finalize(); err != nil {
		return fmt.Errorf("reviews: %w", err)
	}
	if c.Reviews.Persist {
		if err := c.Database.Finalize(DatabaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	c.Classifier.PositiveTag = c.Reviews.PositiveTag
	c.Classifier.NegativeTag = c.Reviews.NegativeTag
	if err := c.Classifier.Finalize(classifierEnv); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Chat.Finalize(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return c.validateTags()
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvVerdictShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvVerdictVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

// validateTags checks that both review tags are labels the classifier can emit.
func (c *Config) validateTags() error {
	known := make(map[string]bool, len(c.Classifier.Labels))
	for _, l := range c.Classifier.Labels {
		known[l] = true
	}
	for _, tag := range []string{c.Reviews.PositiveTag, c.Reviews.NegativeTag} {
		if !known[tag] {
			return fmt.Errorf("reviews: tag %q not in classifier labels %v", tag, c.Classifier.Labels)
		}
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// overlayFlags records which boolean keys an overlay file sets. Merge always
// applies booleans, so keys the overlay omits are copied from the base first.
type overlayFlags struct {
	Storage struct {
		Enabled *bool `toml:"enabled"`
	} `toml:"storage"`
	API struct {
		CORS struct {
			Enabled          *bool `toml:"enabled"`
			AllowCredentials *bool `toml:"allow_credentials"`
		} `toml:"cors"`
	} `toml:"api"`
	Reviews struct {
		Persist *bool `toml:"persist"`
	} `toml:"reviews"`
}

// loadOverlay reads an overlay file whose omitted boolean keys keep the
// values from base.
func loadOverlay(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	overlay := &Config{}
	if err := toml.Unmarshal(data, overlay); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var flags overlayFlags
	if err := toml.Unmarshal(data, &flags); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	keep := func(set *bool, dst *bool, base bool) {
		if set == nil {
			*dst = base
		}
	}
	keep(flags.Storage.Enabled, &overlay.Storage.Enabled, base.Storage.Enabled)
	keep(flags.API.CORS.Enabled, &overlay.API.CORS.Enabled, base.API.CORS.Enabled)
	keep(flags.API.CORS.AllowCredentials, &overlay.API.CORS.AllowCredentials, base.API.CORS.AllowCredentials)
	keep(flags.Reviews.Persist, &overlay.Reviews.Persist, base.Reviews.Persist)

	return overlay, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvVerdictEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
