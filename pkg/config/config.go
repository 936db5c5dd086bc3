package config

import (
	"context"
	"time"
)

// Config represents the complete configuration for the orchestrator.
// It is resolved once at startup and handed to the components that need it.
type Config struct {
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	Runtime    RuntimeConfig    `koanf:"runtime"    validate:"required"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Telegram   TelegramConfig   `koanf:"telegram"`
	Sink       SinkConfig       `koanf:"sink"`
	Webhook    WebhookConfig    `koanf:"webhook"`
	Monitoring MonitoringConfig `koanf:"monitoring"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"             validate:"required"        env:"SERVER_HOST"`
	Port            int           `koanf:"port"             validate:"min=1,max=65535" env:"PORT"`
	Timeout         time.Duration `koanf:"timeout"          validate:"gt=0"            env:"SERVER_TIMEOUT"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"            env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// RuntimeConfig contains runtime behavior configuration.
type RuntimeConfig struct {
	Environment string `koanf:"environment" validate:"oneof=development staging production" env:"RUNTIME_ENVIRONMENT"`
	LogLevel    string `koanf:"log_level"   validate:"oneof=debug info warn error"          env:"RUNTIME_LOG_LEVEL"`
}

// ClassifierConfig configures the OpenAI-compatible classification endpoint.
type ClassifierConfig struct {
	APIKey      SensitiveString `koanf:"api_key"     env:"OPENAI_API_KEY"        sensitive:"true"`
	BaseURL     string          `koanf:"base_url"    env:"OPENAI_BASE_URL"                         validate:"http_url_or_empty"`
	Model       string          `koanf:"model"       env:"OPENAI_MODEL"                            validate:"required"`
	Temperature float64         `koanf:"temperature" env:"CLASSIFIER_TEMPERATURE"                  validate:"min=0,max=2"`
	Timeout     time.Duration   `koanf:"timeout"     env:"CLASSIFIER_TIMEOUT"                      validate:"gt=0"`
}

// TelegramConfig configures the reply channel.
type TelegramConfig struct {
	BotToken SensitiveString `koanf:"bot_token" env:"TELEGRAM_BOT_TOKEN" sensitive:"true"`
	APIRoot  string          `koanf:"api_root"  env:"TELEGRAM_API_ROOT"                  validate:"required,http_url_or_empty"`
	Timeout  time.Duration   `koanf:"timeout"   env:"TELEGRAM_TIMEOUT"                   validate:"gt=0"`
}

// SinkConfig configures the automation ingestion endpoint.
type SinkConfig struct {
	URL     string        `koanf:"url"     env:"N8N_WEBHOOK_URL" validate:"http_url_or_empty"`
	Source  string        `koanf:"source"  env:"SINK_SOURCE"     validate:"required"`
	Timeout time.Duration `koanf:"timeout" env:"SINK_TIMEOUT"    validate:"gt=0"`
}

// WebhookConfig configures the inbound chat webhook.
type WebhookConfig struct {
	Path    string `koanf:"path"     env:"WEBHOOK_PATH"     validate:"required,startswith=/"`
	MaxBody int64  `koanf:"max_body" env:"WEBHOOK_MAX_BODY" validate:"min=1"`
}

// MonitoringConfig configures the Prometheus exporter.
type MonitoringConfig struct {
	Enabled bool   `koanf:"enabled" env:"MONITORING_ENABLED"`
	Path    string `koanf:"path"    env:"MONITORING_PATH"    validate:"required,startswith=/"`
}

// Service defines the configuration loading interface.
type Service interface {
	// Load loads configuration from the given sources; later sources win.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns which source provided a configuration key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Type returns the source type identifier.
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Default returns a Config with default values for development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			Timeout:         15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Runtime: RuntimeConfig{
			Environment: "development",
			LogLevel:    "info",
		},
		Classifier: ClassifierConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			Timeout:     30 * time.Second,
		},
		Telegram: TelegramConfig{
			APIRoot: "https://api.telegram.org",
			Timeout: 10 * time.Second,
		},
		Sink: SinkConfig{
			Source:  "orchestrator",
			Timeout: 10 * time.Second,
		},
		Webhook: WebhookConfig{
			Path:    "/telegram-webhook",
			MaxBody: 1 << 20,
		},
		Monitoring: MonitoringConfig{
			Enabled: false,
			Path:    "/metrics",
		},
	}
}

// DrainTimeout is how long shutdown waits for accepted messages. It is at
// least one full pipeline: the classifier call followed by the slower of the
// two concurrent deliveries.
func (c *Config) DrainTimeout() time.Duration {
	pipeline := c.Classifier.Timeout + max(c.Telegram.Timeout, c.Sink.Timeout)
	return max(c.Server.ShutdownTimeout, pipeline)
}

// Warnings lists the missing settings that leave a dependency unusable.
// The server still starts; the affected calls fail and are handled as outages.
func (c *Config) Warnings() []string {
	var out []string
	if c.Classifier.APIKey.Value() == "" {
		out = append(out, "OPENAI_API_KEY is missing: every message will take the degraded path")
	}
	if c.Telegram.BotToken.Value() == "" {
		out = append(out, "TELEGRAM_BOT_TOKEN is missing: replies to senders are disabled")
	}
	if c.Sink.URL == "" {
		out = append(out, "N8N_WEBHOOK_URL is missing: task plans will not reach the automation sink")
	}
	return out
}
