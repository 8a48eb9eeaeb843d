package common

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `envPrefix:"SERVER_"`
	LLM       LLMConfig       `envPrefix:"OPENAI_"`
	Extractor ExtractorConfig `envPrefix:"EXTRACTOR_"`
	Ingest    IngestConfig    `envPrefix:"INGEST_"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LLMConfig holds the structured-extraction client configuration.
type LLMConfig struct {
	APIKey      string        `env:"API_KEY"`
	BaseURL     string        `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model       string        `env:"MODEL" envDefault:"gpt-4o-mini"`
	Temperature float32       `env:"TEMPERATURE" envDefault:"0"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

// IngestConfig holds drop-directory ingestion configuration. Watching is
// off unless WatchDir is set.
type IngestConfig struct {
	WatchDir    string        `env:"WATCH_DIR"`
	InitialScan bool          `env:"INITIAL_SCAN" envDefault:"true"`
	Debounce    time.Duration `env:"DEBOUNCE" envDefault:"500ms"`
}

// ExtractorConfig holds document-to-text extraction configuration.
type ExtractorConfig struct {
	Pdftotext string `env:"PDFTOTEXT" envDefault:"pdftotext"`
	MaxBytes  int64  `env:"MAX_BYTES" envDefault:"20971520"`
}

// LoadConfig loads configuration from the environment, reading a local .env
// file first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, WrapError(err, "parse environment")
	}
	return &cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "SERVER_ADDR is required", ErrInvalidInput)
	}
	return nil
}
