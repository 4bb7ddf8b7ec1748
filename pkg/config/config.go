package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Application settings, loaded from environment variables.
type Config struct {
	Server  ServerConfig  `envPrefix:"SERVER_"`
	Graph   GraphConfig   `envPrefix:"GRAPH_"`
	Clone   CloneConfig   `envPrefix:"CLONE_"`
	Logging LoggingConfig `envPrefix:"LOG_"`
}

// HTTP server settings
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// Remote advertising platform API settings
type GraphConfig struct {
	BaseURL        string        `env:"BASE_URL" envDefault:"https://graph.facebook.com/v19.0"`
	AccessToken    string        `env:"ACCESS_TOKEN"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	MaxRetries     int           `env:"MAX_RETRIES" envDefault:"3"`
	RetryBackoff   time.Duration `env:"RETRY_BACKOFF" envDefault:"1s"`
	RatePerSecond  int           `env:"RATE_PER_SECOND" envDefault:"10"`
	RateBurst      int           `env:"RATE_BURST" envDefault:"5"`
}

// Clone engine settings
type CloneConfig struct {
	DefaultPageID  string `env:"DEFAULT_PAGE_ID"`
	DefaultPixelID string `env:"DEFAULT_PIXEL_ID"`
}

// Logging settings
type LoggingConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
