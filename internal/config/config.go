package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config carries all runtime settings, populated from the environment.
type Config struct {
	Port string `env:"PORT" envDefault:"5001"`

	// DatabaseURL selects postgres when set; sqlite otherwise.
	DatabaseURL string `env:"DATABASE_URL"`
	SqlitePath  string `env:"SQLITE_PATH" envDefault:"data/metalfun.db"`

	MetalAPIKey string `env:"METAL_API_KEY"`
	MetalAPIURL string `env:"METAL_API_URL" envDefault:"https://api.metal.build"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
