package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings, populated from the environment.
type Config struct {
	Port       int           `env:"CHORESQUEST_PORT" envDefault:"8080"`
	DBPath     string        `env:"CHORESQUEST_DB_PATH" envDefault:"choresquest.db"`
	LogLevel   string        `env:"CHORESQUEST_LOG_LEVEL" envDefault:"info"`
	LogFormat  string        `env:"CHORESQUEST_LOG_FORMAT" envDefault:"text"`
	SessionTTL time.Duration `env:"CHORESQUEST_SESSION_TTL" envDefault:"720h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
