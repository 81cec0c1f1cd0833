// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from REDDIT_ENGINE_* variables. CLI flags override it.
type Config struct {
	ListenAddr     string        `env:"REDDIT_ENGINE_LISTEN_ADDR"     envDefault:":8080"`
	RequestTimeout time.Duration `env:"REDDIT_ENGINE_REQUEST_TIMEOUT" envDefault:"5s"`
	LogLevel       string        `env:"REDDIT_ENGINE_LOG_LEVEL"       envDefault:"info"`
	LogFormat      string        `env:"REDDIT_ENGINE_LOG_FORMAT"      envDefault:"text"`
	FeedLimit      int           `env:"REDDIT_ENGINE_FEED_LIMIT"      envDefault:"25"`

	Simulation Simulation
}

// Simulation holds defaults for the load generator.
type Simulation struct {
	Users   int    `env:"REDDIT_ENGINE_SIM_USERS"   envDefault:"10"`
	Seed    uint64 `env:"REDDIT_ENGINE_SIM_SEED"    envDefault:"1"`
	Profile string `env:"REDDIT_ENGINE_SIM_PROFILE"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("request timeout must be positive, got %s", cfg.RequestTimeout)
	}
	return cfg, nil
}
