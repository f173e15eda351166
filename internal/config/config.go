// Package config reads client and stub-server settings from the
// environment, with an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings.
type Config struct {
	// BaseURL is the enrollment server the client talks to.
	BaseURL string `env:"ACTIVITIES_BASE_URL" envDefault:"http://localhost:8000"`
	// HTTPTimeout bounds every request; the protocol itself has no
	// retry or per-request timeout beyond this transport default.
	HTTPTimeout time.Duration `env:"ACTIVITIES_HTTP_TIMEOUT" envDefault:"10s"`

	// Stub server settings.
	StubAddr string `env:"STUB_ADDR" envDefault:":8000"`
	// StubDB is a sqlite file path; empty keeps the stub in memory.
	StubDB string `env:"STUB_DB"`
	// StubSessionSecret signs the stub server's session cookies.
	StubSessionSecret string `env:"STUB_SESSION_SECRET" envDefault:"dev-secret-change-me"`
}

// Load reads .env when present, then parses the environment.
func Load() (Config, error) {
	// A missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
