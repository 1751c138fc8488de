package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides are read after points.yaml and win over it.
type EnvOverrides struct {
	DatabaseDSN string `env:"POINTS_DATABASE_DSN"`
	Actor       string `env:"POINTS_ACTOR"`

	// Host, username and password together select a postgres database
	// named "points".
	DatabaseHost     string `env:"DATABASE_HOST"`
	DatabaseUsername string `env:"DATABASE_USERNAME"`
	DatabasePassword string `env:"DATABASE_PASSWORD"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (o EnvOverrides) apply(cfg *ProjectConfig) {
	if o.DatabaseHost != "" && o.DatabaseUsername != "" && o.DatabasePassword != "" {
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(o.DatabaseUsername, o.DatabasePassword),
			Host:   o.DatabaseHost,
			Path:   "/points",
		}
		cfg.Database.DSN = u.String()
	}
	if o.DatabaseDSN != "" {
		cfg.Database.DSN = o.DatabaseDSN
	}
	if o.Actor != "" {
		cfg.Actor = o.Actor
	}
}
