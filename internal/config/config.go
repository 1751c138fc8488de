package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDSN        = "sqlite://points.db"
	DefaultTop        = 5
	DefaultTimeFormat = "01/02 15:04"
)

type ProjectConfig struct {
	Version   int             `yaml:"version"`
	Database  DatabaseConfig  `yaml:"database"`
	Actor     string          `yaml:"actor"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Messages  string          `yaml:"messages"`
	History   HistoryConfig   `yaml:"history"`
	Teams     []string        `yaml:"teams"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type LedgerConfig struct {
	// MinPoint is exclusive: add and sub amounts must be greater than it.
	MinPoint int64 `yaml:"min_point"`
}

type BroadcastConfig struct {
	Top              int  `yaml:"top"`
	ExcludeOperators bool `yaml:"exclude_operators"`
}

type HistoryConfig struct {
	TimeFormat string `yaml:"time_format"`
}

// Default is the configuration written by "points init".
func Default() *ProjectConfig {
	cfg := &ProjectConfig{
		Version:  1,
		Database: DatabaseConfig{DSN: DefaultDSN},
		Messages: "languages.yaml",
	}
	applyDefaults(cfg)
	return cfg
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var overrides EnvOverrides
	if err := ParseEnv(&overrides); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	overrides.apply(&cfg)
	applyDefaults(&cfg)

	if cfg.Messages != "" && !filepath.IsAbs(cfg.Messages) {
		cfg.Messages = filepath.Join(filepath.Dir(path), cfg.Messages)
	}

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Broadcast.Top == 0 {
		cfg.Broadcast.Top = DefaultTop
	}
	if cfg.History.TimeFormat == "" {
		cfg.History.TimeFormat = DefaultTimeFormat
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	dsn := strings.TrimSpace(cfg.Database.DSN)
	if dsn == "" {
		return fmt.Errorf("database dsn is required")
	}
	switch {
	case strings.HasPrefix(dsn, "sqlite://"),
		strings.HasPrefix(dsn, "postgres://"),
		strings.HasPrefix(dsn, "postgresql://"),
		strings.HasPrefix(dsn, "memory://"):
	default:
		return fmt.Errorf("unsupported database dsn scheme: %s", redact(dsn))
	}
	if cfg.Ledger.MinPoint < 0 {
		return fmt.Errorf("ledger min_point must not be negative")
	}
	if cfg.Broadcast.Top < 0 {
		return fmt.Errorf("broadcast top must be positive")
	}

	seen := make(map[string]struct{})
	for i, team := range cfg.Teams {
		if strings.TrimSpace(team) == "" {
			return fmt.Errorf("team %d name is required", i)
		}
		if _, exists := seen[team]; exists {
			return fmt.Errorf("duplicate team name: %s", team)
		}
		seen[team] = struct{}{}
	}

	return nil
}

// redact hides credentials before a DSN is put into an error message.
func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}
