package main

import (
	"context"
	"fmt"
	"strings"

	"points/internal/config"
	"points/internal/store"
	"points/internal/store/memory"
	"points/internal/store/postgres"
	"points/internal/store/sqlite"
)

func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	dsn := cfg.Database.DSN

	var db store.Store
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		client, err := sqlite.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		db = client
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		client, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		db = client
	case strings.HasPrefix(dsn, "memory://"):
		db = memory.New()
	default:
		return nil, fmt.Errorf("unsupported database dsn scheme")
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}
