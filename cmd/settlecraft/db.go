package main

import (
	"context"
	"fmt"
	"strings"

	"settlecraft/internal/config"
	"settlecraft/internal/store"
	"settlecraft/internal/store/postgres"
	"settlecraft/internal/store/sqlite"
)

func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	dsn := cfg.Database.DSN
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		client, err := sqlite.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return client, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		client, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unsupported database DSN: %s", dsn)
}
