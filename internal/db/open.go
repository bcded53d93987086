package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"store-admin/internal/config"
	"store-admin/internal/store"
)

// OpenStore opens the document store selected by cfg.Store.Driver. The returned close
// function releases the connection pool, if any.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.DocumentStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Warn("using the in-memory store; data is lost on exit")
		return store.NewMemoryStore(), func() {}, nil

	case config.DriverPostgres:
		if cfg.DB.AutoMigrate {
			version, err := Migrate(cfg.DB.URL)
			if err != nil {
				return nil, nil, err
			}
			log.Info("schema migrated", zap.Uint("version", version))
		}
		pool, err := NewPool(ctx, cfg.DB.URL, cfg.DB.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresStore(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
