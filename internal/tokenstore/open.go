package tokenstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gxmovies/storefront-client/internal/config"
	"github.com/gxmovies/storefront-client/internal/persistence"
	"github.com/gxmovies/storefront-client/migrations"
)

// Open builds the configured backend. The returned closer releases any
// connection the backend holds and is never nil.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return NewMemory(), noop, nil
	case config.StorageFile:
		store, err := NewFile(cfg.Storage.FilePath, cfg.Storage.FileKey)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("using file token store", zap.String("path", store.Path()), zap.Bool("encrypted", cfg.Storage.FileKey != ""))
		return store, noop, nil
	case config.StorageRedis:
		client, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, noop, err
		}
		return NewRedis(client, cfg.Storage.KeyPrefix), func() { _ = client.Close() }, nil
	case config.StoragePostgres:
		pool, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, noop, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
				pool.Close()
				return nil, noop, err
			}
		}
		return NewPostgres(pool, cfg.Storage.KeyPrefix), pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("unsupported token store backend %q", cfg.Storage.Backend)
	}
}
