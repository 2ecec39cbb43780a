package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"salesboard/internal/platform/cache"
	"salesboard/internal/platform/config"
	"salesboard/internal/platform/db"
	"salesboard/internal/storage"
	"salesboard/internal/storage/memory"
	"salesboard/internal/storage/postgres"
	"salesboard/internal/storage/redisdoc"
)

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		if cfg.RunMigrations {
			applied, err := db.Migrate(ctx, pool, cfg.MigrationsDir)
			if err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
			log.Info().Strs("applied", applied).Msg("migrations complete")
		}
		return postgres.NewStore(pool), nil
	case config.StoreRedis:
		client, err := cache.NewRedisClient(ctx, cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		return redisdoc.NewStore(client, cfg.RedisPrefix), nil
	case config.StoreMemory, "":
		store, err := memory.Open(cfg.StoreFile)
		if err != nil {
			return nil, fmt.Errorf("open memory store: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
