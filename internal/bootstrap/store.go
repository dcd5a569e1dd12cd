package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hse-epd/lut-studio/config"
	"github.com/hse-epd/lut-studio/internal/kvstore"
)

// OpenStore connects the configured persistence backend. The returned
// store may also implement kvstore.Pinger and kvstore.Closer.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (kvstore.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return kvstore.NewMemoryStore(), nil

	case config.BackendFile:
		store, err := kvstore.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := kvstore.NewRedisStore(client, cfg.RedisPrefix)

		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := store.Ping(pctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return store, nil

	case config.BackendPostgres:
		db, err := OpenDB(ctx, DBOptions{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		store := kvstore.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("kv schema: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// CloseStore releases backend connections, if any.
func CloseStore(s kvstore.Store) error {
	if c, ok := s.(kvstore.Closer); ok {
		return c.Close()
	}
	return nil
}
