package main

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/theoremus-urban-solutions/departure-sensor/cache"
	"github.com/theoremus-urban-solutions/departure-sensor/config"
)

// openStore builds the snapshot store selected by cfg. The returned function releases
// its connections.
func openStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return cache.NewFileStore(cfg.Dir, cfg.Prefix), func() error { return nil }, nil

	case config.BackendSQLite, config.BackendPostgres:
		driver := cache.DriverSQLite
		if cfg.Backend == config.BackendPostgres {
			driver = cache.DriverPostgres
		}
		db, err := cache.OpenDB(ctx, driver, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		store := cache.NewSQLStore(db, driver)
		if err := store.InitSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		return cache.NewRedisStore(rdb, ""), rdb.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
