package cache

import (
	"context"
	"fmt"

	"algoforge/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cache.Connect: %w", err)
	}

	return rdb, nil
}
