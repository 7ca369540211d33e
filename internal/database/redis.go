package database

import (
	"context"
	"fmt"
	"time"

	"jurnal/internal/config"

	"github.com/go-redis/redis/v8"
)

// OpenRedis connects to the Redis server backing server-side sessions and pings it.
func OpenRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
