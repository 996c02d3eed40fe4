package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bloom-monitor/config"

	"github.com/go-redis/redis/v8"
)

// RedisClient wraps the go-redis client used for the alert relay and the
// debounce window.
type RedisClient struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger = logger.With("component", "redis")
	logger.Info("Redis connected successfully", "addr", rdb.Options().Addr)
	return newRedisClient(rdb, logger), nil
}

func newRedisClient(rdb *redis.Client, logger *slog.Logger) *RedisClient {
	return &RedisClient{client: rdb, logger: logger}
}

// Client exposes the underlying go-redis client.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
