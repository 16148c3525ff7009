package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/dms-admin-api/pkg/config"
)

// NewRedis returns a configured Redis client.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// NewOptional connects to Redis when caching is enabled. A failed connection
// is logged and yields a nil client; list endpoints then read through to the
// store.
func NewOptional(cfg config.RedisConfig, enabled bool, logger *zap.Logger) *redis.Client {
	if !enabled {
		return nil
	}
	client, err := NewRedis(cfg)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", zap.String("host", cfg.Host), zap.Int("port", cfg.Port), zap.Error(err))
		return nil
	}
	return client
}
