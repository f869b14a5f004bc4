package database

import (
	"context"
	"fmt"
	"time"

	"campus-events/internal/config"
	"campus-events/internal/logger"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis sets up the shared Redis client and tests the connection.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		log.Error("REDIS", fmt.Sprintf("Failed to connect to Redis at %s: %v", cfg.Addr, err))
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	log.Info("REDIS", fmt.Sprintf("✅ Connected to Redis at %s", cfg.Addr))
	return client, nil
}
