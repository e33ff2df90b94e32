package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/config"
)

func OpenRedis(ctx context.Context, conf *config.RedisConfig) (*redis.Client, error) {
	return openRedis(ctx, &redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
}

// OpenRedisWithURL accepts a redis:// or rediss:// URL.
func OpenRedisWithURL(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL -> %w", err)
	}

	return openRedis(ctx, opts)
}

func openRedis(ctx context.Context, opts *redis.Options) (*redis.Client, error) {
	opts.MaxRetries = 3
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping -> %w", err)
	}

	return client, nil
}
