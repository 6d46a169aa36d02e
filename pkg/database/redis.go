package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/mdblog/config"
)

// NewRedis 创建 Redis 客户端并检查连通性
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}
