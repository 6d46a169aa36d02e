// Package bootstrap 根据配置装配文章存储后端
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/mdblog/config"
	"github.com/d60-Lab/mdblog/internal/repository"
	"github.com/d60-Lab/mdblog/pkg/database"
	"github.com/d60-Lab/mdblog/pkg/logger"
)

// CloseFunc 释放存储连接
type CloseFunc func(ctx context.Context) error

// OpenPostRepository 打开 database.driver 指定的后端；SQL 后端会自动迁移表结构
func OpenPostRepository(ctx context.Context, cfg *config.Config) (repository.PostRepository, CloseFunc, error) {
	switch cfg.Database.Driver {
	case "sqlite", "postgres":
		db, err := database.InitDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
		logger.Debug("posts schema migrated", zap.String("driver", cfg.Database.Driver))
		logger.Info("post store ready", zap.String("driver", cfg.Database.Driver))
		return repository.NewPostRepository(db), func(context.Context) error { return database.Close(db) }, nil

	case "redis":
		client, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("post store ready", zap.String("driver", "redis"), zap.String("addr", cfg.Redis.Addr))
		return repository.NewRedisPostRepository(client, cfg.Redis.KeyPrefix), func(context.Context) error { return client.Close() }, nil

	case "mongo":
		client, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		if err := repository.EnsureMongoIndexes(ctx, coll); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		logger.Info("post store ready", zap.String("driver", "mongo"), zap.String("collection", cfg.Mongo.Collection))
		return repository.NewMongoPostRepository(coll), client.Disconnect, nil
	}
	return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}
