package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/config"
)

// New выбирает хранилище по конфигурации: PostgreSQL, SQLite, файл или
// память, в этом порядке. При заданном REDIS_ADDR добавляется кэш.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Storage, error) {
	var (
		st  Storage
		err error
	)

	switch {
	case cfg.DatabaseDSN != "":
		logger.Info("Using PostgreSQL storage")
		st, err = NewPostgresStorage(ctx, cfg.DatabaseDSN, logger)
	case cfg.SQLitePath != "":
		logger.Info("Using SQLite storage", zap.String("path", cfg.SQLitePath))
		st, err = NewSQLiteStorage(ctx, cfg.SQLitePath, logger)
	case cfg.FileStoragePath != "":
		logger.Info("Using file storage", zap.String("path", cfg.FileStoragePath))
		st, err = NewFileStorage(cfg.FileStoragePath, logger)
	default:
		logger.Info("Using in-memory storage")
		st = NewMemoryStorage(logger)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RedisAddr == "" {
		return st, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		_ = st.Close()
		return nil, fmt.Errorf("redis connection error: %w", err)
	}
	logger.Info("Using Redis link cache", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.RedisTTL))
	return NewCachedStorage(st, client, cfg.RedisTTL, logger), nil
}
