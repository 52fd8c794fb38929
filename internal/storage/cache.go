package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/models"
)

const linkCachePrefix = "shortenit:link:"

// CachedStorage кэширует поиск ссылки по слагу в Redis поверх любого Storage.
// Счетчик переходов в кэшированной копии может отставать от хранилища.
type CachedStorage struct {
	Storage
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// Compile-time interface check
var _ Storage = (*CachedStorage)(nil)

// NewCachedStorage оборачивает хранилище кэшем
func NewCachedStorage(next Storage, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStorage {
	return &CachedStorage{
		Storage: next,
		client:  client,
		ttl:     ttl,
		logger:  logger,
	}
}

func cacheKey(slug string) string {
	return linkCachePrefix + slug
}

// GetLinkBySlug сначала ищет ссылку в кэше. Ошибки Redis не прерывают запрос.
func (cs *CachedStorage) GetLinkBySlug(ctx context.Context, slug string) (*models.Link, error) {
	data, err := cs.client.Get(ctx, cacheKey(slug)).Bytes()
	switch {
	case err == nil:
		var link models.Link
		if err := json.Unmarshal(data, &link); err == nil {
			return &link, nil
		}
		cs.logger.Warn("Corrupted cache entry", zap.String("slug", slug))
	case !errors.Is(err, redis.Nil):
		cs.logger.Warn("Cache read failed", zap.String("slug", slug), zap.Error(err))
	}

	link, err := cs.Storage.GetLinkBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	cs.fill(ctx, link)
	return link, nil
}

// fill кладет прочитанную ссылку в кэш и перечитывает хранилище: удаление
// или переименование между чтением и записью успело сбросить ключ раньше,
// чем запись в Redis, и такую запись надо убрать.
func (cs *CachedStorage) fill(ctx context.Context, link *models.Link) {
	cs.set(ctx, link)
	current, err := cs.Storage.GetLinkBySlug(ctx, link.ShortURL)
	if err != nil || current.ID != link.ID {
		cs.invalidate(ctx, link.ShortURL)
	}
}

func (cs *CachedStorage) set(ctx context.Context, link *models.Link) {
	data, err := json.Marshal(link)
	if err != nil {
		cs.logger.Warn("Cache encode failed", zap.Error(err))
		return
	}
	if err := cs.client.Set(ctx, cacheKey(link.ShortURL), data, cs.ttl).Err(); err != nil {
		cs.logger.Warn("Cache write failed", zap.String("slug", link.ShortURL), zap.Error(err))
	}
}

func (cs *CachedStorage) invalidate(ctx context.Context, slugs ...string) {
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, cacheKey(s))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := cs.client.Del(ctx, keys...).Err(); err != nil {
		cs.logger.Warn("Cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// UpdateLink обновляет ссылку и сбрасывает кэш старого и нового слага
func (cs *CachedStorage) UpdateLink(ctx context.Context, link *models.Link) error {
	var oldSlug string
	if current, err := cs.Storage.GetLinkByID(ctx, link.ID); err == nil {
		oldSlug = current.ShortURL
	}
	if err := cs.Storage.UpdateLink(ctx, link); err != nil {
		return err
	}
	cs.invalidate(ctx, oldSlug, link.ShortURL)
	return nil
}

// DeleteLink удаляет ссылку и сбрасывает ее кэш
func (cs *CachedStorage) DeleteLink(ctx context.Context, id int64) error {
	current, err := cs.Storage.GetLinkByID(ctx, id)
	if err != nil {
		return err
	}
	if err := cs.Storage.DeleteLink(ctx, id); err != nil {
		return err
	}
	cs.invalidate(ctx, current.ShortURL)
	return nil
}

// CheckConnection проверяет хранилище и Redis
func (cs *CachedStorage) CheckConnection(ctx context.Context) error {
	if err := cs.Storage.CheckConnection(ctx); err != nil {
		return err
	}
	if err := cs.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close закрывает клиент Redis и хранилище
func (cs *CachedStorage) Close() error {
	return errors.Join(cs.client.Close(), cs.Storage.Close())
}
