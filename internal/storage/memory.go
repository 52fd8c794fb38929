package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/models"
)

// MemoryStorage реализует Storage в памяти процесса.
type MemoryStorage struct {
	mu     sync.RWMutex
	links  map[int64]*models.Link
	slugs  map[string]int64 // слаг -> ID ссылки
	users  map[string]*models.User
	names  map[string]string // имя пользователя -> ID
	nextID int64
	logger *zap.Logger
}

// NewMemoryStorage создает новый экземпляр MemoryStorage
func NewMemoryStorage(logger *zap.Logger) *MemoryStorage {
	return &MemoryStorage{
		links:  make(map[int64]*models.Link),
		slugs:  make(map[string]int64),
		users:  make(map[string]*models.User),
		names:  make(map[string]string),
		nextID: 1,
		logger: logger,
	}
}

// CreateLink сохраняет ссылку в памяти
func (ms *MemoryStorage) CreateLink(ctx context.Context, link *models.Link) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.createLinkLocked(link)
}

func (ms *MemoryStorage) createLinkLocked(link *models.Link) error {
	if _, taken := ms.slugs[link.ShortURL]; taken {
		return ErrSlugConflict
	}

	if link.ID == 0 {
		link.ID = ms.nextID
	}
	if link.ID >= ms.nextID {
		ms.nextID = link.ID + 1
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	if link.Category == "" {
		link.Category = models.CategoryOther
	}

	ms.links[link.ID] = link.Clone()
	ms.slugs[link.ShortURL] = link.ID
	return nil
}

// GetLinkByID получает ссылку по идентификатору
func (ms *MemoryStorage) GetLinkByID(ctx context.Context, id int64) (*models.Link, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	link, ok := ms.links[id]
	if !ok {
		return nil, ErrLinkNotFound
	}
	return link.Clone(), nil
}

// GetLinkBySlug получает ссылку по слагу
func (ms *MemoryStorage) GetLinkBySlug(ctx context.Context, slug string) (*models.Link, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	id, ok := ms.slugs[slug]
	if !ok {
		return nil, ErrLinkNotFound
	}
	return ms.links[id].Clone(), nil
}

// UpdateLink обновляет изменяемые поля ссылки
func (ms *MemoryStorage) UpdateLink(ctx context.Context, link *models.Link) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.updateLinkLocked(link)
}

func (ms *MemoryStorage) updateLinkLocked(link *models.Link) error {
	current, ok := ms.links[link.ID]
	if !ok {
		return ErrLinkNotFound
	}
	if owner, taken := ms.slugs[link.ShortURL]; taken && owner != link.ID {
		return ErrSlugConflict
	}

	delete(ms.slugs, current.ShortURL)
	current.ShortURL = link.ShortURL
	current.Category = link.Category
	current.HasQR = link.HasQR
	current.ExpiresAt = nil
	if link.ExpiresAt != nil {
		t := *link.ExpiresAt
		current.ExpiresAt = &t
	}
	ms.slugs[current.ShortURL] = current.ID
	return nil
}

// DeleteLink удаляет ссылку
func (ms *MemoryStorage) DeleteLink(ctx context.Context, id int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.deleteLinkLocked(id)
}

func (ms *MemoryStorage) deleteLinkLocked(id int64) error {
	link, ok := ms.links[id]
	if !ok {
		return ErrLinkNotFound
	}
	delete(ms.slugs, link.ShortURL)
	delete(ms.links, id)
	return nil
}

// SlugExists проверяет занятость слага
func (ms *MemoryStorage) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	id, ok := ms.slugs[slug]
	return ok && id != excludeID, nil
}

// ListLinksByUser возвращает ссылки пользователя
func (ms *MemoryStorage) ListLinksByUser(ctx context.Context, userID string) ([]*models.Link, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return ms.collect(func(l *models.Link) bool { return l.UserID == userID }), nil
}

// SearchLinks ищет ссылки по подстроке
func (ms *MemoryStorage) SearchLinks(ctx context.Context, query string) ([]*models.Link, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	q := strings.ToLower(query)
	return ms.collect(func(l *models.Link) bool {
		return q == "" ||
			strings.Contains(strings.ToLower(l.ShortURL), q) ||
			strings.Contains(strings.ToLower(l.OriginalURL), q)
	}), nil
}

// collect отбирает копии ссылок, новые первыми. Вызывается под блокировкой.
func (ms *MemoryStorage) collect(keep func(*models.Link) bool) []*models.Link {
	result := lo.FilterMap(lo.Values(ms.links), func(l *models.Link, _ int) (*models.Link, bool) {
		if !keep(l) {
			return nil, false
		}
		return l.Clone(), true
	})
	sortNewestFirst(result)
	return result
}

func sortNewestFirst(links []*models.Link) {
	sort.Slice(links, func(i, j int) bool {
		if links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].ID > links[j].ID
		}
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
}

// AddClicks увеличивает счетчики переходов
func (ms *MemoryStorage) AddClicks(ctx context.Context, clicks map[int64]int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for id, n := range clicks {
		if link, ok := ms.links[id]; ok {
			link.ClickCount += n
		}
	}
	return nil
}

// Stats считает агрегаты по всем ссылкам
func (ms *MemoryStorage) Stats(ctx context.Context) (models.Stats, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	links := lo.Values(ms.links)
	owners := lo.Uniq(lo.FilterMap(links, func(l *models.Link, _ int) (string, bool) {
		return l.UserID, l.UserID != ""
	}))

	return models.Stats{
		TotalURLs:   int64(len(links)),
		TotalClicks: lo.SumBy(links, func(l *models.Link) int64 { return l.ClickCount }),
		ActiveUsers: int64(len(owners)),
	}, nil
}

// CategoryCounts группирует ссылки по категориям
func (ms *MemoryStorage) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	groups := lo.GroupBy(lo.Values(ms.links), func(l *models.Link) string { return l.Category })
	categories := lo.Keys(groups)
	sort.Strings(categories)

	return lo.Map(categories, func(c string, _ int) models.CategoryCount {
		return models.CategoryCount{Category: c, Count: int64(len(groups[c]))}
	}), nil
}

// CreateUser сохраняет пользователя
func (ms *MemoryStorage) CreateUser(ctx context.Context, user *models.User) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.createUserLocked(user)
}

func (ms *MemoryStorage) createUserLocked(user *models.User) error {
	if _, taken := ms.names[user.Username]; taken {
		return ErrUserExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	u := *user
	ms.users[u.ID] = &u
	ms.names[u.Username] = u.ID
	return nil
}

// GetUserByID получает пользователя по идентификатору
func (ms *MemoryStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	u, ok := ms.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	c := *u
	return &c, nil
}

// GetUserByUsername получает пользователя по имени
func (ms *MemoryStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ms.mu.RLock()
	id, ok := ms.names[username]
	ms.mu.RUnlock()
	if !ok {
		return nil, ErrUserNotFound
	}
	return ms.GetUserByID(ctx, id)
}

// CheckConnection проверяет доступность хранилища
func (ms *MemoryStorage) CheckConnection(ctx context.Context) error {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.links == nil {
		return fmt.Errorf("storage is not initialized")
	}
	return nil
}

// Close ничего не делает для хранилища в памяти
func (ms *MemoryStorage) Close() error {
	return nil
}
