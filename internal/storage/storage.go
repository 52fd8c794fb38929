// Package storage реализует хранение ссылок и пользователей: в памяти,
// в файле, в PostgreSQL и SQLite, а также кэш поверх любого из них в Redis.
package storage

import (
	"context"

	"github.com/InQaaaaGit/shortenit/internal/models"
)

// LinkStorage хранилище сокращенных ссылок.
type LinkStorage interface {
	// CreateLink сохраняет новую ссылку, заполняя ID и CreatedAt.
	// Возвращает ErrSlugConflict, если слаг занят.
	CreateLink(ctx context.Context, link *models.Link) error
	GetLinkByID(ctx context.Context, id int64) (*models.Link, error)
	GetLinkBySlug(ctx context.Context, slug string) (*models.Link, error)
	// UpdateLink сохраняет слаг, срок действия, категорию и признак QR-кода.
	UpdateLink(ctx context.Context, link *models.Link) error
	DeleteLink(ctx context.Context, id int64) error
	// SlugExists проверяет, занят ли слаг ссылкой с ID, отличным от excludeID.
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	// ListLinksByUser возвращает ссылки пользователя, новые первыми.
	ListLinksByUser(ctx context.Context, userID string) ([]*models.Link, error)
	// SearchLinks ищет подстроку query (без учета регистра) в слаге или
	// исходном URL. Пустой query возвращает все ссылки. Новые первыми.
	SearchLinks(ctx context.Context, query string) ([]*models.Link, error)
	// AddClicks увеличивает счетчики переходов: map[ID]приращение.
	AddClicks(ctx context.Context, clicks map[int64]int64) error
	Stats(ctx context.Context) (models.Stats, error)
	CategoryCounts(ctx context.Context) ([]models.CategoryCount, error)
}

// UserStorage хранилище пользователей.
type UserStorage interface {
	// CreateUser возвращает ErrUserExists, если имя занято.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// DatabaseChecker интерфейс для проверки соединения с хранилищем
type DatabaseChecker interface {
	CheckConnection(ctx context.Context) error
}

// Storage полный набор операций, нужный сервисам.
type Storage interface {
	LinkStorage
	UserStorage
	DatabaseChecker
	Close() error
}
