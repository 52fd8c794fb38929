package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/models"
)

const (
	recordKindLink = "link"
	recordKindUser = "user"
)

// fileRecord строка файла хранилища. Файл хранит JSON-объекты по одному на строку.
type fileRecord struct {
	Kind string       `json:"kind"`
	Link *models.Link `json:"link,omitempty"`
	User *userRecord  `json:"user,omitempty"`
}

type userRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// FileStorage хранит данные в памяти и сбрасывает снимок на диск после
// каждого изменения.
type FileStorage struct {
	*MemoryStorage
	filePath string
	mutex    sync.Mutex
	logger   *zap.Logger
}

// NewFileStorage создает файловое хранилище и загружает существующие данные
func NewFileStorage(filePath string, logger *zap.Logger) (*FileStorage, error) {
	fs := &FileStorage{
		MemoryStorage: NewMemoryStorage(logger),
		filePath:      filePath,
		logger:        logger,
	}

	if err := fs.loadFromFile(); err != nil {
		return nil, err
	}
	return fs, nil
}

// loadFromFile читает записи из файла, если он существует
func (fs *FileStorage) loadFromFile() error {
	file, err := os.Open(fs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	ms := fs.MemoryStorage
	ms.mu.Lock()
	defer ms.mu.Unlock()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec fileRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return fmt.Errorf("error decoding record at line %d: %w", line, err)
		}
		switch {
		case rec.Kind == recordKindLink && rec.Link != nil:
			if err := ms.createLinkLocked(rec.Link); err != nil {
				fs.logger.Warn("Skipping duplicate link record",
					zap.String("short_url", rec.Link.ShortURL), zap.Error(err))
			}
		case rec.Kind == recordKindUser && rec.User != nil:
			u := &models.User{
				ID:           rec.User.ID,
				Username:     rec.User.Username,
				PasswordHash: rec.User.PasswordHash,
				CreatedAt:    rec.User.CreatedAt,
			}
			if err := ms.createUserLocked(u); err != nil {
				fs.logger.Warn("Skipping duplicate user record",
					zap.String("username", u.Username), zap.Error(err))
			}
		default:
			fs.logger.Warn("Skipping unknown record", zap.Int("line", line), zap.String("kind", rec.Kind))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	fs.logger.Info("File storage loaded",
		zap.String("path", fs.filePath),
		zap.Int("links", len(ms.links)),
		zap.Int("users", len(ms.users)))
	return nil
}

// persist переписывает файл целиком через временный файл
func (fs *FileStorage) persist() error {
	ms := fs.MemoryStorage
	ms.mu.RLock()
	records := make([]fileRecord, 0, len(ms.users)+len(ms.links))
	for _, u := range ms.users {
		records = append(records, fileRecord{Kind: recordKindUser, User: &userRecord{
			ID:           u.ID,
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			CreatedAt:    u.CreatedAt,
		}})
	}
	for _, l := range ms.links {
		records = append(records, fileRecord{Kind: recordKindLink, Link: l.Clone()})
	}
	ms.mu.RUnlock()

	// Пользователи первыми, ссылки по возрастанию ID: файл стабилен между записями
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Kind != records[j].Kind {
			return records[i].Kind == recordKindUser
		}
		if records[i].Kind == recordKindUser {
			return records[i].User.Username < records[j].User.Username
		}
		return records[i].Link.ID < records[j].Link.ID
	})

	tmp, err := os.CreateTemp(filepath.Dir(fs.filePath), filepath.Base(fs.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // после Rename файла уже нет

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("error encoding record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.filePath); err != nil {
		return fmt.Errorf("error replacing file: %w", err)
	}
	return nil
}

// mutate выполняет изменение и сохраняет снимок при успехе
func (fs *FileStorage) mutate(fn func() error) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if err := fn(); err != nil {
		return err
	}
	return fs.persist()
}

// CreateLink сохраняет ссылку и записывает файл
func (fs *FileStorage) CreateLink(ctx context.Context, link *models.Link) error {
	return fs.mutate(func() error { return fs.MemoryStorage.CreateLink(ctx, link) })
}

// UpdateLink обновляет ссылку и записывает файл
func (fs *FileStorage) UpdateLink(ctx context.Context, link *models.Link) error {
	return fs.mutate(func() error { return fs.MemoryStorage.UpdateLink(ctx, link) })
}

// DeleteLink удаляет ссылку и записывает файл
func (fs *FileStorage) DeleteLink(ctx context.Context, id int64) error {
	return fs.mutate(func() error { return fs.MemoryStorage.DeleteLink(ctx, id) })
}

// AddClicks увеличивает счетчики и записывает файл
func (fs *FileStorage) AddClicks(ctx context.Context, clicks map[int64]int64) error {
	if len(clicks) == 0 {
		return nil
	}
	return fs.mutate(func() error { return fs.MemoryStorage.AddClicks(ctx, clicks) })
}

// CreateUser сохраняет пользователя и записывает файл
func (fs *FileStorage) CreateUser(ctx context.Context, user *models.User) error {
	return fs.mutate(func() error { return fs.MemoryStorage.CreateUser(ctx, user) })
}

// CheckConnection проверяет, что каталог файла доступен
func (fs *FileStorage) CheckConnection(ctx context.Context) error {
	if _, err := os.Stat(filepath.Dir(fs.filePath)); err != nil {
		return fmt.Errorf("storage directory unavailable: %w", err)
	}
	return fs.MemoryStorage.CheckConnection(ctx)
}
