// Package service содержит бизнес-логику сервиса: создание и переход по
// коротким ссылкам, их редактирование, QR-коды, статистику и пользователей.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/models"
	"github.com/InQaaaaGit/shortenit/internal/storage"
	"github.com/InQaaaaGit/shortenit/internal/validate"
)

// maxSlugAttempts число попыток подобрать свободный случайный слаг
const maxSlugAttempts = 5

// ClickSink принимает переходы по ссылкам
type ClickSink interface {
	Record(linkID int64)
}

// CustomizeInput поля формы настройки ссылки
type CustomizeInput struct {
	ShortURL   string
	ExpiresAt  *time.Time
	Category   string
	GenerateQR bool
}

// Dashboard данные личного кабинета
type Dashboard struct {
	Links       []*models.Link
	TotalURLs   int
	TotalClicks int64
}

// Analytics данные страницы аналитики
type Analytics struct {
	Links       []*models.Link
	Query       string
	ChartLabels []string
	ChartData   []int64
}

// LinkService реализует операции над короткими ссылками
type LinkService struct {
	store      storage.LinkStorage
	clicks     ClickSink
	baseURL    string
	slugLength int
	logger     *zap.Logger
	now        func() time.Time
}

// NewLinkService создает сервис ссылок
func NewLinkService(store storage.LinkStorage, clicks ClickSink, baseURL string, slugLength int, logger *zap.Logger) *LinkService {
	return &LinkService{
		store:      store,
		clicks:     clicks,
		baseURL:    strings.TrimRight(baseURL, "/"),
		slugLength: slugLength,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ShortLink строит полный адрес короткой ссылки
func (s *LinkService) ShortLink(slug string) string {
	return s.baseURL + "/" + slug + "/"
}

// Shorten создает ссылку со случайным слагом. userID пуст для анонимов.
func (s *LinkService) Shorten(ctx context.Context, originalURL, userID string) (*models.Link, error) {
	target, err := validate.OriginalURL(originalURL)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		slug, err := GenerateSlug(s.slugLength)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}

		link := &models.Link{
			UserID:      userID,
			OriginalURL: target,
			ShortURL:    slug,
			Category:    models.CategoryOther,
			CreatedAt:   s.now(),
		}
		err = s.store.CreateLink(ctx, link)
		if errors.Is(err, storage.ErrSlugConflict) {
			s.logger.Info("Slug collision, retrying", zap.String("slug", slug), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create link: %w", err)
		}

		s.logger.Info("Short link created",
			zap.Int64("id", link.ID),
			zap.String("short_url", link.ShortURL),
			zap.String("original_url", link.OriginalURL))
		return link, nil
	}
	return nil, ErrSlugExhausted
}

// Resolve находит ссылку для перехода и учитывает клик.
// Для просроченной ссылки возвращает ее вместе с ErrLinkExpired.
func (s *LinkService) Resolve(ctx context.Context, slug string) (*models.Link, error) {
	link, err := s.store.GetLinkBySlug(ctx, slug)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	if link.IsExpired(s.now()) {
		return link, ErrLinkExpired
	}

	s.clicks.Record(link.ID)
	link.ClickCount++
	return link, nil
}

func (s *LinkService) mapNotFound(err error) error {
	if errors.Is(err, storage.ErrLinkNotFound) {
		return ErrLinkNotFound
	}
	return err
}

// GetOwnedLink возвращает ссылку, если она принадлежит пользователю
func (s *LinkService) GetOwnedLink(ctx context.Context, id int64, userID string) (*models.Link, error) {
	link, err := s.store.GetLinkByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	if userID == "" || link.UserID != userID {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

// ensureSlugFree проверяет, что слаг не занят другой ссылкой
func (s *LinkService) ensureSlugFree(ctx context.Context, slug string, id int64) error {
	taken, err := s.store.SlugExists(ctx, slug, id)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return ErrSlugTaken
	}
	return nil
}

func (s *LinkService) save(ctx context.Context, link *models.Link) error {
	err := s.store.UpdateLink(ctx, link)
	switch {
	case errors.Is(err, storage.ErrSlugConflict):
		return ErrSlugTaken
	case errors.Is(err, storage.ErrLinkNotFound):
		return ErrLinkNotFound
	case err != nil:
		return fmt.Errorf("update link: %w", err)
	}
	return nil
}

// RenameSlug меняет слаг ссылки пользователя
func (s *LinkService) RenameSlug(ctx context.Context, id int64, userID, newSlug string) (*models.Link, error) {
	link, err := s.GetOwnedLink(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	slug, err := validate.Slug(newSlug)
	if err != nil {
		return nil, err
	}
	if slug == link.ShortURL {
		return link, nil
	}
	if err := s.ensureSlugFree(ctx, slug, id); err != nil {
		return nil, err
	}

	old := link.ShortURL
	link.ShortURL = slug
	if err := s.save(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("Slug renamed", zap.Int64("id", id), zap.String("from", old), zap.String("to", slug))
	return link, nil
}

// Customize сохраняет слаг, срок действия, категорию и признак QR-кода
func (s *LinkService) Customize(ctx context.Context, id int64, userID string, in CustomizeInput) (*models.Link, error) {
	link, err := s.GetOwnedLink(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	slug, err := validate.Slug(in.ShortURL)
	if err != nil {
		return nil, err
	}
	category, err := validate.Category(in.Category)
	if err != nil {
		return nil, err
	}
	if slug != link.ShortURL {
		if err := s.ensureSlugFree(ctx, slug, id); err != nil {
			return nil, err
		}
	}

	link.ShortURL = slug
	link.Category = category
	link.ExpiresAt = in.ExpiresAt
	link.HasQR = link.HasQR || in.GenerateQR
	if err := s.save(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("Link customized",
		zap.Int64("id", id),
		zap.String("short_url", slug),
		zap.String("category", category),
		zap.Bool("has_qr", link.HasQR))
	return link, nil
}

// Delete удаляет ссылку пользователя
func (s *LinkService) Delete(ctx context.Context, id int64, userID string) error {
	if _, err := s.GetOwnedLink(ctx, id, userID); err != nil {
		return err
	}
	if err := s.store.DeleteLink(ctx, id); err != nil {
		return s.mapNotFound(err)
	}
	s.logger.Info("Link deleted", zap.Int64("id", id), zap.String("user_id", userID))
	return nil
}

// PreviewQR строит QR-код для слага, который еще не сохранен
func (s *LinkService) PreviewQR(slug string) (models.QRPreview, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return models.QRPreview{}, ErrSlugBlank
	}

	shortLink := s.ShortLink(slug)
	png, err := RenderQR(shortLink)
	if err != nil {
		return models.QRPreview{}, err
	}
	return models.QRPreview{ShortLink: shortLink, QRDataURI: PNGDataURI(png)}, nil
}

// QRCode возвращает PNG с QR-кодом сохраненной ссылки
func (s *LinkService) QRCode(ctx context.Context, slug string) ([]byte, error) {
	link, err := s.store.GetLinkBySlug(ctx, slug)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return RenderQR(s.ShortLink(link.ShortURL))
}

// UserLinks возвращает ссылки пользователя, новые первыми
func (s *LinkService) UserLinks(ctx context.Context, userID string) ([]*models.Link, error) {
	return s.store.ListLinksByUser(ctx, userID)
}

// Dashboard собирает данные личного кабинета
func (s *LinkService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	links, err := s.store.ListLinksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Links:       links,
		TotalURLs:   len(links),
		TotalClicks: lo.SumBy(links, func(l *models.Link) int64 { return l.ClickCount }),
	}, nil
}

// HomeStats статистика для главной страницы
func (s *LinkService) HomeStats(ctx context.Context) (models.Stats, error) {
	return s.store.Stats(ctx)
}

// Analytics ищет ссылки и собирает распределение по категориям
func (s *LinkService) Analytics(ctx context.Context, query string) (*Analytics, error) {
	query = strings.TrimSpace(query)
	links, err := s.store.SearchLinks(ctx, query)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}

	return &Analytics{
		Links: links,
		Query: query,
		ChartLabels: lo.Map(counts, func(c models.CategoryCount, _ int) string {
			return models.CategoryTitle(c.Category)
		}),
		ChartData: lo.Map(counts, func(c models.CategoryCount, _ int) int64 { return c.Count }),
	}, nil
}

// CheckConnection проверяет доступность хранилища
func (s *LinkService) CheckConnection(ctx context.Context) error {
	checker, ok := s.store.(storage.DatabaseChecker)
	if !ok {
		return nil
	}
	return checker.CheckConnection(ctx)
}
