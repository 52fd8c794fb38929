package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/models"
)

// dialect описывает различия между поддерживаемыми SQL-движками
type dialect struct {
	name string
	// numbered заменяет ? на $1, $2, ...
	numbered bool
	schema   []string
	// isUniqueViolation распознает нарушение ограничения уникальности
	isUniqueViolation func(err error) bool
}

// SQLStorage реализует Storage поверх database/sql
type SQLStorage struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

func newSQLStorage(ctx context.Context, db *sql.DB, d dialect, logger *zap.Logger) (*SQLStorage, error) {
	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close DB connection after ping error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("database connection check error: %w", err)
	}

	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				logger.Error("Failed to close DB connection after migration error", zap.Error(closeErr))
			}
			return nil, fmt.Errorf("schema migration error: %w", err)
		}
	}

	return &SQLStorage{db: db, dialect: d, logger: logger}, nil
}

// rebind приводит плейсхолдеры запроса к виду, понятному драйверу
func (s *SQLStorage) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const linkColumns = `id, user_id, original_url, short_url, click_count, created_at, expires_at, category, has_qr`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (*models.Link, error) {
	var (
		link    models.Link
		userID  sql.NullString
		expires sql.NullTime
	)
	err := row.Scan(&link.ID, &userID, &link.OriginalURL, &link.ShortURL, &link.ClickCount,
		&link.CreatedAt, &expires, &link.Category, &link.HasQR)
	if err != nil {
		return nil, err
	}
	link.UserID = userID.String
	link.CreatedAt = link.CreatedAt.UTC()
	if expires.Valid {
		t := expires.Time.UTC()
		link.ExpiresAt = &t
	}
	return &link, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// CreateLink вставляет ссылку и возвращает присвоенный ID
func (s *SQLStorage) CreateLink(ctx context.Context, link *models.Link) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	if link.Category == "" {
		link.Category = models.CategoryOther
	}

	query := s.rebind(`INSERT INTO links (user_id, original_url, short_url, click_count, created_at, expires_at, category, has_qr)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := s.db.QueryRowContext(ctx, query,
		nullString(link.UserID), link.OriginalURL, link.ShortURL, link.ClickCount,
		link.CreatedAt.UTC(), nullTime(link.ExpiresAt), link.Category, link.HasQR,
	).Scan(&link.ID)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return ErrSlugConflict
		}
		return fmt.Errorf("create link error: %w", err)
	}
	return nil
}

func (s *SQLStorage) getLink(ctx context.Context, where string, arg any) (*models.Link, error) {
	query := s.rebind(`SELECT ` + linkColumns + ` FROM links WHERE ` + where)
	link, err := scanLink(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("get link error: %w", err)
	}
	return link, nil
}

// GetLinkByID получает ссылку по идентификатору
func (s *SQLStorage) GetLinkByID(ctx context.Context, id int64) (*models.Link, error) {
	return s.getLink(ctx, "id = ?", id)
}

// GetLinkBySlug получает ссылку по слагу
func (s *SQLStorage) GetLinkBySlug(ctx context.Context, slug string) (*models.Link, error) {
	return s.getLink(ctx, "short_url = ?", slug)
}

// UpdateLink обновляет изменяемые поля ссылки
func (s *SQLStorage) UpdateLink(ctx context.Context, link *models.Link) error {
	query := s.rebind(`UPDATE links SET short_url = ?, expires_at = ?, category = ?, has_qr = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query,
		link.ShortURL, nullTime(link.ExpiresAt), link.Category, link.HasQR, link.ID)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return ErrSlugConflict
		}
		return fmt.Errorf("update link error: %w", err)
	}
	return expectAffected(res, ErrLinkNotFound)
}

// DeleteLink удаляет ссылку
func (s *SQLStorage) DeleteLink(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM links WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete link error: %w", err)
	}
	return expectAffected(res, ErrLinkNotFound)
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// SlugExists проверяет занятость слага другой ссылкой
func (s *SQLStorage) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	query := s.rebind(`SELECT EXISTS (SELECT 1 FROM links WHERE short_url = ? AND id <> ?)`)
	if err := s.db.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("slug exists error: %w", err)
	}
	return exists, nil
}

func (s *SQLStorage) queryLinks(ctx context.Context, query string, args ...any) ([]*models.Link, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query links error: %w", err)
	}
	defer rows.Close()

	var result []*models.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link error: %w", err)
		}
		result = append(result, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links error: %w", err)
	}
	return result, nil
}

// ListLinksByUser возвращает ссылки пользователя
func (s *SQLStorage) ListLinksByUser(ctx context.Context, userID string) ([]*models.Link, error) {
	return s.queryLinks(ctx,
		`SELECT `+linkColumns+` FROM links WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

// escapeLike экранирует спецсимволы шаблона LIKE
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// SearchLinks ищет ссылки по подстроке без учета регистра
func (s *SQLStorage) SearchLinks(ctx context.Context, query string) ([]*models.Link, error) {
	if query == "" {
		return s.queryLinks(ctx, `SELECT `+linkColumns+` FROM links ORDER BY created_at DESC, id DESC`)
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return s.queryLinks(ctx,
		`SELECT `+linkColumns+` FROM links
		WHERE LOWER(short_url) LIKE ? ESCAPE '\' OR LOWER(original_url) LIKE ? ESCAPE '\'
		ORDER BY created_at DESC, id DESC`, pattern, pattern)
}

// AddClicks увеличивает счетчики переходов в одной транзакции
func (s *SQLStorage) AddClicks(ctx context.Context, clicks map[int64]int64) error {
	if len(clicks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transaction start error: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback после Commit безопасен

	stmt, err := tx.PrepareContext(ctx, s.rebind(`UPDATE links SET click_count = click_count + ? WHERE id = ?`))
	if err != nil {
		return fmt.Errorf("query preparation error: %w", err)
	}
	defer stmt.Close()

	for id, n := range clicks {
		if _, err := stmt.ExecContext(ctx, n, id); err != nil {
			return fmt.Errorf("add clicks error for link %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit error: %w", err)
	}
	return nil
}

// Stats считает агрегаты по всем ссылкам
func (s *SQLStorage) Stats(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(click_count), 0), COUNT(DISTINCT user_id) FROM links`,
	).Scan(&st.TotalURLs, &st.TotalClicks, &st.ActiveUsers)
	if err != nil {
		return models.Stats{}, fmt.Errorf("stats error: %w", err)
	}
	return st, nil
}

// CategoryCounts группирует ссылки по категориям
func (s *SQLStorage) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM links GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("category counts error: %w", err)
	}
	defer rows.Close()

	var result []models.CategoryCount
	for rows.Next() {
		var cc models.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan category count error: %w", err)
		}
		result = append(result, cc)
	}
	return result, rows.Err()
}

// CreateUser сохраняет пользователя
func (s *SQLStorage) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	query := s.rebind(`INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query, user.ID, user.Username, user.PasswordHash, user.CreatedAt.UTC())
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("create user error: %w", err)
	}
	return nil
}

func (s *SQLStorage) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	query := s.rebind(`SELECT id, username, password_hash, created_at FROM users WHERE ` + where)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user error: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// GetUserByID получает пользователя по идентификатору
func (s *SQLStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

// GetUserByUsername получает пользователя по имени
func (s *SQLStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "username = ?", username)
}

// CheckConnection проверяет соединение с базой данных
func (s *SQLStorage) CheckConnection(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close закрывает соединение с базой данных
func (s *SQLStorage) Close() error {
	return s.db.Close()
}
