package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		password_hash BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS links (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NULL,
		original_url VARCHAR(200) NOT NULL,
		short_url VARCHAR(50) NOT NULL UNIQUE,
		click_count BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NULL,
		category VARCHAR(20) NOT NULL DEFAULT 'other',
		has_qr BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS links_user_id_idx ON links (user_id)`,
}

// pgUniqueViolation код ошибки PostgreSQL unique_violation
const pgUniqueViolation = "23505"

func isPostgresUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

// NewPostgresStorage подключается к PostgreSQL и создает таблицы
func NewPostgresStorage(ctx context.Context, dsn string, logger *zap.Logger) (*SQLStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	return newSQLStorage(ctx, db, dialect{
		name:              "postgres",
		numbered:          true,
		schema:            postgresSchema,
		isUniqueViolation: isPostgresUniqueViolation,
	}, logger)
}
