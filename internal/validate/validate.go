// Package validate содержит правила проверки пользовательского ввода:
// исходных URL, слагов, имен пользователей и категорий.
package validate

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/InQaaaaGit/shortenit/internal/models"
)

const (
	// MaxURLLength максимальная длина исходного URL.
	MaxURLLength = 200
	// MaxSlugLength максимальная длина слага.
	MaxSlugLength = 50
	// MaxUsernameLength максимальная длина имени пользователя.
	MaxUsernameLength = 150
	// MinPasswordLength минимальная длина пароля.
	MinPasswordLength = 8
	// MaxPasswordLength предел bcrypt в байтах.
	MaxPasswordLength = 72
)

var (
	ErrEmptyURL     = errors.New("Please enter a URL")
	ErrInvalidURL   = errors.New("Please enter a valid URL starting with http:// or https://")
	ErrURLTooLong   = errors.New("URL is too long")
	ErrSlugBlank    = errors.New("Slug cannot be blank.")
	ErrSlugInvalid  = errors.New("Slug may contain only letters, numbers, underscores and hyphens (max 50).")
	ErrUsername     = errors.New("Enter a valid username: letters, digits and @/./+/-/_ only (max 150).")
	ErrPasswordSize = errors.New("This password is too short. It must contain at least 8 characters.")
	ErrPasswordLong = errors.New("This password is too long. It must contain at most 72 bytes.")
	ErrCategory     = errors.New("Select a valid category.")
)

var (
	slugRegex     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
)

// IsValidURL сообщает, разбирается ли строка как абсолютный http(s) URL.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// OriginalURL проверяет URL, который пользователь хочет сократить.
// Возвращает очищенное от пробелов значение.
func OriginalURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyURL
	}
	if !IsValidURL(s) {
		return "", ErrInvalidURL
	}
	if len(s) > MaxURLLength {
		return "", ErrURLTooLong
	}
	return s, nil
}

// Slug проверяет пользовательский слаг.
func Slug(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrSlugBlank
	}
	err := validation.Validate(s,
		validation.Length(1, MaxSlugLength).Error(ErrSlugInvalid.Error()),
		validation.Match(slugRegex).Error(ErrSlugInvalid.Error()),
	)
	if err != nil {
		return "", ErrSlugInvalid
	}
	return s, nil
}

// Username проверяет имя пользователя.
func Username(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	err := validation.Validate(s,
		validation.Required,
		validation.Length(1, MaxUsernameLength),
		validation.Match(usernameRegex),
	)
	if err != nil {
		return "", ErrUsername
	}
	return s, nil
}

// Password проверяет длину пароля.
func Password(p string) error {
	switch {
	case len(p) < MinPasswordLength:
		return ErrPasswordSize
	case len(p) > MaxPasswordLength:
		return ErrPasswordLong
	}
	return nil
}

// Category проверяет категорию; пустое значение заменяется на "other".
func Category(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return models.CategoryOther, nil
	}
	in := make([]interface{}, 0, len(models.Categories))
	for _, c := range models.Categories {
		in = append(in, c)
	}
	if err := validation.Validate(s, validation.In(in...)); err != nil {
		return "", ErrCategory
	}
	return s, nil
}
