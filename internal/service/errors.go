package service

import (
	"errors"

	"github.com/InQaaaaGit/shortenit/internal/validate"
)

var (
	// ErrLinkNotFound ссылка не существует или принадлежит другому пользователю
	ErrLinkNotFound = errors.New("URL not found")
	// ErrLinkExpired срок действия ссылки истек
	ErrLinkExpired = errors.New("URL has expired")
	// ErrSlugTaken слаг занят другой ссылкой
	ErrSlugTaken = errors.New("That slug is already taken.")
	// ErrSlugExhausted не удалось подобрать свободный случайный слаг
	ErrSlugExhausted = errors.New("could not generate a unique slug")

	ErrSlugBlank   = validate.ErrSlugBlank
	ErrSlugInvalid = validate.ErrSlugInvalid
	ErrEmptyURL    = validate.ErrEmptyURL
	ErrInvalidURL  = validate.ErrInvalidURL
	ErrURLTooLong  = validate.ErrURLTooLong

	// ErrUsernameTaken имя пользователя занято
	ErrUsernameTaken = errors.New("A user with that username already exists.")
	// ErrPasswordMismatch пароли в форме регистрации не совпали
	ErrPasswordMismatch = errors.New("The two password fields didn't match.")
	// ErrInvalidCredentials неверное имя пользователя или пароль
	ErrInvalidCredentials = errors.New("Invalid username or password.")
)

// userErrors ошибки ввода, текст которых показывается пользователю как есть
var userErrors = []error{
	ErrEmptyURL,
	ErrInvalidURL,
	ErrURLTooLong,
	ErrSlugBlank,
	ErrSlugInvalid,
	ErrSlugTaken,
	validate.ErrCategory,
	validate.ErrUsername,
	validate.ErrPasswordSize,
	validate.ErrPasswordLong,
	ErrUsernameTaken,
	ErrPasswordMismatch,
	ErrInvalidCredentials,
}

// IsUserError сообщает, что ошибка вызвана вводом пользователя
func IsUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
