// Package session хранит вход пользователя в подписанной JWT-куке
// и одноразовые flash-сообщения.
package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/InQaaaaGit/shortenit/internal/models"
)

const (
	// CookieName имя куки с токеном сессии
	CookieName = "session"
	// FlashCookieName имя куки с flash-сообщением
	FlashCookieName = "flash"

	flashTTL = time.Minute
)

// Claims содержимое токена сессии
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// User вошедший пользователь
type User struct {
	ID       string
	Username string
}

type contextKey struct{}

// WithUser кладет пользователя в контекст
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext достает пользователя из контекста
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(contextKey{}).(User)
	return u, ok && u.ID != ""
}

// Manager выдает и проверяет куки сессии
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewManager создает менеджер сессий. secure включает флаг Secure у кук.
func NewManager(secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

func (m *Manager) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Token подписывает токен для пользователя
func (m *Manager) Token(user *models.User) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Parse проверяет токен и возвращает пользователя
func (m *Manager) Parse(token string) (User, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return User{}, err
	}
	if claims.UserID == "" {
		return User{}, fmt.Errorf("session token without user id")
	}
	return User{ID: claims.UserID, Username: claims.Username}, nil
}

// Login выставляет куку сессии
func (m *Manager) Login(w http.ResponseWriter, user *models.User) error {
	token, err := m.Token(user)
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(CookieName, token, m.now().Add(m.ttl)))
	return nil
}

// Logout удаляет куку сессии
func (m *Manager) Logout(w http.ResponseWriter) {
	c := m.cookie(CookieName, "", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// Load читает пользователя из куки запроса. Невалидный или
// просроченный токен означает анонима.
func (m *Manager) Load(r *http.Request) (User, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return User{}, false
	}
	u, err := m.Parse(c.Value)
	if err != nil {
		return User{}, false
	}
	return u, true
}

// SetFlash сохраняет сообщение для следующей страницы
func (m *Manager) SetFlash(w http.ResponseWriter, msg string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(msg))
	http.SetCookie(w, m.cookie(FlashCookieName, value, m.now().Add(flashTTL)))
}

// PopFlash возвращает сообщение и удаляет куку
func (m *Manager) PopFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(FlashCookieName)
	if err != nil {
		return ""
	}
	gone := m.cookie(FlashCookieName, "", time.Unix(0, 0))
	gone.MaxAge = -1
	http.SetCookie(w, gone)

	msg, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}
