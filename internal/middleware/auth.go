package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/InQaaaaGit/shortenit/internal/models"
	"github.com/InQaaaaGit/shortenit/internal/session"
)

// LoginPath адрес страницы входа
const LoginPath = "/login/"

// Session загружает пользователя из куки сессии в контекст запроса
func Session(m *session.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, ok := m.Load(r); ok {
				r = r.WithContext(session.WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLogin перенаправляет анонимов на страницу входа с ?next=
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.FromContext(r.Context()); !ok {
			target := LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireLoginJSON отвечает анонимам 401 с JSON-ошибкой
func RequireLoginJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.FromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
