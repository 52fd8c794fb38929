package middleware

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

const (
	// CSRFHeader заголовок, в котором скрипт передает токен
	CSRFHeader = "X-CSRFToken"
	// CSRFField имя скрытого поля формы
	CSRFField = "csrfmiddlewaretoken"
)

// CSRF защищает небезопасные методы токеном из формы или заголовка.
// Без HTTPS запросы помечаются как plaintext, иначе gorilla/csrf
// требует Referer с той же схемой.
func CSRF(secret string, secure bool, logger *zap.Logger) func(next http.Handler) http.Handler {
	key := sha256.Sum256([]byte(secret))
	protect := csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader(CSRFHeader),
		csrf.FieldName(CSRFField),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("CSRF check failed",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
				zap.Error(csrf.FailureReason(r)))
			http.Error(w, "Forbidden - CSRF token invalid", http.StatusForbidden)
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		if secure {
			return protected
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
