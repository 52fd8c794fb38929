package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/middleware"
	"github.com/InQaaaaGit/shortenit/internal/service"
	"github.com/InQaaaaGit/shortenit/internal/session"
	"github.com/InQaaaaGit/shortenit/internal/storage"
	"github.com/InQaaaaGit/shortenit/internal/web"
)

// AuthData данные форм входа и регистрации
type AuthData struct {
	Username string
	Error    string
	Next     string
}

// ProfileData данные страницы профиля
type ProfileData struct {
	Username    string
	CreatedAt   time.Time
	TotalURLs   int
	TotalClicks int64
}

// safeNext оставляет только локальный путь для редиректа после входа
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

// HandleRegisterForm показывает форму регистрации
func (h *Handler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageRegister, AuthData{})
}

// HandleRegister создает пользователя и сразу выполняет вход
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PostFormValue("username"))

	user, err := h.users.Register(r.Context(), username,
		r.PostFormValue("password1"), r.PostFormValue("password2"))
	if err != nil {
		if service.IsUserError(err) {
			h.render(w, r, http.StatusBadRequest, web.PageRegister, AuthData{Username: username, Error: err.Error()})
			return
		}
		h.serverError(w, "Error registering user", err)
		return
	}

	if err := h.sessions.Login(w, user); err != nil {
		h.serverError(w, "Error creating session", err)
		return
	}
	h.sessions.SetFlash(w, "Account created successfully!")
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLoginForm показывает форму входа
func (h *Handler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageLogin, AuthData{Next: safeNext(r.URL.Query().Get("next"))})
}

// HandleLogin проверяет учетные данные и выставляет куку сессии
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	next := safeNext(r.PostFormValue("next"))

	user, err := h.users.Authenticate(r.Context(), username, r.PostFormValue("password"))
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.render(w, r, http.StatusBadRequest, web.PageLogin, AuthData{Username: username, Error: err.Error(), Next: next})
		return
	}
	if err != nil {
		h.serverError(w, "Error authenticating user", err)
		return
	}

	if err := h.sessions.Login(w, user); err != nil {
		h.serverError(w, "Error creating session", err)
		return
	}
	h.logger.Info("User logged in", zap.String("user_id", user.ID))
	h.sessions.SetFlash(w, "Welcome back, "+user.Username+"!")
	http.Redirect(w, r, next, http.StatusFound)
}

// HandleLogout завершает сессию
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w)
	h.sessions.SetFlash(w, "You have been logged out successfully.")
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleDashboard показывает ссылки пользователя и суммарные клики
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.links.Dashboard(r.Context(), userID(r))
	if err != nil {
		h.serverError(w, "Error loading dashboard", err)
		return
	}
	h.render(w, r, http.StatusOK, web.PageDashboard, dash)
}

// HandleMyURLs показывает список ссылок пользователя
func (h *Handler) HandleMyURLs(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.UserLinks(r.Context(), userID(r))
	if err != nil {
		h.serverError(w, "Error loading user URLs", err)
		return
	}
	h.render(w, r, http.StatusOK, web.PageMyURLs, &service.Dashboard{Links: links, TotalURLs: len(links)})
}

// HandleProfile показывает профиль пользователя
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	current, _ := session.FromContext(r.Context())

	user, err := h.users.GetUser(r.Context(), current.ID)
	if errors.Is(err, storage.ErrUserNotFound) {
		h.sessions.Logout(w)
		http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
		return
	}
	if err != nil {
		h.serverError(w, "Error loading user", err)
		return
	}

	dash, err := h.links.Dashboard(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, "Error loading dashboard", err)
		return
	}
	h.render(w, r, http.StatusOK, web.PageProfile, ProfileData{
		Username:    user.Username,
		CreatedAt:   user.CreatedAt,
		TotalURLs:   dash.TotalURLs,
		TotalClicks: dash.TotalClicks,
	})
}
