// Package handler содержит HTTP-обработчики страниц, JSON-эндпоинтов
// и перехода по коротким ссылкам.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/config"
	"github.com/InQaaaaGit/shortenit/internal/models"
	"github.com/InQaaaaGit/shortenit/internal/service"
	"github.com/InQaaaaGit/shortenit/internal/session"
	"github.com/InQaaaaGit/shortenit/internal/web"
)

const (
	contentTypeJSON    = "application/json"
	contentTypePNG     = "image/png"
	urlNotFoundMessage = "URL not found"
	internalMessage    = "Internal server error"
)

// LinkService определяет операции над ссылками, нужные обработчикам
type LinkService interface {
	ShortLink(slug string) string
	Shorten(ctx context.Context, originalURL, userID string) (*models.Link, error)
	Resolve(ctx context.Context, slug string) (*models.Link, error)
	GetOwnedLink(ctx context.Context, id int64, userID string) (*models.Link, error)
	RenameSlug(ctx context.Context, id int64, userID, slug string) (*models.Link, error)
	Customize(ctx context.Context, id int64, userID string, in service.CustomizeInput) (*models.Link, error)
	Delete(ctx context.Context, id int64, userID string) error
	PreviewQR(slug string) (models.QRPreview, error)
	QRCode(ctx context.Context, slug string) ([]byte, error)
	UserLinks(ctx context.Context, userID string) ([]*models.Link, error)
	Dashboard(ctx context.Context, userID string) (*service.Dashboard, error)
	HomeStats(ctx context.Context) (models.Stats, error)
	Analytics(ctx context.Context, query string) (*service.Analytics, error)
	CheckConnection(ctx context.Context) error
}

// UserService определяет операции над пользователями
type UserService interface {
	Register(ctx context.Context, username, password1, password2 string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Handler обработчики HTTP-запросов приложения
type Handler struct {
	links    LinkService
	users    UserService
	sessions *session.Manager
	renderer *web.Renderer
	cfg      *config.Config
	logger   *zap.Logger
}

// NewHandler создает обработчики
func NewHandler(links LinkService, users UserService, sessions *session.Manager, renderer *web.Renderer, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		links:    links,
		users:    users,
		sessions: sessions,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}
}

// page собирает общие данные страницы. Забирает flash-сообщение,
// поэтому вызывается до записи ответа.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, data any) *web.Page {
	p := &web.Page{
		Flash:     h.sessions.PopFlash(w, r),
		CSRFToken: csrf.Token(r),
		CSRFField: csrf.TemplateField(r),
		BaseURL:   h.cfg.BaseURL,
		Data:      data,
	}
	if u, ok := session.FromContext(r.Context()); ok {
		p.User = &u
	}
	return p
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	h.renderer.Render(w, status, name, h.page(w, r, data))
}

func (h *Handler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	http.Error(w, internalMessage, http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, models.ErrorResponse{Error: msg})
}

// userID возвращает ID вошедшего пользователя или пустую строку
func userID(r *http.Request) string {
	u, _ := session.FromContext(r.Context())
	return u.ID
}

func linkID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// NotFound отдает страницу 404
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, web.PageNotFound, nil)
}

// HandlePing проверяет соединение с хранилищем
func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if err := h.links.CheckConnection(r.Context()); err != nil {
		h.logger.Error("Storage connection error", zap.Error(err))
		http.Error(w, "Storage connection error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
