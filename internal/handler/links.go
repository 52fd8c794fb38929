package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/models"
	"github.com/InQaaaaGit/shortenit/internal/service"
	"github.com/InQaaaaGit/shortenit/internal/web"
)

// IndexData данные главной страницы
type IndexData struct {
	URL   string
	Error string
	Stats models.Stats
}

// ShortURLData данные страницы с готовой ссылкой
type ShortURLData struct {
	Link      *models.Link
	ShortLink string
}

// ExpiredData данные страницы просроченной ссылки
type ExpiredData struct {
	Slug string
}

// HandleIndex показывает форму сокращения и общую статистику
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, r, http.StatusOK, IndexData{})
}

func (h *Handler) renderIndex(w http.ResponseWriter, r *http.Request, status int, data IndexData) {
	stats, err := h.links.HomeStats(r.Context())
	if err != nil {
		h.serverError(w, "Error loading stats", err)
		return
	}
	data.Stats = stats
	h.render(w, r, status, web.PageIndex, data)
}

// HandleCreateURL создает короткую ссылку из формы главной страницы
func (h *Handler) HandleCreateURL(w http.ResponseWriter, r *http.Request) {
	originalURL := r.PostFormValue("original_url")

	link, err := h.links.Shorten(r.Context(), originalURL, userID(r))
	if err != nil {
		if service.IsUserError(err) {
			h.renderIndex(w, r, http.StatusBadRequest, IndexData{URL: originalURL, Error: err.Error()})
			return
		}
		h.serverError(w, "Error creating short URL", err)
		return
	}

	h.render(w, r, http.StatusCreated, web.PageShortURL, ShortURLData{
		Link:      link,
		ShortLink: h.links.ShortLink(link.ShortURL),
	})
}

// HandleRedirect перенаправляет по короткой ссылке
func (h *Handler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	link, err := h.links.Resolve(r.Context(), slug)
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		h.NotFound(w, r)
		return
	case errors.Is(err, service.ErrLinkExpired):
		h.logger.Info("Expired link requested", zap.String("short_url", slug))
		http.Redirect(w, r, "/expired/"+url.PathEscape(slug)+"/", http.StatusFound)
		return
	case err != nil:
		h.serverError(w, "Error resolving short URL", err)
		return
	}

	http.Redirect(w, r, link.OriginalURL, http.StatusFound)
}

// HandleExpired сообщает, что ссылка больше не действует
func (h *Handler) HandleExpired(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusGone, web.PageExpired, ExpiredData{Slug: chi.URLParam(r, "slug")})
}

// HandleQRCode отдает PNG с QR-кодом ссылки
func (h *Handler) HandleQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.links.QRCode(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, service.ErrLinkNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, "Error rendering QR code", err)
		return
	}

	w.Header().Set("Content-Type", contentTypePNG)
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(png); err != nil {
		h.logger.Error("Error writing response", zap.Error(err))
	}
}
