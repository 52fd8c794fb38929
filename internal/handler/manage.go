package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/models"
	"github.com/InQaaaaGit/shortenit/internal/service"
	"github.com/InQaaaaGit/shortenit/internal/web"
)

const (
	invalidExpiryMessage = "Enter a valid date/time."
	maxSlugBodySize      = 1 << 20
)

// CustomizeForm значения полей формы настройки
type CustomizeForm struct {
	ShortURL   string
	ExpiryDate string
	Category   string
	GenerateQR bool
}

// CustomizeData данные страницы настройки ссылки
type CustomizeData struct {
	Link  *models.Link
	Form  CustomizeForm
	Error string
}

func formFromLink(link *models.Link) CustomizeForm {
	f := CustomizeForm{ShortURL: link.ShortURL, Category: link.Category}
	if link.ExpiresAt != nil {
		f.ExpiryDate = link.ExpiresAt.UTC().Format(web.DateTimeLocalLayout)
	}
	return f
}

// parseExpiry разбирает значение datetime-local, пустое значение снимает срок
func parseExpiry(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(web.DateTimeLocalLayout, raw, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ownedLink загружает ссылку пользователя из параметра id,
// отвечая страницей 404 при ошибке
func (h *Handler) ownedLink(w http.ResponseWriter, r *http.Request) (*models.Link, bool) {
	id, ok := linkID(r)
	if !ok {
		h.NotFound(w, r)
		return nil, false
	}
	link, err := h.links.GetOwnedLink(r.Context(), id, userID(r))
	if errors.Is(err, service.ErrLinkNotFound) {
		h.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, "Error loading link", err)
		return nil, false
	}
	return link, true
}

// HandleCustomizeForm показывает форму настройки ссылки
func (h *Handler) HandleCustomizeForm(w http.ResponseWriter, r *http.Request) {
	link, ok := h.ownedLink(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, web.PageCustomize, CustomizeData{Link: link, Form: formFromLink(link)})
}

// HandleCustomize сохраняет слаг, срок действия, категорию и QR-код
func (h *Handler) HandleCustomize(w http.ResponseWriter, r *http.Request) {
	link, ok := h.ownedLink(w, r)
	if !ok {
		return
	}

	form := CustomizeForm{
		ShortURL:   r.PostFormValue("short_url"),
		ExpiryDate: r.PostFormValue("expiry_date"),
		Category:   r.PostFormValue("category"),
		GenerateQR: r.PostFormValue("generate_qr") != "",
	}
	fail := func(msg string) {
		h.render(w, r, http.StatusBadRequest, web.PageCustomize, CustomizeData{Link: link, Form: form, Error: msg})
	}

	expires, err := parseExpiry(form.ExpiryDate)
	if err != nil {
		fail(invalidExpiryMessage)
		return
	}

	_, err = h.links.Customize(r.Context(), link.ID, userID(r), service.CustomizeInput{
		ShortURL:   form.ShortURL,
		ExpiresAt:  expires,
		Category:   form.Category,
		GenerateQR: form.GenerateQR,
	})
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		h.NotFound(w, r)
		return
	case service.IsUserError(err):
		fail(err.Error())
		return
	case err != nil:
		h.serverError(w, "Error customizing link", err)
		return
	}

	h.sessions.SetFlash(w, "Your link has been updated!")
	http.Redirect(w, r, "/dashboard/", http.StatusFound)
}

// HandleAnalytics показывает поиск по всем ссылкам и распределение по категориям
func (h *Handler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	data, err := h.links.Analytics(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.serverError(w, "Error loading analytics", err)
		return
	}
	h.render(w, r, http.StatusOK, web.PageAnalytics, data)
}

// HandlePreviewQR строит QR-код для введенного, но не сохраненного слага
func (h *Handler) HandlePreviewQR(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PostFormValue("slug"))
	if slug == "" {
		h.writeJSONError(w, http.StatusBadRequest, "Slug cannot be empty.")
		return
	}

	preview, err := h.links.PreviewQR(slug)
	if err != nil {
		h.logger.Error("Error rendering QR preview", zap.Error(err))
		h.writeJSONError(w, http.StatusInternalServerError, internalMessage)
		return
	}
	h.writeJSON(w, http.StatusOK, preview)
}

// readSlug достает новый слаг из тела: сначала как JSON при любом
// Content-Type, затем как форму. Битый JSON с заявленным application/json
// считается ошибкой.
func readSlug(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSlugBodySize))
	if err != nil {
		return "", err
	}

	var req models.RenameSlugRequest
	jsonErr := json.Unmarshal(body, &req)
	if jsonErr == nil {
		return req.ShortURL, nil
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), contentTypeJSON) {
		return "", jsonErr
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	return r.PostFormValue("short_url"), nil
}

// HandleUpdateSlug переименовывает слаг ссылки пользователя
func (h *Handler) HandleUpdateSlug(w http.ResponseWriter, r *http.Request) {
	id, ok := linkID(r)
	if !ok {
		h.writeJSONError(w, http.StatusNotFound, urlNotFoundMessage)
		return
	}

	slug, err := readSlug(r)
	if err != nil {
		h.writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	link, err := h.links.RenameSlug(r.Context(), id, userID(r), slug)
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		h.writeJSONError(w, http.StatusNotFound, urlNotFoundMessage)
		return
	case service.IsUserError(err):
		h.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("Error renaming slug", zap.Int64("id", id), zap.Error(err))
		h.writeJSONError(w, http.StatusInternalServerError, internalMessage)
		return
	}

	h.writeJSON(w, http.StatusOK, models.RenameSlugResponse{Success: true, ShortURL: link.ShortURL})
}

// HandleDeleteURL удаляет ссылку пользователя
func (h *Handler) HandleDeleteURL(w http.ResponseWriter, r *http.Request) {
	id, ok := linkID(r)
	if !ok {
		h.writeJSON(w, http.StatusNotFound, models.DeleteResponse{Error: urlNotFoundMessage})
		return
	}

	err := h.links.Delete(r.Context(), id, userID(r))
	if errors.Is(err, service.ErrLinkNotFound) {
		h.writeJSON(w, http.StatusNotFound, models.DeleteResponse{Error: urlNotFoundMessage})
		return
	}
	if err != nil {
		h.logger.Error("Error deleting link", zap.Int64("id", id), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, models.DeleteResponse{Error: internalMessage})
		return
	}

	h.writeJSON(w, http.StatusOK, models.DeleteResponse{Deleted: true, Success: true})
}
