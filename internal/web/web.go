// Package web содержит HTML-шаблоны страниц и статические файлы,
// встроенные в бинарник.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/models"
	"github.com/InQaaaaGit/shortenit/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Страницы приложения.
const (
	PageIndex     = "index.html"
	PageShortURL  = "short_url.html"
	PageRegister  = "register.html"
	PageLogin     = "login.html"
	PageDashboard = "dashboard.html"
	PageMyURLs    = "my_urls.html"
	PageProfile   = "profile.html"
	PageCustomize = "customize.html"
	PageAnalytics = "analytics.html"
	PageExpired   = "expired.html"
	PageNotFound  = "404.html"
)

var pages = []string{
	PageIndex, PageShortURL, PageRegister, PageLogin, PageDashboard, PageMyURLs,
	PageProfile, PageCustomize, PageAnalytics, PageExpired, PageNotFound,
}

// DateTimeLocalLayout формат значения input type="datetime-local"
const DateTimeLocalLayout = "2006-01-02T15:04"

// Page общие данные любой страницы
type Page struct {
	Title     string
	User      *session.User
	Flash     string
	CSRFToken string
	CSRFField template.HTML
	BaseURL   string
	Data      any
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	},
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
	"categoryTitle": models.CategoryTitle,
	"categories": func() []string {
		return models.Categories
	},
}

// Renderer рендерит страницы в общем каркасе base.html
type Renderer struct {
	templates map[string]*template.Template
	logger    *zap.Logger
}

// NewRenderer разбирает все шаблоны
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template, len(pages)),
		logger:    logger,
	}
	for _, page := range pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS,
			"templates/base.html", "templates/partials.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.templates[page] = t
	}
	return r, nil
}

// Render выполняет шаблон страницы и пишет ответ с кодом status
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data *Page) {
	t, ok := r.templates[page]
	if !ok {
		r.logger.Error("Unknown template", zap.String("page", page))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		r.logger.Error("Error rendering template", zap.String("page", page), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("Error writing response", zap.Error(err))
	}
}

// Static раздает встроенные файлы по путям /static/...
func Static() http.Handler {
	return http.FileServer(http.FS(staticFS))
}
