// Package app собирает зависимости приложения, маршруты и управляет
// жизненным циклом HTTP сервера.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/InQaaaaGit/shortenit/internal/config"
	"github.com/InQaaaaGit/shortenit/internal/handler"
	"github.com/InQaaaaGit/shortenit/internal/middleware"
	"github.com/InQaaaaGit/shortenit/internal/server"
	"github.com/InQaaaaGit/shortenit/internal/service"
	"github.com/InQaaaaGit/shortenit/internal/session"
	"github.com/InQaaaaGit/shortenit/internal/storage"
	"github.com/InQaaaaGit/shortenit/internal/web"
)

const shutdownTimeout = 10 * time.Second

// App представляет приложение сервиса сокращения ссылок
type App struct {
	config   *config.Config
	router   *chi.Mux
	logger   *zap.Logger
	handler  *handler.Handler
	sessions *session.Manager
	store    storage.Storage
	clicks   *service.ClickRecorder
}

// NewApp создает хранилище, сервисы и обработчики и настраивает маршруты
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg.SecretKey == config.DefaultSecretKey && !cfg.Debug {
		logger.Warn("Default secret key in use, set SECRET_KEY or -k",
			zap.String("server_address", cfg.ServerAddress))
	}

	store, err := storage.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating storage: %w", err)
	}

	renderer, err := web.NewRenderer(logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("error loading templates: %w", err)
	}

	clicks := service.NewClickRecorder(store, cfg.ClickFlushInterval, cfg.ClickBatchSize, logger)
	links := service.NewLinkService(store, clicks, cfg.BaseURL, cfg.SlugLength, logger)
	users := service.NewUserService(store, 0, logger)
	sessions := session.NewManager(cfg.SecretKey, cfg.SessionTTL, cfg.IsHTTPSEnabled())

	a := &App{
		config:   cfg,
		router:   chi.NewRouter(),
		logger:   logger,
		handler:  handler.NewHandler(links, users, sessions, renderer, cfg, logger),
		sessions: sessions,
		store:    store,
		clicks:   clicks,
	}
	a.setupRoutes()
	return a, nil
}

// setupRoutes регистрирует middleware и маршруты
func (a *App) setupRoutes() {
	h := a.handler
	r := a.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggerMiddleware(a.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.GzipMiddleware)

	r.NotFound(h.NotFound)
	r.Get("/ping", h.HandlePing)
	r.Handle("/static/*", web.Static())
	r.Get("/qr/{slug}.png", h.HandleQRCode)

	if a.config.Debug {
		r.Mount("/debug", chimiddleware.Profiler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(a.config.SecretKey, a.config.IsHTTPSEnabled(), a.logger))
		r.Use(middleware.Session(a.sessions))

		r.Get("/", h.HandleIndex)
		r.Post("/", h.HandleCreateURL)
		r.Get("/register/", h.HandleRegisterForm)
		r.Post("/register/", h.HandleRegister)
		r.Get("/login/", h.HandleLoginForm)
		r.Post("/login/", h.HandleLogin)
		r.Get("/logout/", h.HandleLogout)
		r.Post("/logout/", h.HandleLogout)
		r.Get("/expired/{slug}/", h.HandleExpired)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireLogin)
			r.Get("/dashboard/", h.HandleDashboard)
			r.Get("/my-urls/", h.HandleMyURLs)
			r.Get("/profile/", h.HandleProfile)
			r.Get("/customize/{id}/", h.HandleCustomizeForm)
			r.Post("/customize/{id}/", h.HandleCustomize)
			r.Get("/analytics/", h.HandleAnalytics)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireLoginJSON)
			r.Post("/preview-qr/", h.HandlePreviewQR)
			r.Patch("/update-slug/{id}/", h.HandleUpdateSlug)
			r.Post("/update-slug/{id}/", h.HandleUpdateSlug)
			r.Post("/delete-url/{id}/", h.HandleDeleteURL)
		})
	})

	r.Get("/{slug}/", h.HandleRedirect)
	r.Get("/{slug}", h.HandleRedirect)
}

// Router возвращает корневой обработчик приложения
func (a *App) Router() http.Handler {
	return a.router
}

// Run запускает сервер и блокируется до отмены ctx или ошибки сервера,
// после чего останавливает сервер, дописывает клики и закрывает хранилище
func (a *App) Run(ctx context.Context) error {
	srv := server.NewHTTPServer(a.router, a.config, a.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	return errors.Join(err, a.Close())
}

// Close останавливает запись кликов и закрывает хранилище
func (a *App) Close() error {
	return errors.Join(a.clicks.Close(), a.store.Close())
}
