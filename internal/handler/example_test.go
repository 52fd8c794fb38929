package handler_test

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/config"
	"github.com/InQaaaaGit/shortenit/internal/handler"
	"github.com/InQaaaaGit/shortenit/internal/service"
	"github.com/InQaaaaGit/shortenit/internal/session"
	"github.com/InQaaaaGit/shortenit/internal/storage"
	"github.com/InQaaaaGit/shortenit/internal/web"
)

// ExampleHandler_HandleDeleteURL демонстрирует удаление ссылки владельцем
// и повторный запрос к уже удаленной ссылке.
func ExampleHandler_HandleDeleteURL() {
	cfg := &config.Config{BaseURL: "http://example.com"}
	logger := zap.NewNop()

	store := storage.NewMemoryStorage(logger)
	links := service.NewLinkService(store, nil, cfg.BaseURL, 6, logger)

	renderer, err := web.NewRenderer(logger)
	if err != nil {
		log.Fatal(err)
	}
	h := handler.NewHandler(links, nil, session.NewManager("secret", time.Hour, false), renderer, cfg, logger)

	link, err := links.Shorten(context.Background(), "https://practicum.yandex.ru/", "user-1")
	if err != nil {
		log.Fatal(err)
	}

	// Имитируем вошедшего пользователя
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := session.WithUser(req.Context(), session.User{ID: "user-1", Username: "alice"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/delete-url/{id}/", h.HandleDeleteURL)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/delete-url/%d/", link.ID), nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		fmt.Printf("%d %s", rr.Code, rr.Body.String())
	}

	// Output:
	// 200 {"deleted":true,"success":true}
	// 404 {"deleted":false,"success":false,"error":"URL not found"}
}
