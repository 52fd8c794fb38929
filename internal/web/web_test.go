package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/models"
	"github.com/InQaaaaGit/shortenit/internal/session"
)

func TestRenderer_Index(t *testing.T) {
	r, err := NewRenderer(zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.Render(rec, http.StatusBadRequest, PageIndex, &Page{
		CSRFToken: "token-123",
		Data: map[string]any{
			"URL":   "not a url",
			"Error": "Please enter a valid URL starting with http:// or https://",
			"Stats": models.Stats{TotalURLs: 7, TotalClicks: 42, ActiveUsers: 3},
		},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `<meta name="csrf-token" content="token-123">`)
	assert.Contains(t, body, `id="errorMessage"`)
	assert.Contains(t, body, "Please enter a valid URL starting with http:// or https://")
	assert.Contains(t, body, "<strong>42</strong>")
	assert.Contains(t, body, `href="/login/"`)
}

func TestRenderer_LinkList(t *testing.T) {
	r, err := NewRenderer(zap.NewNop())
	require.NoError(t, err)

	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := httptest.NewRecorder()
	r.Render(rec, http.StatusOK, PageMyURLs, &Page{
		User: &session.User{ID: "u1", Username: "alice"},
		Data: map[string]any{
			"Links": []*models.Link{{
				ID:          12,
				ShortURL:    "promo",
				OriginalURL: "https://example.com/?a=1&b=2",
				Category:    models.CategoryWork,
				CreatedAt:   time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC),
				ExpiresAt:   &expires,
				HasQR:       true,
			}},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-id="12"`)
	assert.Contains(t, body, `data-rename-url="/update-slug/12/"`)
	assert.Contains(t, body, `data-delete-url="/delete-url/12/"`)
	assert.Contains(t, body, "https://example.com/?a=1&amp;b=2")
	assert.Contains(t, body, "Work")
	assert.Contains(t, body, "/qr/promo.png")
	assert.Contains(t, body, "alice")
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := NewRenderer(zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.Render(rec, http.StatusOK, "missing.html", &Page{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatic(t *testing.T) {
	srv := httptest.NewServer(Static())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/static/js/script.js")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "function isValidUrl")
	assert.Contains(t, string(body), "dataset.renameUrl")
}
