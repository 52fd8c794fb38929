package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/shortenit/internal/config"
	"github.com/InQaaaaGit/shortenit/internal/models"
	"github.com/InQaaaaGit/shortenit/internal/service"
	"github.com/InQaaaaGit/shortenit/internal/session"
	"github.com/InQaaaaGit/shortenit/internal/storage"
	"github.com/InQaaaaGit/shortenit/internal/validate"
	"github.com/InQaaaaGit/shortenit/internal/web"
)

// mockLinkService реализует LinkService для тестов
type mockLinkService struct {
	shortenFunc      func(ctx context.Context, originalURL, userID string) (*models.Link, error)
	resolveFunc      func(ctx context.Context, slug string) (*models.Link, error)
	getOwnedFunc     func(ctx context.Context, id int64, userID string) (*models.Link, error)
	renameFunc       func(ctx context.Context, id int64, userID, slug string) (*models.Link, error)
	customizeFunc    func(ctx context.Context, id int64, userID string, in service.CustomizeInput) (*models.Link, error)
	deleteFunc       func(ctx context.Context, id int64, userID string) error
	previewQRFunc    func(slug string) (models.QRPreview, error)
	qrCodeFunc       func(ctx context.Context, slug string) ([]byte, error)
	userLinksFunc    func(ctx context.Context, userID string) ([]*models.Link, error)
	dashboardFunc    func(ctx context.Context, userID string) (*service.Dashboard, error)
	analyticsFunc    func(ctx context.Context, query string) (*service.Analytics, error)
	checkConnectFunc func(ctx context.Context) error
}

var errNotImplemented = errors.New("not implemented")

func (m *mockLinkService) ShortLink(slug string) string {
	return "http://localhost:8080/" + slug + "/"
}

func (m *mockLinkService) Shorten(ctx context.Context, originalURL, userID string) (*models.Link, error) {
	if m.shortenFunc != nil {
		return m.shortenFunc(ctx, originalURL, userID)
	}
	return nil, errNotImplemented
}

func (m *mockLinkService) Resolve(ctx context.Context, slug string) (*models.Link, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, slug)
	}
	return nil, errNotImplemented
}

func (m *mockLinkService) GetOwnedLink(ctx context.Context, id int64, userID string) (*models.Link, error) {
	if m.getOwnedFunc != nil {
		return m.getOwnedFunc(ctx, id, userID)
	}
	return nil, errNotImplemented
}

func (m *mockLinkService) RenameSlug(ctx context.Context, id int64, userID, slug string) (*models.Link, error) {
	if m.renameFunc != nil {
		return m.renameFunc(ctx, id, userID, slug)
	}
	return nil, errNotImplemented
}

func (m *mockLinkService) Customize(ctx context.Context, id int64, userID string, in service.CustomizeInput) (*models.Link, error) {
	if m.customizeFunc != nil {
		return m.customizeFunc(ctx, id, userID, in)
	}
	return nil, errNotImplemented
}

func (m *mockLinkService) Delete(ctx context.Context, id int64, userID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, userID)
	}
	return errNotImplemented
}

func (m *mockLinkService) PreviewQR(slug string) (models.QRPreview, error) {
	if m.previewQRFunc != nil {
		return m.previewQRFunc(slug)
	}
	return models.QRPreview{}, errNotImplemented
}

func (m *mockLinkService) QRCode(ctx context.Context, slug string) ([]byte, error) {
	if m.qrCodeFunc != nil {
		return m.qrCodeFunc(ctx, slug)
	}
	return nil, errNotImplemented
}

func (m *mockLinkService) UserLinks(ctx context.Context, userID string) ([]*models.Link, error) {
	if m.userLinksFunc != nil {
		return m.userLinksFunc(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockLinkService) Dashboard(ctx context.Context, userID string) (*service.Dashboard, error) {
	if m.dashboardFunc != nil {
		return m.dashboardFunc(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockLinkService) HomeStats(ctx context.Context) (models.Stats, error) {
	return models.Stats{TotalURLs: 3, TotalClicks: 10, ActiveUsers: 2}, nil
}

func (m *mockLinkService) Analytics(ctx context.Context, query string) (*service.Analytics, error) {
	if m.analyticsFunc != nil {
		return m.analyticsFunc(ctx, query)
	}
	return nil, errNotImplemented
}

func (m *mockLinkService) CheckConnection(ctx context.Context) error {
	if m.checkConnectFunc != nil {
		return m.checkConnectFunc(ctx)
	}
	return nil
}

// mockUserService реализует UserService для тестов
type mockUserService struct {
	registerFunc     func(ctx context.Context, username, p1, p2 string) (*models.User, error)
	authenticateFunc func(ctx context.Context, username, password string) (*models.User, error)
	getUserFunc      func(ctx context.Context, id string) (*models.User, error)
}

func (m *mockUserService) Register(ctx context.Context, username, p1, p2 string) (*models.User, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, username, p1, p2)
	}
	return nil, errNotImplemented
}

func (m *mockUserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if m.authenticateFunc != nil {
		return m.authenticateFunc(ctx, username, password)
	}
	return nil, errNotImplemented
}

func (m *mockUserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func newTestHandler(t *testing.T, links *mockLinkService, users *mockUserService) *Handler {
	t.Helper()
	renderer, err := web.NewRenderer(zap.NewNop())
	require.NoError(t, err)
	if users == nil {
		users = &mockUserService{}
	}
	return NewHandler(links, users, session.NewManager("secret", time.Hour, false), renderer, config.Default(), zap.NewNop())
}

// withParams добавляет параметры маршрута chi
func withParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withUser(r *http.Request, id string) *http.Request {
	return r.WithContext(session.WithUser(r.Context(), session.User{ID: id, Username: "alice"}))
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandleCreateURL(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shortenErr error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "created",
			input:      "https://example.com",
			wantStatus: http.StatusCreated,
			wantBody:   "http://localhost:8080/abc123/",
		},
		{
			name:       "empty url",
			input:      "",
			shortenErr: service.ErrEmptyURL,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Please enter a URL",
		},
		{
			name:       "invalid url",
			input:      "not a url",
			shortenErr: service.ErrInvalidURL,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Please enter a valid URL starting with http:// or https://",
		},
		{
			name:       "storage failure",
			input:      "https://example.com",
			shortenErr: errors.New("disk is on fire"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   internalMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			links := &mockLinkService{
				shortenFunc: func(ctx context.Context, originalURL, userID string) (*models.Link, error) {
					gotUser = userID
					if tt.shortenErr != nil {
						return nil, tt.shortenErr
					}
					return &models.Link{ID: 1, ShortURL: "abc123", OriginalURL: originalURL}, nil
				},
			}
			h := newTestHandler(t, links, nil)

			req := withUser(formRequest(http.MethodPost, "/", url.Values{"original_url": {tt.input}}), "u1")
			rec := httptest.NewRecorder()
			h.HandleCreateURL(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.Equal(t, "u1", gotUser)
		})
	}
}

func TestHandleIndex(t *testing.T) {
	h := newTestHandler(t, &mockLinkService{}, nil)

	rec := httptest.NewRecorder()
	h.HandleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="urlForm"`)
	assert.Contains(t, rec.Body.String(), "<strong>10</strong>")
}

func TestHandleRedirect(t *testing.T) {
	links := &mockLinkService{
		resolveFunc: func(ctx context.Context, slug string) (*models.Link, error) {
			switch slug {
			case "live":
				return &models.Link{ShortURL: slug, OriginalURL: "https://example.com/page"}, nil
			case "old":
				return &models.Link{ShortURL: slug}, service.ErrLinkExpired
			case "broken":
				return nil, errors.New("db down")
			}
			return nil, service.ErrLinkNotFound
		},
	}
	h := newTestHandler(t, links, nil)

	tests := []struct {
		slug         string
		wantStatus   int
		wantLocation string
	}{
		{slug: "live", wantStatus: http.StatusFound, wantLocation: "https://example.com/page"},
		{slug: "old", wantStatus: http.StatusFound, wantLocation: "/expired/old/"},
		{slug: "missing", wantStatus: http.StatusNotFound},
		{slug: "broken", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			req := withParams(httptest.NewRequest(http.MethodGet, "/"+tt.slug+"/", nil), "slug", tt.slug)
			rec := httptest.NewRecorder()
			h.HandleRedirect(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
		})
	}
}

func TestHandleExpired(t *testing.T) {
	h := newTestHandler(t, &mockLinkService{}, nil)

	req := withParams(httptest.NewRequest(http.MethodGet, "/expired/old/", nil), "slug", "old")
	rec := httptest.NewRecorder()
	h.HandleExpired(rec, req)

	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>old</strong>")
}

func TestHandleUpdateSlug(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		contentType string
		body        string
		renameErr   error
		wantStatus  int
		wantBody    string
	}{
		{
			name:        "json body",
			id:          "5",
			contentType: "application/json",
			body:        `{"short_url":"fresh"}`,
			wantStatus:  http.StatusOK,
			wantBody:    `{"success":true,"short_url":"fresh"}`,
		},
		{
			name:        "form body",
			id:          "5",
			contentType: "application/x-www-form-urlencoded",
			body:        "short_url=fresh",
			wantStatus:  http.StatusOK,
			wantBody:    `{"success":true,"short_url":"fresh"}`,
		},
		{
			name:        "json sent as text/plain",
			id:          "5",
			contentType: "text/plain;charset=UTF-8",
			body:        `{"short_url":"fresh"}`,
			wantStatus:  http.StatusOK,
			wantBody:    `{"success":true,"short_url":"fresh"}`,
		},
		{
			name:       "json without content type",
			id:         "5",
			body:       `{"short_url":"fresh"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true,"short_url":"fresh"}`,
		},
		{
			name:        "slug taken",
			id:          "5",
			contentType: "application/json",
			body:        `{"short_url":"fresh"}`,
			renameErr:   service.ErrSlugTaken,
			wantStatus:  http.StatusBadRequest,
			wantBody:    `{"error":"That slug is already taken."}`,
		},
		{
			name:        "blank slug",
			id:          "5",
			contentType: "application/json",
			body:        `{"short_url":"   "}`,
			renameErr:   service.ErrSlugBlank,
			wantStatus:  http.StatusBadRequest,
			wantBody:    `{"error":"Slug cannot be blank."}`,
		},
		{
			name:        "foreign link",
			id:          "5",
			contentType: "application/json",
			body:        `{"short_url":"fresh"}`,
			renameErr:   service.ErrLinkNotFound,
			wantStatus:  http.StatusNotFound,
			wantBody:    `{"error":"URL not found"}`,
		},
		{
			name:        "bad id",
			id:          "abc",
			contentType: "application/json",
			body:        `{"short_url":"fresh"}`,
			wantStatus:  http.StatusNotFound,
			wantBody:    `{"error":"URL not found"}`,
		},
		{
			name:        "broken json",
			id:          "5",
			contentType: "application/json",
			body:        `{"short_url":`,
			wantStatus:  http.StatusBadRequest,
			wantBody:    `{"error":"Invalid request body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := &mockLinkService{
				renameFunc: func(ctx context.Context, id int64, userID, slug string) (*models.Link, error) {
					assert.Equal(t, int64(5), id)
					assert.Equal(t, "u1", userID)
					if tt.renameErr != nil {
						return nil, tt.renameErr
					}
					return &models.Link{ID: id, ShortURL: strings.TrimSpace(slug)}, nil
				},
			}
			h := newTestHandler(t, links, nil)

			req := httptest.NewRequest(http.MethodPatch, "/update-slug/"+tt.id+"/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			req = withUser(withParams(req, "id", tt.id), "u1")
			rec := httptest.NewRecorder()
			h.HandleUpdateSlug(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, contentTypeJSON, rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestHandleDeleteURL(t *testing.T) {
	tests := []struct {
		name       string
		deleteErr  error
		wantStatus int
		wantBody   string
	}{
		{name: "deleted", wantStatus: http.StatusOK, wantBody: `{"deleted":true,"success":true}`},
		{name: "not owned", deleteErr: service.ErrLinkNotFound, wantStatus: http.StatusNotFound, wantBody: `{"deleted":false,"success":false,"error":"URL not found"}`},
		{name: "failure", deleteErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantBody: `{"deleted":false,"success":false,"error":"Internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := &mockLinkService{
				deleteFunc: func(ctx context.Context, id int64, userID string) error {
					return tt.deleteErr
				},
			}
			h := newTestHandler(t, links, nil)

			req := withUser(withParams(httptest.NewRequest(http.MethodPost, "/delete-url/9/", nil), "id", "9"), "u1")
			rec := httptest.NewRecorder()
			h.HandleDeleteURL(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestHandlePreviewQR(t *testing.T) {
	links := &mockLinkService{
		previewQRFunc: func(slug string) (models.QRPreview, error) {
			return models.QRPreview{ShortLink: "http://localhost:8080/" + slug + "/", QRDataURI: "data:image/png;base64,AAAA"}, nil
		},
	}
	h := newTestHandler(t, links, nil)

	rec := httptest.NewRecorder()
	h.HandlePreviewQR(rec, formRequest(http.MethodPost, "/preview-qr/", url.Values{"slug": {" promo "}}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"short_link":"http://localhost:8080/promo/","qr_data_uri":"data:image/png;base64,AAAA"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.HandlePreviewQR(rec, formRequest(http.MethodPost, "/preview-qr/", url.Values{"slug": {""}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Slug cannot be empty."}`, rec.Body.String())
}

func TestHandleQRCode(t *testing.T) {
	links := &mockLinkService{
		qrCodeFunc: func(ctx context.Context, slug string) ([]byte, error) {
			if slug != "promo" {
				return nil, service.ErrLinkNotFound
			}
			return []byte("\x89PNG"), nil
		},
	}
	h := newTestHandler(t, links, nil)

	rec := httptest.NewRecorder()
	h.HandleQRCode(rec, withParams(httptest.NewRequest(http.MethodGet, "/qr/promo.png", nil), "slug", "promo"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypePNG, rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	h.HandleQRCode(rec, withParams(httptest.NewRequest(http.MethodGet, "/qr/nope.png", nil), "slug", "nope"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCustomize(t *testing.T) {
	owned := &models.Link{ID: 3, UserID: "u1", ShortURL: "old", OriginalURL: "https://example.com", Category: models.CategoryOther}

	var got service.CustomizeInput
	links := &mockLinkService{
		getOwnedFunc: func(ctx context.Context, id int64, userID string) (*models.Link, error) {
			if id != owned.ID || userID != owned.UserID {
				return nil, service.ErrLinkNotFound
			}
			return owned.Clone(), nil
		},
		customizeFunc: func(ctx context.Context, id int64, userID string, in service.CustomizeInput) (*models.Link, error) {
			got = in
			if in.ShortURL == "taken" {
				return nil, service.ErrSlugTaken
			}
			return owned, nil
		},
	}
	h := newTestHandler(t, links, nil)

	t.Run("form", func(t *testing.T) {
		req := withUser(withParams(httptest.NewRequest(http.MethodGet, "/customize/3/", nil), "id", "3"), "u1")
		rec := httptest.NewRecorder()
		h.HandleCustomizeForm(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="old"`)
	})

	t.Run("foreign link", func(t *testing.T) {
		req := withUser(withParams(httptest.NewRequest(http.MethodGet, "/customize/3/", nil), "id", "3"), "u2")
		rec := httptest.NewRecorder()
		h.HandleCustomizeForm(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("saved", func(t *testing.T) {
		form := url.Values{
			"short_url":   {"fresh"},
			"expiry_date": {"2030-05-01T10:30"},
			"category":    {"work"},
			"generate_qr": {"on"},
		}
		req := withUser(withParams(formRequest(http.MethodPost, "/customize/3/", form), "id", "3"), "u1")
		rec := httptest.NewRecorder()
		h.HandleCustomize(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard/", rec.Header().Get("Location"))
		assert.Equal(t, "fresh", got.ShortURL)
		assert.Equal(t, "work", got.Category)
		assert.True(t, got.GenerateQR)
		require.NotNil(t, got.ExpiresAt)
		assert.True(t, time.Date(2030, 5, 1, 10, 30, 0, 0, time.UTC).Equal(*got.ExpiresAt))
	})

	t.Run("slug taken", func(t *testing.T) {
		form := url.Values{"short_url": {"taken"}, "category": {"other"}}
		req := withUser(withParams(formRequest(http.MethodPost, "/customize/3/", form), "id", "3"), "u1")
		rec := httptest.NewRecorder()
		h.HandleCustomize(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "That slug is already taken.")
	})

	t.Run("bad expiry", func(t *testing.T) {
		form := url.Values{"short_url": {"fresh"}, "expiry_date": {"tomorrow"}}
		req := withUser(withParams(formRequest(http.MethodPost, "/customize/3/", form), "id", "3"), "u1")
		rec := httptest.NewRecorder()
		h.HandleCustomize(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), invalidExpiryMessage)
	})
}

func TestHandleLogin(t *testing.T) {
	users := &mockUserService{
		authenticateFunc: func(ctx context.Context, username, password string) (*models.User, error) {
			if username == "alice" && password == "correct-horse" {
				return &models.User{ID: "u1", Username: "alice"}, nil
			}
			return nil, service.ErrInvalidCredentials
		},
	}
	h := newTestHandler(t, &mockLinkService{}, users)

	tests := []struct {
		name         string
		password     string
		next         string
		wantStatus   int
		wantLocation string
	}{
		{name: "success", password: "correct-horse", next: "/dashboard/", wantStatus: http.StatusFound, wantLocation: "/dashboard/"},
		{name: "external next ignored", password: "correct-horse", next: "//evil.example/", wantStatus: http.StatusFound, wantLocation: "/"},
		{name: "wrong password", password: "nope", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"username": {"alice"}, "password": {tt.password}, "next": {tt.next}}
			rec := httptest.NewRecorder()
			h.HandleLogin(rec, formRequest(http.MethodPost, "/login/", form))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))

			var hasSession bool
			for _, c := range rec.Result().Cookies() {
				if c.Name == session.CookieName && c.Value != "" {
					hasSession = true
				}
			}
			assert.Equal(t, tt.wantStatus == http.StatusFound, hasSession)
		})
	}
}

func TestHandleRegister(t *testing.T) {
	users := &mockUserService{
		registerFunc: func(ctx context.Context, username, p1, p2 string) (*models.User, error) {
			if p1 != p2 {
				return nil, service.ErrPasswordMismatch
			}
			if err := validate.Password(p1); err != nil {
				return nil, err
			}
			return &models.User{ID: "u1", Username: username}, nil
		},
	}
	h := newTestHandler(t, &mockLinkService{}, users)

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, formRequest(http.MethodPost, "/register/", url.Values{
		"username": {"alice"}, "password1": {"password-1"}, "password2": {"password-1"},
	}))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.HandleRegister(rec, formRequest(http.MethodPost, "/register/", url.Values{
		"username": {"alice"}, "password1": {"password-1"}, "password2": {"password-2"},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "The two password fields didn&#39;t match.")

	long := strings.Repeat("a", 80)
	rec = httptest.NewRecorder()
	h.HandleRegister(rec, formRequest(http.MethodPost, "/register/", url.Values{
		"username": {"alice"}, "password1": {long}, "password2": {long},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), validate.ErrPasswordLong.Error())
}

func TestHandleProfileDeletedUser(t *testing.T) {
	users := &mockUserService{
		getUserFunc: func(ctx context.Context, id string) (*models.User, error) {
			return nil, storage.ErrUserNotFound
		},
	}
	h := newTestHandler(t, &mockLinkService{}, users)

	rec := httptest.NewRecorder()
	h.HandleProfile(rec, withUser(httptest.NewRequest(http.MethodGet, "/profile/", nil), "ghost"))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login/", rec.Header().Get("Location"))
}

func TestHandleAnalytics(t *testing.T) {
	links := &mockLinkService{
		analyticsFunc: func(ctx context.Context, query string) (*service.Analytics, error) {
			assert.Equal(t, "promo", query)
			return &service.Analytics{
				Query:       query,
				Links:       []*models.Link{{ShortURL: "promo", OriginalURL: "https://example.com", Category: models.CategoryWork}},
				ChartLabels: []string{"Work"},
				ChartData:   []int64{1},
			}, nil
		},
	}
	h := newTestHandler(t, links, nil)

	rec := httptest.NewRecorder()
	h.HandleAnalytics(rec, withUser(httptest.NewRequest(http.MethodGet, "/analytics/?q=promo", nil), "u1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Work: 1")
}

func TestHandlePing(t *testing.T) {
	h := newTestHandler(t, &mockLinkService{}, nil)
	rec := httptest.NewRecorder()
	h.HandlePing(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h = newTestHandler(t, &mockLinkService{checkConnectFunc: func(ctx context.Context) error { return errors.New("down") }}, nil)
	rec = httptest.NewRecorder()
	h.HandlePing(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                  "/",
		"/dashboard/":       "/dashboard/",
		"/analytics/?q=a":   "/analytics/?q=a",
		"https://evil.com/": "/",
		"//evil.com/":       "/",
		"/\\evil.com":       "/",
		"dashboard/":        "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), in)
	}
}
