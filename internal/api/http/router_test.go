package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/cms-admin/internal/api/http/handlers"
	"github.com/spec-kit/cms-admin/internal/auth"
	"github.com/spec-kit/cms-admin/internal/domain"
	"github.com/spec-kit/cms-admin/internal/events"
	"github.com/spec-kit/cms-admin/internal/observability"
	"github.com/spec-kit/cms-admin/internal/repository"
	"github.com/spec-kit/cms-admin/internal/service"
	"github.com/spec-kit/cms-admin/internal/worker"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

const (
	adminPassword  = "admin-password"
	editorPassword = "editor-password"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type testEnv struct {
	app    *fiber.App
	stores repository.Stores
	admin  *domain.User
	editor *domain.User
}

func newTestEnv(t *testing.T, loginPerMinute int) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	stores := repository.Stores{
		Users:          repository.NewUserRepository(repository.NewMemoryCollection[domain.User](domain.CollectionUsers)),
		Posts:          repository.NewMemoryCollection[domain.Post](domain.CollectionPosts),
		Pages:          repository.NewMemoryCollection[domain.Page](domain.CollectionPages),
		Categories:     repository.NewMemoryCollection[domain.Category](domain.CollectionCategories),
		Apps:           repository.NewMemoryCollection[domain.App](domain.CollectionApps),
		Media:          repository.NewMemoryCollection[domain.Media](domain.CollectionMedia),
		Settings:       repository.NewMemoryCollection[domain.Setting](domain.CollectionSettings),
		SitemapEntries: repository.NewMemoryCollection[domain.SitemapEntry](domain.CollectionSitemapEntries),
		Homepage:       repository.NewMemoryCollection[domain.Homepage](domain.CollectionHomepage),
	}
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager("router-test-secret", auth.DefaultTokenTTL)
	cookies := auth.CookieSettings{Name: auth.DefaultCookieName}

	authService := service.NewAuthService(service.AuthDependencies{
		Users:     stores.Users,
		Tokens:    tokens,
		Passwords: auth.NewPasswordVerifier("", logger),
		Logger:    logger,
	})
	userService := service.NewUserService(stores.Users, logger)
	catalog := service.NewCatalog(stores, dispatcher, logger)
	mediaService := service.NewMediaService(stores.Media, dispatcher, logger, service.MediaOptions{
		Dir: t.TempDir(), URLPrefix: "/uploads", MaxSize: 1 << 20,
	})
	settingsService := service.NewSettingsService(stores.Settings, stores.Homepage, dispatcher, logger)
	sitemapService := service.NewSitemapService(service.SitemapDependencies{
		Entries: stores.SitemapEntries,
		Posts:   stores.Posts,
		Pages:   stores.Pages,
		BaseURL: "https://example.com",
		Logger:  logger,
	})
	worker.StartSitemapWorker(dispatcher, sitemapService)

	admin, err := userService.Create(ctx, service.NewUserInput{Username: "admin", Password: adminPassword, Role: domain.RoleAdmin})
	require.NoError(t, err)
	editor, err := userService.Create(ctx, service.NewUserInput{Username: "editor", Password: editorPassword, Role: domain.RoleUser})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("cms-admin", "test", map[string]handlers.Pinger{"postgres": okPinger{}}, metrics),
		Auth:           handlers.NewAuthHandler(authService, cookies),
		Users:          handlers.NewUsersHandler(userService, authService),
		Posts:          handlers.NewPostsHandler(catalog.Posts),
		Pages:          handlers.NewPagesHandler(catalog.Pages),
		Categories:     handlers.NewCategoriesHandler(catalog.Categories),
		Apps:           handlers.NewAppsHandler(catalog.Apps),
		SitemapEntries: handlers.NewSitemapEntriesHandler(catalog.SitemapEntries),
		Media:          handlers.NewMediaHandler(mediaService),
		Settings:       handlers.NewSettingsHandler(settingsService),
		Sitemap:        handlers.NewSitemapHandler(sitemapService),
		AuthMiddleware: auth.NewMiddleware(auth.NewGuard(tokens, nil, logger), cookies),
		LoginLimiter:   LoginLimiter(loginPerMinute),
	})
	return &testEnv{app: app, stores: stores, admin: admin, editor: editor}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, setup ...func(*nethttp.Request)) (*nethttp.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for _, fn := range setup {
		fn(req)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (e *testEnv) login(t *testing.T, username, password string) *nethttp.Cookie {
	t.Helper()
	resp, body := e.do(t, nethttp.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": password})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))
	for _, c := range resp.Cookies() {
		if c.Name == auth.DefaultCookieName {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func withCookie(c *nethttp.Cookie) func(*nethttp.Request) {
	return func(r *nethttp.Request) { r.AddCookie(&nethttp.Cookie{Name: c.Name, Value: c.Value}) }
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &payload), string(body))
	return payload.Error.Code
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	env := newTestEnv(t, 0)
	resp, body := env.do(t, nethttp.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": adminPassword})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))

	var cookie *nethttp.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == auth.DefaultCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, nethttp.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.InDelta(t, 7*24*60*60, cookie.MaxAge, 2)

	var payload struct {
		Data struct {
			User      map[string]any `json:"user"`
			ExpiresAt string         `json:"expires_at"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "admin", payload.Data.User["username"])
	assert.Equal(t, "admin", payload.Data.User["role"])
	assert.NotContains(t, payload.Data.User, "password")
	assert.NotEmpty(t, payload.Data.ExpiresAt)
	assert.NotContains(t, string(body), cookie.Value)
}

func TestLogin_FailuresAreByteIdentical(t *testing.T) {
	env := newTestEnv(t, 0)

	unknownResp, unknownBody := env.do(t, nethttp.MethodPost, "/api/auth/login", map[string]string{"username": "ghost", "password": adminPassword})
	wrongResp, wrongBody := env.do(t, nethttp.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "not-it"})

	assert.Equal(t, nethttp.StatusUnauthorized, unknownResp.StatusCode)
	assert.Equal(t, nethttp.StatusUnauthorized, wrongResp.StatusCode)
	assert.Equal(t, unknownBody, wrongBody)
	assert.Equal(t, apperrors.CodeInvalidCredentials, errorCode(t, unknownBody))
	assert.Empty(t, unknownResp.Cookies())
	assert.Empty(t, wrongResp.Cookies())
}

func TestLogin_RequiresFields(t *testing.T) {
	env := newTestEnv(t, 0)
	resp, body := env.do(t, nethttp.MethodPost, "/api/auth/login", map[string]string{"username": "admin"})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeValidation, errorCode(t, body))
}

func TestLogin_RateLimited(t *testing.T) {
	env := newTestEnv(t, 2)
	creds := map[string]string{"username": "admin", "password": "wrong-password"}

	for i := 0; i < 2; i++ {
		resp, _ := env.do(t, nethttp.MethodPost, "/api/auth/login", creds)
		assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	}
	resp, body := env.do(t, nethttp.MethodPost, "/api/auth/login", creds)
	assert.Equal(t, nethttp.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, apperrors.CodeRateLimited, errorCode(t, body))
}

func TestMe(t *testing.T) {
	env := newTestEnv(t, 0)
	cookie := env.login(t, "editor", editorPassword)

	resp, body := env.do(t, nethttp.MethodGet, "/api/auth/me", nil, withCookie(cookie))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":{"id":"`+env.editor.ID+`","username":"editor","role":"user"}}`, string(body))

	resp, body = env.do(t, nethttp.MethodGet, "/api/auth/me", nil, func(r *nethttp.Request) {
		r.Header.Set(fiber.HeaderAuthorization, "Bearer "+cookie.Value)
	})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))

	absentResp, absentBody := env.do(t, nethttp.MethodGet, "/api/auth/me", nil)
	malformedResp, malformedBody := env.do(t, nethttp.MethodGet, "/api/auth/me", nil, func(r *nethttp.Request) {
		r.Header.Set(fiber.HeaderAuthorization, "Token "+cookie.Value)
	})
	assert.Equal(t, nethttp.StatusUnauthorized, absentResp.StatusCode)
	assert.Equal(t, nethttp.StatusUnauthorized, malformedResp.StatusCode)
	assert.Equal(t, absentBody, malformedBody)
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t, 0)
	resp, _ := env.do(t, nethttp.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, nethttp.StatusNoContent, resp.StatusCode)

	var cleared *nethttp.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == auth.DefaultCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.HttpOnly)
}

func TestAdminRoutes(t *testing.T) {
	env := newTestEnv(t, 0)
	adminCookie := env.login(t, "admin", adminPassword)
	editorCookie := env.login(t, "editor", editorPassword)

	resp, body := env.do(t, nethttp.MethodGet, "/api/users", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apperrors.CodeUnauthorized, errorCode(t, body))

	resp, body = env.do(t, nethttp.MethodGet, "/api/users", nil, withCookie(editorCookie))
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.Equal(t, apperrors.CodeForbidden, errorCode(t, body))

	resp, body = env.do(t, nethttp.MethodGet, "/api/users", nil, withCookie(adminCookie))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "password")
	var list struct {
		Data []map[string]any `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 2, list.Meta.Total)

	resp, body = env.do(t, nethttp.MethodPost, "/api/users/"+env.editor.ID+"/revoke", nil, withCookie(adminCookie))
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)
	assert.Equal(t, apperrors.CodeConflict, errorCode(t, body))

	resp, _ = env.do(t, nethttp.MethodGet, "/api/admin/metrics", nil, withCookie(adminCookie))
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestPosts_Visibility(t *testing.T) {
	env := newTestEnv(t, 0)
	cookie := env.login(t, "editor", editorPassword)

	resp, body := env.do(t, nethttp.MethodPost, "/api/posts", map[string]any{"title": "Draft", "slug": "draft"}, withCookie(cookie))
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(body))
	var created struct {
		Data domain.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	draftID := created.Data.ID
	assert.Equal(t, domain.StatusDraft, created.Data.Status)

	resp, body = env.do(t, nethttp.MethodPost, "/api/posts", map[string]any{"title": "Live", "slug": "live", "status": "published"}, withCookie(cookie))
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(body))

	resp, _ = env.do(t, nethttp.MethodPost, "/api/posts", map[string]any{"title": "Anon", "slug": "anon"})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	resp, body = env.do(t, nethttp.MethodPost, "/api/posts", map[string]any{"title": "Dup", "slug": "live"}, withCookie(cookie))
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)
	assert.Equal(t, apperrors.CodeConflict, errorCode(t, body))

	var list struct {
		Data []domain.Post `json:"data"`
		Meta struct {
			Page     int `json:"page"`
			PageSize int `json:"page_size"`
			Total    int `json:"total"`
		} `json:"meta"`
	}
	_, body = env.do(t, nethttp.MethodGet, "/api/posts", nil)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.Meta.Total)
	assert.Equal(t, 1, list.Meta.Page)
	assert.Equal(t, service.DefaultPageSize, list.Meta.PageSize)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "live", list.Data[0].Slug)

	_, body = env.do(t, nethttp.MethodGet, "/api/posts", nil, withCookie(cookie))
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 2, list.Meta.Total)

	resp, _ = env.do(t, nethttp.MethodGet, "/api/posts/"+draftID, nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	resp, _ = env.do(t, nethttp.MethodGet, "/api/posts/"+draftID, nil, withCookie(cookie))
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, nethttp.MethodGet, "/api/posts/slug/live", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, nethttp.MethodGet, "/api/posts/slug/draft", nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, nethttp.MethodGet, "/api/posts?page_size=abc", nil)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeValidation, errorCode(t, body))
}

func TestCategories_RequireAdminForWrites(t *testing.T) {
	env := newTestEnv(t, 0)
	editorCookie := env.login(t, "editor", editorPassword)
	adminCookie := env.login(t, "admin", adminPassword)
	payload := map[string]any{"name": "News", "slug": "news"}

	resp, _ := env.do(t, nethttp.MethodPost, "/api/categories", payload, withCookie(editorCookie))
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	resp, body := env.do(t, nethttp.MethodPost, "/api/categories", payload, withCookie(adminCookie))
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(body))

	resp, body = env.do(t, nethttp.MethodPost, "/api/categories", map[string]any{"slug": "x"}, withCookie(adminCookie))
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"name":"required"`)

	resp, _ = env.do(t, nethttp.MethodGet, "/api/categories/slug/news", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestSitemapXML(t *testing.T) {
	env := newTestEnv(t, 0)
	cookie := env.login(t, "editor", editorPassword)
	resp, _ := env.do(t, nethttp.MethodPost, "/api/pages", map[string]any{"title": "About", "slug": "about", "status": "published"}, withCookie(cookie))
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	resp, body := env.do(t, nethttp.MethodGet, "/sitemap.xml", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationXML))
	assert.Contains(t, string(body), "<loc>https://example.com/about</loc>")
}

func TestMediaUpload(t *testing.T) {
	env := newTestEnv(t, 0)
	cookie := env.login(t, "editor", editorPassword)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="logo.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("alt", "Logo"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(nethttp.MethodPost, "/api/media", &buf)
	req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())
	withCookie(cookie)(req)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(body))

	var created struct {
		Data domain.Media `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Logo", created.Data.Alt)
	assert.Equal(t, "image/png", created.Data.MimeType)
	assert.True(t, strings.HasPrefix(created.Data.URL, "/uploads/"))
	assert.Equal(t, env.editor.ID, created.Data.UploadedBy)

	resp2, _ := env.do(t, nethttp.MethodGet, "/api/media", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp2.StatusCode)
}

func TestUnknownRouteRendersJSONError(t *testing.T) {
	env := newTestEnv(t, 0)
	resp, body := env.do(t, nethttp.MethodGet, "/nope", nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(t, body))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 0)
	resp, body := env.do(t, nethttp.MethodGet, "/health/ready", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"postgres":"ok"`)
}
