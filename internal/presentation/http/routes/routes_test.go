package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajcreationz/livesite/internal/application/container"
	schema "github.com/rajcreationz/livesite/internal/infrastructure/database"
	"github.com/rajcreationz/livesite/internal/infrastructure/localcache"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/persistence/database"
	"github.com/rajcreationz/livesite/internal/presentation/http/middleware"
	"github.com/rajcreationz/livesite/pkg/config"
)

const embedCode = `<iframe src="https://player.example/live/42" allowfullscreen></iframe>`

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *container.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.JWTSecret = "test-secret"
	config.AdminUsername = "admin"
	config.AdminPassword = "hunter2"
	config.AdminLoginDelay = 0
	config.LoginRatePerMinute = 100
	config.StorageBackend = "local"
	config.MediaDir = t.TempDir()
	config.ResendAPIKey = ""
	config.AAIAPIKey = ""

	db, err := database.NewConnection("sqlite3", filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, schema.NewTableCreator().CreateSchema(db.DB))

	cache, err := localcache.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	site, err := config.NewSiteHolder(filepath.Join(t.TempDir(), "site.yaml"), nil)
	require.NoError(t, err)

	c, err := container.NewContainer(container.Dependencies{
		Logger: logging.NewDiscardLogger(),
		DB:     db,
		Cache:  cache,
		Site:   site,
	})
	require.NoError(t, err)
	return SetupRoutes(c), c
}

func do(r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func login(t *testing.T, r http.Handler) *http.Cookie {
	t.Helper()
	rec := do(r, http.MethodPost, "/api/v1/admin/login", map[string]string{"username": "admin", "password": "hunter2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AdminCookieName {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func TestLogin_WrongCredentialsNeverCreateSession(t *testing.T) {
	r, _ := newTestRouter(t)

	for i := 0; i < 3; i++ {
		rec := do(r, http.MethodPost, "/api/v1/admin/login", map[string]string{"username": "admin", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		env := decode(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, "Invalid username or password", env.Error)
		assert.Empty(t, rec.Result().Cookies())
	}

	rec := do(r, http.MethodGet, "/api/v1/admin/session", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())

	rec = do(r, http.MethodPut, "/api/v1/admin/embed/live", map[string]string{"embedCode": embedCode})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_SessionCookieOpensAdminRoutes(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := login(t, r)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 7200, cookie.MaxAge)

	rec := do(r, http.MethodGet, "/api/v1/admin/session", nil, cookie)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)

	rec = do(r, http.MethodPost, "/api/v1/admin/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLiveEmbed_SaveUpdatesSettingsAndStatus(t *testing.T) {
	r, c := newTestRouter(t)
	cookie := login(t, r)

	rec := do(r, http.MethodPut, "/api/v1/admin/embed/live", map[string]string{"embedCode": embedCode}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(r, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var settings map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, embedCode, settings["liveStreamEmbed"])

	assert.True(t, c.State.Status().HasLiveEmbed)

	rec = do(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "player.example/live/42")

	rec = do(r, http.MethodDelete, "/api/v1/admin/embed/live", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, c.State.Status().HasLiveEmbed)
}

func TestLiveEmbed_EmptyIsRejected(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := login(t, r)

	rec := do(r, http.MethodPut, "/api/v1/admin/embed/live", map[string]string{"embedCode": "   "}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Embed code is required", decode(t, rec).Error)
}

func TestSchedule_SaveListAndExport(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := login(t, r)

	rec := do(r, http.MethodPost, "/api/v1/admin/schedule", map[string]any{
		"title":      "Friday Night Live",
		"event_date": "2024-03-15",
		"start_time": "18:00",
		"end_time":   "19:30",
		"timezone":   "IST (UTC+5:30)",
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var saved struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &saved))
	require.NotEmpty(t, saved.ID)

	rec = do(r, http.MethodGet, "/api/v1/schedule", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Friday Night Live")

	rec = do(r, http.MethodGet, "/schedule/"+saved.ID+"/ics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".ics")
	body := rec.Body.String()
	assert.Contains(t, body, "DTSTART:20240315T123000Z")
	assert.Contains(t, body, "DTEND:20240315T140000Z")

	rec = do(r, http.MethodGet, "/schedule?filter=upcoming&year=2024&month=3", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "March 2024")

	rec = do(r, http.MethodDelete, "/api/v1/admin/schedule/"+saved.ID, nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, http.MethodGet, "/schedule/"+saved.ID+"/ics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSchedule_ValidationError(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := login(t, r)

	rec := do(r, http.MethodPost, "/api/v1/admin/schedule", map[string]any{"title": ""}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decode(t, rec).Success)
}

func TestReminder_WithoutMailerIsUnavailable(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodPost, "/api/v1/schedule/abc/reminder", map[string]string{"email": "fan@example.com"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAssist_WithoutKeyIsUnavailable(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := login(t, r)

	rec := do(r, http.MethodPost, "/api/v1/admin/assist/describe", map[string]string{"title": "Holi Special"}, cookie)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPages_Render(t *testing.T) {
	r, c := newTestRouter(t)
	title := c.Site.Get().Site.Title

	for _, path := range []string{"/", "/videos", "/photos", "/schedule", "/admin/login"} {
		rec := do(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), title, path)
	}

	rec := do(r, http.MethodGet, "/", nil)
	assert.Contains(t, rec.Body.String(), `id="videoWrapper"`)
	assert.Contains(t, rec.Body.String(), `id="adminLoginOverlay"`)

	rec = do(r, http.MethodGet, "/static/site.css", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestStreamStatus(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodGet, "/api/v1/stream/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, false, status["hasLiveEmbed"])
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestClientLogs_Accepted(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodPost, "/api/v1/client-logs", map[string]string{"level": "error", "message": "tcplayer failed to load"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(r, http.MethodPost, "/api/v1/client-logs", map[string]string{})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestID_Echoed(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stream/status", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(middleware.RequestIDHeader))

	rec = do(r, http.MethodGet, "/api/v1/stream/status", nil)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://allowed.example"})

	req := httptest.NewRequest(http.MethodGet, "http://site.example/api/v1/stream/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://allowed.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://site.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}
