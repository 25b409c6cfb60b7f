package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rajcreationz/livesite/internal/domain/entities/admin"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
)

func init() { gin.SetMode(gin.TestMode) }

type tokenChecker struct {
	valid string
	calls int
}

func (c *tokenChecker) Check(token string) admin.Session {
	c.calls++
	if token == c.valid {
		return admin.NewSession(time.Now(), time.Hour)
	}
	return admin.Session{}
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth_CookieAndBearer(t *testing.T) {
	checker := &tokenChecker{valid: "good"}
	r := gin.New()
	r.GET("/admin", AdminAuthMiddleware(checker), func(c *gin.Context) {
		assert.True(t, IsAdmin(c, checker))
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Admin session required")

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: AdminCookieName, Value: "good"})
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer good")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer stale")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestIsAdmin_ChecksOncePerRequest(t *testing.T) {
	checker := &tokenChecker{valid: "good"}
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		IsAdmin(c, checker)
		IsAdmin(c, checker)
		c.Status(http.StatusOK)
	})
	serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 1, checker.calls)
}

func TestRequestID_GeneratedAndPropagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	var fromCtx any
	r.GET("/", func(c *gin.Context) {
		fromCtx = c.Request.Context().Value(logging.RequestIDKey)
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 26)
	assert.Equal(t, id, fromCtx)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 65))
	w = serve(r, req)
	assert.Len(t, w.Header().Get(RequestIDHeader), 26)
}

func TestCORS_AllowedAndWildcardOrigins(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:8080", "https://*.rajcreationz.com"}))
	r.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	for origin, allowed := range map[string]bool{
		"http://localhost:8080":        true,
		"https://live.rajcreationz.com": true,
		"https://evil.example.com":      false,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api", nil)
		req.Header.Set("Origin", origin)
		w := serve(r, req)
		if allowed {
			assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"), origin)
			assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"), origin)
		} else {
			assert.Equal(t, http.StatusForbidden, w.Code, origin)
		}
	}
}

func TestCORS_NoOriginsIsPassThrough(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(nil))
	r.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
