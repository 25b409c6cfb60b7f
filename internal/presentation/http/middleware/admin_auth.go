package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajcreationz/livesite/internal/domain/entities/admin"
)

// AdminCookieName is the cookie holding the signed admin session token.
const AdminCookieName = "adminSession"

const adminContextKey = "adminSession"

// SessionChecker validates an admin token.
type SessionChecker interface {
	Check(token string) admin.Session
}

// AdminToken returns the session token from the cookie or a bearer header.
func AdminToken(c *gin.Context) string {
	if token, err := c.Cookie(AdminCookieName); err == nil && token != "" {
		return token
	}
	if h := c.GetHeader("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		return h[7:]
	}
	return ""
}

// IsAdmin reports whether the request carries a valid admin session.
func IsAdmin(c *gin.Context, checker SessionChecker) bool {
	if v, ok := c.Get(adminContextKey); ok {
		return v.(admin.Session).Authenticated
	}
	session := checker.Check(AdminToken(c))
	c.Set(adminContextKey, session)
	return session.Authenticated
}

// AdminAuthMiddleware rejects requests without a valid admin session.
func AdminAuthMiddleware(checker SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c, checker) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Admin session required. Please log in again",
			})
			return
		}
		c.Next()
	}
}
