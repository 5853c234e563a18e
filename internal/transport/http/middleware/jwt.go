package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"pypln-web/internal/pkg/jwtutil"
	"pypln-web/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

// bearerOrCookie returns the token of the Authorization header, falling
// back to the session cookie set by the login page.
func bearerOrCookie(c *gin.Context, cookieName string) (string, string) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			return "", "invalid authorization scheme"
		}
		return strings.TrimSpace(strings.TrimPrefix(authHeader, prefix)), ""
	}
	if cookieName != "" {
		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			return token, ""
		}
	}
	return "", "missing authorization header"
}

func authenticate(c *gin.Context, secret, cookieName string) (bool, string) {
	token, problem := bearerOrCookie(c, cookieName)
	if problem != "" {
		return false, problem
	}
	claims, err := jwtutil.ParseToken(secret, token)
	if err != nil {
		return false, "invalid or expired token"
	}
	c.Set(ContextUserIDKey, claims.UserID)
	c.Set(ContextUsernameKey, claims.Username)
	return true, ""
}

// AuthJWT guards API routes. Failures answer 401 in the JSON envelope.
func AuthJWT(secret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, problem := authenticate(c, secret, cookieName); !ok {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, problem)
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginRequired guards page routes. Anonymous visitors are sent to the
// login page and brought back afterwards.
func LoginRequired(secret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, _ := authenticate(c, secret, cookieName); !ok {
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the visitor when a valid token is present and
// lets anonymous requests through.
func OptionalAuth(secret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _ = authenticate(c, secret, cookieName)
		c.Next()
	}
}

// UserID returns the authenticated user id set by AuthJWT or LoginRequired.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
