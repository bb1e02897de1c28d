package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"legalease/internal/models"
)

const (
	principalKey = "principal"
	tokenKey     = "session_token"
)

type Resolver interface {
	Resolve(ctx context.Context, token string) models.Principal
}

// Session resolves the request's session token once and stores the
// principal on the context. It never rejects; role gates do.
func Session(resolver Resolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c, cookieName)
		c.Set(tokenKey, token)
		c.Set(principalKey, resolver.Resolve(c.Request.Context(), token))
		c.Next()
	}
}

// ExtractToken reads the session cookie, falling back to a bearer header.
func ExtractToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func Principal(c *gin.Context) models.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(models.Principal); ok {
			return p
		}
	}
	return models.Anonymous()
}

func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}
