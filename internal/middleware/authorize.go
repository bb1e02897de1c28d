package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"legalease/internal/models"
)

// RequireClient admits only client principals. Missing, expired and revoked
// sessions all get the same 401 body.
func RequireClient() gin.HandlerFunc {
	return requireKind(models.PrincipalClient)
}

func RequireLawyer() gin.HandlerFunc {
	return requireKind(models.PrincipalLawyer)
}

// RequireAuthenticated admits any resolved principal.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Principal(c).IsAnonymous() {
			abort(c, http.StatusUnauthorized, "unauthenticated", "not authenticated")
			return
		}
		c.Next()
	}
}

func requireKind(kind models.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := Principal(c)
		if p.IsAnonymous() {
			abort(c, http.StatusUnauthorized, "unauthenticated", "not authenticated")
			return
		}
		if p.Kind() != kind {
			abort(c, http.StatusForbidden, "forbidden", "forbidden")
			return
		}
		c.Next()
	}
}
