package middlewares

import (
	"net/http"
	"strings"

	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/appctx"
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and stamps the principal
// (id, username, role) onto the request context. Every model-layer
// operation reads the principal from there; handlers never pass it
// explicitly.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")

		validate, err := utils.JwtValidate(token)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		ctx = appctx.Set(ctx, appctx.ContextKeyUserId, claim.ID)
		ctx = appctx.Set(ctx, appctx.ContextKeyUsername, claim.Username)
		ctx = appctx.Set(ctx, appctx.ContextKeyRole, claim.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole gates a route group on an exact role match.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, ok := utils.GetRoleFromContext(c.Request.Context())
		if !ok || got != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
