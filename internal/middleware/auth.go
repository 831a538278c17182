package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/hoc-admin-api/internal/auth"
	"github.com/yukikurage/hoc-admin-api/internal/constants"
	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/services"
)

// TokenVerifier is satisfied by *services.AuthService.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

// RequireAuth checks the bearer token. A missing token is 401, a token that
// fails verification is 403.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw := ""
		if strings.HasPrefix(header, "Bearer ") {
			raw = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
		if raw == "" {
			apierrors.Unauthorized(c, "Access token required")
			c.Abort()
			return
		}

		claims, err := verifier.VerifyToken(raw)
		if err != nil {
			apierrors.InvalidToken(c)
			c.Abort()
			return
		}

		// Store identity in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeyEmail, claims.Email)
		c.Set(constants.ContextKeyRole, claims.Role)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(constants.ContextKeyUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// CallerFrom builds the service caller from the identity RequireAuth stored.
func CallerFrom(c *gin.Context) (services.Caller, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return services.Caller{}, false
	}
	role, _ := c.Get(constants.ContextKeyRole)
	r, _ := role.(models.Role)
	return services.Caller{
		UserID: id,
		Email:  c.GetString(constants.ContextKeyEmail),
		Role:   r,
	}, true
}

// RequireRole lets the request through only when the caller holds one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}
		apierrors.ForbiddenResponse(c, "Insufficient permissions")
		c.Abort()
	}
}
