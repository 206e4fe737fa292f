package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/docregistry/internal/authz"
	"github.com/docregistry/internal/services"
)

const principalKey = "principal"

type AuthMiddleware struct {
	tokens *services.TokenService
	users  *services.UserService
	logger *zap.Logger
}

func NewAuthMiddleware(tokens *services.TokenService, users *services.UserService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
		logger: logger.With(zap.String("middleware", "auth")),
	}
}

// RequireAuth verifies the bearer token, resolves the principal once and
// stores it in the request context. The principal is immutable for the
// rest of the request.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			return
		}

		userID, err := am.tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		user, err := am.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
			return
		}
		if !user.ActiveStatus {
			am.logger.Warn("inactive account request", zap.Uint("user_id", user.ID))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Account deactivated"})
			return
		}

		c.Set(principalKey, user.Principal())
		c.Set("username", user.Username)
		c.Next()
	}
}

// RequireAdmin allows only principals carrying the admin capability. It
// must run after RequireAuth.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok || !p.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal resolved by RequireAuth, if any.
func PrincipalFrom(c *gin.Context) (authz.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return authz.Principal{}, false
	}
	p, ok := v.(authz.Principal)
	return p, ok
}
