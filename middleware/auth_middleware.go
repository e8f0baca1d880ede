package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/models"
	"github.com/tasknest/backend/services"
	"github.com/tasknest/backend/utils"
)

const principalKey = "principal"

// AuthMiddleware resolves the bearer token into a Principal. The user is
// re-fetched from storage on every request so the role (and existence) of
// the account is always current; claims alone are never trusted for
// authorization.
func AuthMiddleware(secret string, auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": domain.ErrMissingAuthHeader.Error()})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims, err := utils.ValidateToken(tokenStr, secret)
		if err != nil {
			msg := domain.ErrTokenInvalid.Error()
			if errors.Is(err, domain.ErrTokenExpired) {
				msg = domain.ErrTokenExpired.Error()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
			return
		}

		user, err := auth.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			// Covers valid tokens referencing a since-deleted account.
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": domain.ErrUserNotFound.Error()})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "authentication error"})
			return
		}

		c.Set(principalKey, user.ToPrincipal())
		c.Next()
	}
}

// GetPrincipal returns the resolved principal for the request, if any.
func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}
