package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/models"
)

// RequireAuthenticated fails Unauthorized when no principal is present.
func RequireAuthenticated(p *models.Principal) error {
	if p == nil || p.ID == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

// RequireRole fails Forbidden unless the principal holds exactly role.
func RequireRole(p models.Principal, role models.Role) error {
	if p.Role != role {
		return domain.ErrForbidden
	}
	return nil
}

func RequireAdmin(p models.Principal) error {
	return RequireRole(p, models.RoleAdmin)
}

// CheckOwnership admits admins unconditionally and everyone else only on
// their own resources. Callers apply it identically for reads, updates
// and deletes.
func CheckOwnership(p models.Principal, resourceOwnerID string) error {
	if p.IsAdmin() || p.ID == resourceOwnerID {
		return nil
	}
	return domain.ErrForbidden
}

// AdminOnly is the route-group form of RequireAdmin, mounted after
// AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": domain.ErrUnauthorized.Error()})
			return
		}
		if err := RequireAdmin(p); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": domain.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}
