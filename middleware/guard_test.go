package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/models"
)

func TestRequireAuthenticated(t *testing.T) {
	assert.ErrorIs(t, RequireAuthenticated(nil), domain.ErrUnauthorized)
	assert.ErrorIs(t, RequireAuthenticated(&models.Principal{}), domain.ErrUnauthorized)

	p := models.Principal{ID: "u1", Role: models.RoleUser}
	assert.NoError(t, RequireAuthenticated(&p))
}

func TestRequireRole(t *testing.T) {
	user := models.Principal{ID: "u1", Role: models.RoleUser}
	admin := models.Principal{ID: "u2", Role: models.RoleAdmin}

	assert.NoError(t, RequireRole(user, models.RoleUser))
	assert.ErrorIs(t, RequireRole(user, models.RoleAdmin), domain.ErrForbidden)
	assert.NoError(t, RequireAdmin(admin))
	assert.ErrorIs(t, RequireAdmin(user), domain.ErrForbidden)
}

func TestCheckOwnership(t *testing.T) {
	owner := models.Principal{ID: "u1", Role: models.RoleUser}
	stranger := models.Principal{ID: "u2", Role: models.RoleUser}
	admin := models.Principal{ID: "u3", Role: models.RoleAdmin}

	assert.NoError(t, CheckOwnership(owner, "u1"))
	assert.ErrorIs(t, CheckOwnership(stranger, "u1"), domain.ErrForbidden)

	// Admins bypass ownership entirely.
	assert.NoError(t, CheckOwnership(admin, "u1"))
	assert.NoError(t, CheckOwnership(admin, "anyone-else"))
}
