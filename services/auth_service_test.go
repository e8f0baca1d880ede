package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/backend/database"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/models"
	"github.com/tasknest/backend/utils"
)

type captureMailer struct {
	to, subject, body string
	sends             int
	fail              bool
}

func (m *captureMailer) Send(to, subject, body string) error {
	if m.fail {
		return domain.ErrMailDelivery
	}
	m.to, m.subject, m.body = to, subject, body
	m.sends++
	return nil
}

// secret extracts the 64-char hex token from a reset email body.
func (m *captureMailer) secret(t *testing.T) string {
	t.Helper()
	for _, field := range strings.Fields(m.body) {
		if len(field) == 64 {
			return field
		}
	}
	t.Fatal("no reset secret found in mail body")
	return ""
}

func newTestAuth(t *testing.T) (*AuthService, *database.MemoryStore, *captureMailer) {
	t.Helper()
	store := database.NewMemoryStore()
	mailer := &captureMailer{}
	resetTokens := NewResetTokenService(store, time.Hour)
	auth := NewAuthService(store, resetTokens, mailer, "test-signing-secret", 7*24*time.Hour)
	return auth, store, mailer
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t)

	user, err := auth.Register(ctx, "a@x.com", "secret1", "Ann")
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.ID.IsZero())
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NoError(t, utils.CheckPassword(user.PasswordHash, "secret1"))
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t)

	_, err := auth.Register(ctx, "a@x.com", "secret1", "Ann")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "a@x.com", "other12", "Bea")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterShortName(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t)

	_, err := auth.Register(ctx, "a@x.com", "secret1", " A ")
	assert.ErrorIs(t, err, domain.ErrNameTooShort)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t)

	registered, err := auth.Register(ctx, "a@x.com", "secret1", "Ann")
	require.NoError(t, err)

	token, user, err := auth.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := utils.ValidateToken(token, "test-signing-secret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID.Hex(), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t)

	_, err := auth.Register(ctx, "a@x.com", "secret1", "Ann")
	require.NoError(t, err)

	_, _, errUnknown := auth.Login(ctx, "nobody@x.com", "secret1")
	_, _, errWrongPass := auth.Login(ctx, "a@x.com", "wrong-password")

	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, domain.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t)

	user, err := auth.Register(ctx, "a@x.com", "secret1", "Ann")
	require.NoError(t, err)

	require.NoError(t, auth.ChangePassword(ctx, user.ID.Hex(), "secret1", "newpass1"))

	_, _, err = auth.Login(ctx, "a@x.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, _, err = auth.Login(ctx, "a@x.com", "newpass1")
	assert.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t)

	user, err := auth.Register(ctx, "a@x.com", "secret1", "Ann")
	require.NoError(t, err)

	err = auth.ChangePassword(ctx, user.ID.Hex(), "wrong-current", "newpass1")
	assert.ErrorIs(t, err, domain.ErrInvalidCurrentPassword)

	// Password unchanged.
	_, _, err = auth.Login(ctx, "a@x.com", "secret1")
	assert.NoError(t, err)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	ctx := context.Background()
	auth, _, mailer := newTestAuth(t)

	err := auth.ForgotPassword(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Zero(t, mailer.sends)
}

func TestForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()
	auth, _, mailer := newTestAuth(t)

	_, err := auth.Register(ctx, "a@x.com", "secret1", "Ann")
	require.NoError(t, err)

	require.NoError(t, auth.ForgotPassword(ctx, "a@x.com"))
	require.Equal(t, 1, mailer.sends)
	assert.Equal(t, "a@x.com", mailer.to)

	secret := mailer.secret(t)
	user, err := auth.ResetPassword(ctx, "a@x.com", secret, "newpass1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	_, _, err = auth.Login(ctx, "a@x.com", "newpass1")
	assert.NoError(t, err)

	// The consumed token is gone.
	_, err = auth.ResetPassword(ctx, "a@x.com", secret, "another1")
	assert.ErrorIs(t, err, domain.ErrResetTokenMissing)
}

func TestResetPasswordUnknownEmail(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t)

	_, err := auth.ResetPassword(ctx, "nobody@x.com", "whatever", "newpass1")
	assert.ErrorIs(t, err, domain.ErrResetTokenMissing)
}

func TestForgotPasswordDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	auth, store, mailer := newTestAuth(t)
	mailer.fail = true

	user, err := auth.Register(ctx, "a@x.com", "secret1", "Ann")
	require.NoError(t, err)

	err = auth.ForgotPassword(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrMailDelivery)

	// The stored token survives the failed delivery.
	var stored models.User
	require.NoError(t, store.GetByID(ctx, database.UsersCollection, user.ID.Hex(), &stored))
	assert.NotEmpty(t, stored.ResetTokenHash)
}
