package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tasknest/backend/database"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/models"
	"github.com/tasknest/backend/utils"
)

func seedUser(t *testing.T, store database.Store, email string) string {
	t.Helper()
	hash, err := utils.HashPassword("secret1")
	require.NoError(t, err)
	now := time.Now().UnixMilli()
	id, err := store.Insert(context.Background(), database.UsersCollection, &models.User{
		Email: email, Name: "Ann", PasswordHash: hash, Role: models.RoleUser,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return id
}

func TestIssueStoresHashAndExpiry(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	svc := NewResetTokenService(store, time.Hour)
	userID := seedUser(t, store, "a@x.com")

	before := time.Now().UnixMilli()
	secret, err := svc.Issue(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, secret, 64)

	var user models.User
	require.NoError(t, store.GetByID(ctx, database.UsersCollection, userID, &user))
	assert.NotEmpty(t, user.ResetTokenHash)
	assert.NotEqual(t, secret, user.ResetTokenHash, "plaintext never persisted")

	wantExpiry := before + time.Hour.Milliseconds()
	assert.InDelta(t, wantExpiry, user.ResetTokenExpiry, 5000, "expiry is about one hour out")
}

func TestIssueUnknownUser(t *testing.T) {
	store := database.NewMemoryStore()
	svc := NewResetTokenService(store, time.Hour)

	_, err := svc.Issue(context.Background(), bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestVerifyWithoutIssuedToken(t *testing.T) {
	store := database.NewMemoryStore()
	svc := NewResetTokenService(store, time.Hour)
	userID := seedUser(t, store, "a@x.com")

	err := svc.Verify(context.Background(), userID, "anything")
	assert.ErrorIs(t, err, domain.ErrResetTokenMissing)
}

func TestVerifyWrongSecretKeepsToken(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	svc := NewResetTokenService(store, time.Hour)
	userID := seedUser(t, store, "a@x.com")

	secret, err := svc.Issue(ctx, userID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(ctx, userID, "wrong-secret"), domain.ErrResetTokenInvalid)

	// A failed attempt does not burn the token.
	assert.NoError(t, svc.Verify(ctx, userID, secret))
}

func TestVerifyExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	svc := NewResetTokenService(store, time.Hour)
	userID := seedUser(t, store, "a@x.com")

	secret, err := svc.Issue(ctx, userID)
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute).UnixMilli()
	require.NoError(t, store.Update(ctx, database.UsersCollection, userID, bson.M{"resetTokenExpiry": expired}))

	// Even the correct secret fails once the window has closed.
	assert.ErrorIs(t, svc.Verify(ctx, userID, secret), domain.ErrResetTokenExpired)
	assert.ErrorIs(t, svc.ConsumeAndReset(ctx, userID, secret, "newpass1"), domain.ErrResetTokenExpired)
}

func TestConsumeAndResetIsSingleUse(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	svc := NewResetTokenService(store, time.Hour)
	userID := seedUser(t, store, "a@x.com")

	secret, err := svc.Issue(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, svc.ConsumeAndReset(ctx, userID, secret, "newpass1"))

	var user models.User
	require.NoError(t, store.GetByID(ctx, database.UsersCollection, userID, &user))
	assert.NoError(t, utils.CheckPassword(user.PasswordHash, "newpass1"))
	assert.Empty(t, user.ResetTokenHash)
	assert.Zero(t, user.ResetTokenExpiry)

	// The same secret is dead after a successful consume.
	assert.ErrorIs(t, svc.ConsumeAndReset(ctx, userID, secret, "another1"), domain.ErrResetTokenMissing)
}

func TestIssueReplacesPreviousToken(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	svc := NewResetTokenService(store, time.Hour)
	userID := seedUser(t, store, "a@x.com")

	first, err := svc.Issue(ctx, userID)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, userID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(ctx, userID, first), domain.ErrResetTokenInvalid)
	assert.NoError(t, svc.Verify(ctx, userID, second))
}
