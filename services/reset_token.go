package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tasknest/backend/database"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/models"
	"github.com/tasknest/backend/utils"
)

// ResetTokenService owns the password-reset secret lifecycle: issue,
// verify, consume. Only the bcrypt hash and the expiry live on the user
// document; the plaintext secret exists once, in the return value of
// Issue.
type ResetTokenService struct {
	store database.Store
	ttl   time.Duration
}

func NewResetTokenService(store database.Store, ttl time.Duration) *ResetTokenService {
	return &ResetTokenService{store: store, ttl: ttl}
}

// Issue generates a fresh secret and persists its hash with an expiry.
// Issuing again before the previous token is used simply overwrites it,
// which keeps the one-live-token-per-user invariant.
func (s *ResetTokenService) Issue(ctx context.Context, userID string) (string, error) {
	secret, err := utils.NewResetSecret()
	if err != nil {
		return "", err
	}
	hash, err := utils.HashPassword(secret)
	if err != nil {
		return "", err
	}

	patch := bson.M{
		"resetTokenHash":   hash,
		"resetTokenExpiry": time.Now().Add(s.ttl).UnixMilli(),
	}
	if err := s.store.Update(ctx, database.UsersCollection, userID, patch); err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return "", domain.ErrUserNotFound
		}
		return "", err
	}
	return secret, nil
}

// Verify checks the secret against the stored hash without consuming it.
// A failed attempt leaves the token in place so the user can retry until
// the expiry window closes.
func (s *ResetTokenService) Verify(ctx context.Context, userID, secret string) error {
	var user models.User
	if err := s.store.GetByID(ctx, database.UsersCollection, userID, &user); err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return domain.ErrUserNotFound
		}
		return err
	}
	return checkResetToken(&user, secret)
}

// ConsumeAndReset verifies, then writes the new password hash and clears
// the reset fields in one conditional update keyed on the stored hash.
// If two attempts pass verification concurrently, only the first write
// matches; the loser gets ErrResetTokenMissing.
func (s *ResetTokenService) ConsumeAndReset(ctx context.Context, userID, secret, newPassword string) error {
	var user models.User
	if err := s.store.GetByID(ctx, database.UsersCollection, userID, &user); err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if err := checkResetToken(&user, secret); err != nil {
		return err
	}

	newHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": user.ID, "resetTokenHash": user.ResetTokenHash}
	update := bson.M{
		"$set": bson.M{
			"passwordHash": newHash,
			"updatedAt":    time.Now().UnixMilli(),
		},
		"$unset": bson.M{
			"resetTokenHash":   "",
			"resetTokenExpiry": "",
		},
	}
	matched, err := s.store.UpdateWhere(ctx, database.UsersCollection, filter, update)
	if err != nil {
		return err
	}
	if matched == 0 {
		return domain.ErrResetTokenMissing
	}
	return nil
}

func checkResetToken(user *models.User, secret string) error {
	if user.ResetTokenHash == "" {
		return domain.ErrResetTokenMissing
	}
	if time.Now().UnixMilli() > user.ResetTokenExpiry {
		return domain.ErrResetTokenExpired
	}
	if err := utils.CheckPassword(user.ResetTokenHash, secret); err != nil {
		return domain.ErrResetTokenInvalid
	}
	return nil
}
