package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tasknest/backend/database"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/models"
	"github.com/tasknest/backend/utils"
)

// AuthService composes the credential, token and reset-token pieces into
// the registration, login and password flows. The signing secret is
// injected once at construction and never read from the environment here.
type AuthService struct {
	store       database.Store
	resetTokens *ResetTokenService
	mailer      Mailer
	jwtSecret   string
	tokenTTL    time.Duration
}

func NewAuthService(store database.Store, resetTokens *ResetTokenService, mailer Mailer, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		store:       store,
		resetTokens: resetTokens,
		mailer:      mailer,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
	}
}

// Register creates an account with role "user". Registration never
// auto-logs-in; the client follows up with a login call.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	name = utils.NormalizeName(name)
	if !utils.ValidName(name, 2) {
		return nil, domain.ErrNameTooShort
	}

	var existing models.User
	err := s.store.FindOne(ctx, database.UsersCollection, bson.M{"email": email}, &existing)
	if err == nil {
		return nil, domain.ErrEmailTaken
	}
	if !errors.Is(err, database.ErrNoDocument) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.store.Insert(ctx, database.UsersCollection, user)
	if err != nil {
		return nil, err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	user.ID = oid
	return user, nil
}

// Login verifies credentials and mints a bearer token. Unknown email and
// wrong password fail identically so responses cannot be used to probe
// which addresses are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	if err := s.store.FindOne(ctx, database.UsersCollection, bson.M{"email": email}, &user); err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := utils.CheckPassword(user.PasswordHash, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.jwtSecret, user.ID.Hex(), user.Email, user.Name, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// GetUserByID loads one user, ErrUserNotFound when absent.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.store.GetByID(ctx, database.UsersCollection, id, &user); err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every account, newest first. Admin views only; the
// password hash stays out via the model's json tags.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	sort := bson.D{{Key: "createdAt", Value: -1}}
	if err := s.store.Find(ctx, database.UsersCollection, bson.M{}, sort, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ChangePassword re-verifies the current password before accepting the
// new one. Outstanding bearer tokens stay valid; there is no revocation.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := utils.CheckPassword(user.PasswordHash, currentPassword); err != nil {
		return domain.ErrInvalidCurrentPassword
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	patch := bson.M{
		"passwordHash": hash,
		"updatedAt":    time.Now().UnixMilli(),
	}
	return s.store.Update(ctx, database.UsersCollection, userID, patch)
}

// ForgotPassword issues a reset token and mails the plaintext secret.
// A delivery failure surfaces to the caller; the stored token is not
// rolled back. A retried request issues a fresh token that replaces it.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	var user models.User
	if err := s.store.FindOne(ctx, database.UsersCollection, bson.M{"email": email}, &user); err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return domain.ErrUserNotFound
		}
		return err
	}

	secret, err := s.resetTokens.Issue(ctx, user.ID.Hex())
	if err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nUse the token below to reset your TaskNest password. It expires in 1 hour.\n\n%s\n\nIf you did not request this, you can ignore this email.\n",
		user.Name, secret,
	)
	return s.mailer.Send(user.Email, "Reset your TaskNest password", body)
}

// ResetPassword consumes a reset token. An email with no account behaves
// like one with no issued token.
func (s *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) (*models.User, error) {
	var user models.User
	if err := s.store.FindOne(ctx, database.UsersCollection, bson.M{"email": email}, &user); err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return nil, domain.ErrResetTokenMissing
		}
		return nil, err
	}
	if err := s.resetTokens.ConsumeAndReset(ctx, user.ID.Hex(), token, newPassword); err != nil {
		return nil, err
	}
	return &user, nil
}
