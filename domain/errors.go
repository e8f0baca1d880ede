package domain

import "errors"

// Sentinel errors shared between services, middleware and controllers.
// Controllers match these with errors.Is and translate them to HTTP
// responses; raw store errors must never cross that boundary.
var (
	ErrEmailTaken             = errors.New("user with this email already exists")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInvalidCurrentPassword = errors.New("current password is incorrect")
	ErrNameTooShort           = errors.New("name must be at least 2 characters")
	ErrUserNotFound           = errors.New("user not found")
	ErrTaskNotFound           = errors.New("task not found")

	ErrMissingAuthHeader = errors.New("authorization header is missing")
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenInvalid      = errors.New("invalid token")

	ErrResetTokenMissing = errors.New("no reset token issued")
	ErrResetTokenExpired = errors.New("reset token has expired")
	ErrResetTokenInvalid = errors.New("invalid reset token")

	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("access denied")

	ErrMailDelivery = errors.New("failed to send email")
)
