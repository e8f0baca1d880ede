package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/dto"
	"github.com/tasknest/backend/middleware"
	"github.com/tasknest/backend/services"
)

func Register(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.RegisterDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "error": err.Error()})
			return
		}

		user, err := auth.Register(c.Request.Context(), in.Email, in.Password, in.Name)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNameTooShort):
				c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "error": err.Error()})
			case errors.Is(err, domain.ErrEmailTaken):
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			default:
				log.Error().Err(err).Msg("registration failed")
				c.JSON(http.StatusInternalServerError, gin.H{"message": "registration failed"})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "User registered successfully",
			"user":    user,
		})
	}
}

func Login(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.LoginDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "error": err.Error()})
			return
		}

		token, user, err := auth.Login(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
				return
			}
			log.Error().Err(err).Msg("login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "login failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   token,
			"user":    user,
		})
	}
}

// GetCurrentUser returns the resolved principal. Runs behind
// AuthMiddleware, so the token and account have already been checked.
func GetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": domain.ErrUnauthorized.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": principal})
	}
}

func ForgotPassword(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.ForgotPasswordDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "error": err.Error()})
			return
		}

		err := auth.ForgotPassword(c.Request.Context(), in.Email)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrUserNotFound):
				c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
			case errors.Is(err, domain.ErrMailDelivery):
				// The token was stored; the user should just retry.
				c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to send password reset email, please try again"})
			default:
				log.Error().Err(err).Msg("forgot-password failed")
				c.JSON(http.StatusInternalServerError, gin.H{"message": "could not start password reset"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
	}
}

func ResetPassword(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "error": "email query parameter is required"})
			return
		}
		var in dto.ResetPasswordDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "error": err.Error()})
			return
		}

		user, err := auth.ResetPassword(c.Request.Context(), email, in.Token, in.NewPassword)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrResetTokenMissing),
				errors.Is(err, domain.ErrResetTokenExpired),
				errors.Is(err, domain.ErrResetTokenInvalid):
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			default:
				log.Error().Err(err).Msg("reset-password failed")
				c.JSON(http.StatusInternalServerError, gin.H{"message": "could not reset password"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": user.ID.Hex(), "email": user.Email})
	}
}

func ChangePassword(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": domain.ErrUnauthorized.Error()})
			return
		}
		var in dto.ChangePasswordDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "error": err.Error()})
			return
		}

		err := auth.ChangePassword(c.Request.Context(), principal.ID, in.CurrentPassword, in.NewPassword)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidCurrentPassword):
				c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			case errors.Is(err, domain.ErrUserNotFound):
				c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			default:
				log.Error().Err(err).Msg("change-password failed")
				c.JSON(http.StatusInternalServerError, gin.H{"message": "could not change password"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": principal.ID, "email": principal.Email})
	}
}
