package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/middleware"
	"github.com/tasknest/backend/services"
)

// Admin handlers run behind AuthMiddleware + AdminOnly; they never check
// ownership because the admin role bypasses it.

func GetUsers(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := auth.ListUsers(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Msg("list users failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch users"})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func GetAllTasks(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, _ := middleware.GetPrincipal(c)
		list, err := tasks.List(c.Request.Context(), principal)
		if err != nil {
			log.Error().Err(err).Msg("list all tasks failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch tasks"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetUserTasks(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := tasks.ListByOwner(c.Request.Context(), c.Param("userId"))
		if err != nil {
			log.Error().Err(err).Msg("list user tasks failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch user tasks"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetUserDetails(auth *services.AuthService, tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		user, err := auth.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
				return
			}
			log.Error().Err(err).Msg("fetch user details failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch user details"})
			return
		}

		list, err := tasks.ListByOwner(c.Request.Context(), userID)
		if err != nil {
			log.Error().Err(err).Msg("fetch user tasks failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch user details"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":      user,
			"tasks":     list,
			"taskCount": len(list),
		})
	}
}
