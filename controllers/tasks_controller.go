package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/dto"
	"github.com/tasknest/backend/middleware"
	"github.com/tasknest/backend/models"
	"github.com/tasknest/backend/services"
)

func GetTasks(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": domain.ErrUnauthorized.Error()})
			return
		}
		list, err := tasks.List(c.Request.Context(), principal)
		if err != nil {
			log.Error().Err(err).Msg("list tasks failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load tasks"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetTask(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		loadOwnedTask(c, tasks, func(task *models.Task) {
			c.JSON(http.StatusOK, task)
		})
	}
}

func CreateTask(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": domain.ErrUnauthorized.Error()})
			return
		}
		var in dto.CreateTaskDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "error": err.Error()})
			return
		}
		status := models.TaskStatus(in.Status)
		if in.Status != "" && !models.ValidTaskStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "error": "status must be todo, doing or done"})
			return
		}

		task, err := tasks.Create(c.Request.Context(), principal.ID, in.Title, in.Content, status)
		if err != nil {
			log.Error().Err(err).Msg("create task failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create task"})
			return
		}
		c.JSON(http.StatusCreated, task)
	}
}

func UpdateTask(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.UpdateTaskDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "error": err.Error()})
			return
		}

		loadOwnedTask(c, tasks, func(task *models.Task) {
			patch := map[string]any{}
			if in.Title != nil {
				patch["title"] = *in.Title
			}
			if in.Content != nil {
				patch["content"] = *in.Content
			}
			if in.Status != nil {
				if !models.ValidTaskStatus(models.TaskStatus(*in.Status)) {
					c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "error": "status must be todo, doing or done"})
					return
				}
				patch["status"] = *in.Status
			}

			updated, err := tasks.Update(c.Request.Context(), task.ID.Hex(), patch)
			if err != nil {
				log.Error().Err(err).Str("task", task.ID.Hex()).Msg("update task failed")
				c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update task"})
				return
			}
			c.JSON(http.StatusOK, updated)
		})
	}
}

func DeleteTask(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		loadOwnedTask(c, tasks, func(task *models.Task) {
			if err := tasks.Delete(c.Request.Context(), task.ID.Hex()); err != nil {
				log.Error().Err(err).Str("task", task.ID.Hex()).Msg("delete task failed")
				c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to delete task"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task deleted successfully"})
		})
	}
}

// loadOwnedTask fetches the task from the path id and runs the ownership
// guard before handing it to fn. The same policy applies to reads,
// updates and deletes.
func loadOwnedTask(c *gin.Context, tasks *services.TaskService, fn func(*models.Task)) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": domain.ErrUnauthorized.Error()})
		return
	}

	task, err := tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
			return
		}
		log.Error().Err(err).Msg("load task failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load task"})
		return
	}

	if err := middleware.CheckOwnership(principal, task.OwnerID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": domain.ErrForbidden.Error()})
		return
	}
	fn(task)
}
