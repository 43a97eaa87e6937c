package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thewebvalue/task-management-api/internal/auth"
	"github.com/thewebvalue/task-management-api/internal/constants"
	apierrors "github.com/thewebvalue/task-management-api/internal/errors"
	"github.com/thewebvalue/task-management-api/internal/models"
	"github.com/thewebvalue/task-management-api/internal/services"
)

// RequireTaskAccess loads the task named by the :id parameter and checks the
// caller created it, is assigned to it or is an admin. Tasks outside that set
// are reported as not found.
func RequireTaskAccess(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}

		identity, ok := GetIdentity(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		task, err := tasks.GetTask(c.Request.Context(), identity, taskID)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrTaskNotFound):
			apierrors.NotFound(c, "Task not found or access denied")
			return
		case errors.Is(err, auth.ErrNotAuthenticated):
			apierrors.Unauthorized(c, "")
			return
		default:
			apierrors.InternalError(c, "Failed to fetch task")
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskAccess
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok && task != nil
}
