package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thewebvalue/task-management-api/internal/dto"
	apierrors "github.com/thewebvalue/task-management-api/internal/errors"
	"github.com/thewebvalue/task-management-api/internal/middleware"
	"github.com/thewebvalue/task-management-api/internal/models"
	"github.com/thewebvalue/task-management-api/internal/services"
	"github.com/thewebvalue/task-management-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks the current user created or was assigned.
// Filters: status, startDate and endDate on the deadline.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	input := services.ListTasksInput{
		Pagination: utils.GetPaginationParams(c),
	}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		input.Status = &s
	}
	deadline, err := utils.ParseDateRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		apierrors.BadRequest(c, sentence(err.Error()))
		return
	}
	input.Deadline = deadline

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), identity, input)
	if err != nil {
		respondError(c, err, "An error occurred while fetching tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, input.Pagination, total))
}

// GetTask returns a specific task by ID
// Task is already loaded with relations by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a task assigned to another user.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		AssignedTo  uint64 `json:"assigned_to" binding:"required"`
		Deadline    string `json:"deadline"`
		Notes       string `json:"notes"`
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	var deadline time.Time
	if req.Deadline != "" {
		parsed, _, err := utils.ParseDateOrTime(req.Deadline)
		if err != nil {
			apierrors.BadRequest(c, sentence(services.ErrDeadlineRequired.Error()))
			return
		}
		deadline = parsed
	}

	result, err := h.taskService.CreateTask(c.Request.Context(), identity, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Deadline:    deadline,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err, "An error occurred while creating the task")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskResponse("Task created successfully", result))
}

// UpdateTaskStatus moves a task to a new status. Assignee or admin only.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id", "task ID")
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if !bindJSON(c, &req, "Status is required") {
		return
	}

	result, err := h.taskService.UpdateStatus(c.Request.Context(), identity, taskID, req.Status)
	if err != nil {
		respondError(c, err, "An error occurred while updating task status")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponse("Task status updated successfully", result))
}

// UpdateTask edits the provided fields of a task. Creator or admin only.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id", "task ID")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Deadline    *string `json:"deadline"`
		Notes       *string `json:"notes"`
	}

	var req UpdateTaskRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Notes:       req.Notes,
	}
	if req.Deadline != nil {
		deadline, _, err := utils.ParseDateOrTime(*req.Deadline)
		if err != nil {
			apierrors.BadRequest(c, sentence(services.ErrDeadlineRequired.Error()))
			return
		}
		input.Deadline = &deadline
	}

	result, err := h.taskService.UpdateTask(c.Request.Context(), identity, taskID, input)
	if err != nil {
		respondError(c, err, "An error occurred while updating the task")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponse("Task updated successfully", result))
}

// DeleteTask soft deletes a task. Creator or admin only.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id", "task ID")
	if !ok {
		return
	}

	effects, err := h.taskService.DeleteTask(c.Request.Context(), identity, taskID)
	if err != nil {
		respondError(c, err, "An error occurred while deleting the task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Task deleted successfully",
		"side_effects": effects,
	})
}
