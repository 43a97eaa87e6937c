package dto

import (
	"time"

	"github.com/thewebvalue/task-management-api/internal/models"
	"github.com/thewebvalue/task-management-api/internal/services"
	"github.com/thewebvalue/task-management-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                 uint64            `json:"id"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	AssignedBy         uint64            `json:"assigned_by"`
	AssignedTo         uint64            `json:"assigned_to"`
	AssignedByName     string            `json:"assigned_by_name,omitempty"`
	AssignedToName     string            `json:"assigned_to_name,omitempty"`
	AssignedToEmail    string            `json:"assigned_to_email,omitempty"`
	Deadline           time.Time         `json:"deadline"`
	Status             models.TaskStatus `json:"status"`
	Notes              string            `json:"notes"`
	GoogleEventID      *string           `json:"google_event_id,omitempty"`
	MicrosoftEventID   *string           `json:"microsoft_event_id,omitempty"`
	IsOverdueCompleted bool              `json:"is_overdue_completed"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// TaskResponse wraps a written task with its side-effect report.
type TaskResponse struct {
	Message     string                `json:"message"`
	Task        TaskDTO               `json:"task"`
	SideEffects []services.SideEffect `json:"side_effects"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO. Names are filled from
// preloaded relations when present.
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:                 task.ID,
		Title:              task.Title,
		Description:        task.Description,
		AssignedBy:         task.AssignedBy,
		AssignedTo:         task.AssignedTo,
		Deadline:           task.Deadline,
		Status:             task.Status,
		Notes:              task.Notes,
		IsOverdueCompleted: task.IsOverdueCompleted(),
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
	}

	if task.Assigner.ID != 0 {
		dto.AssignedByName = task.Assigner.FullName
	}
	if task.Assignee.ID != 0 {
		dto.AssignedToName = task.Assignee.FullName
		dto.AssignedToEmail = task.Assignee.Email
	}
	if task.CalendarEvent != nil {
		dto.GoogleEventID = task.CalendarEvent.GoogleEventID
		dto.MicrosoftEventID = task.CalendarEvent.MicrosoftEventID
	}

	return dto
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskResponse converts an orchestrator result to its response body.
func ToTaskResponse(message string, result *services.TaskResult) TaskResponse {
	effects := result.SideEffects
	if effects == nil {
		effects = []services.SideEffect{}
	}
	return TaskResponse{
		Message:     message,
		Task:        ToTaskDTO(*result.Task),
		SideEffects: effects,
	}
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskListResponse {
	return TaskListResponse{
		Tasks:      ToTaskDTOs(tasks),
		Pagination: params.Describe(total),
	}
}
