package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "NOT_STARTED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// TaskStatuses lists every status a task may hold.
var TaskStatuses = []TaskStatus{
	TaskStatusNotStarted,
	TaskStatusInProgress,
	TaskStatusCompleted,
}

func (s TaskStatus) Valid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	AssignedBy  uint64         `gorm:"not null;index" json:"assigned_by"`
	AssignedTo  uint64         `gorm:"not null;index" json:"assigned_to"`
	Deadline    time.Time      `gorm:"not null;index" json:"deadline"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'NOT_STARTED';index" json:"status"`
	Notes       string         `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Assigner      User           `gorm:"foreignKey:AssignedBy;constraint:OnDelete:CASCADE" json:"-"`
	Assignee      User           `gorm:"foreignKey:AssignedTo;constraint:OnDelete:CASCADE" json:"-"`
	CalendarEvent *CalendarEvent `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsOverdueCompleted reports whether the task was completed after its deadline.
func (t Task) IsOverdueCompleted() bool {
	return t.Status == TaskStatusCompleted && t.Deadline.Before(t.UpdatedAt)
}
