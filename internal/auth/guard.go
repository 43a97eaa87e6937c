package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated means no usable identity accompanied the request.
	ErrNotAuthenticated = errors.New("authentication required")
	// ErrForbidden means the identity is known but lacks privilege or ownership.
	ErrForbidden = errors.New("access denied")
)

type Action string

const (
	ActionReadTask         Action = "task:read"
	ActionUpdateTaskStatus Action = "task:update_status"
	ActionUpdateTask       Action = "task:update"
	ActionDeleteTask       Action = "task:delete"
	// ActionReadUserResource covers profiles, performance scores and analytics.
	ActionReadUserResource Action = "user:read"
	ActionAdminOnly        Action = "admin"
)

// Resource carries the already-resolved ownership facts the guard needs.
// Task actions use AssignedBy/AssignedTo; user actions use OwnerID.
type Resource struct {
	OwnerID    uint64
	AssignedBy uint64
	AssignedTo uint64
}

// TaskResource describes a task's ownership.
func TaskResource(assignedBy, assignedTo uint64) Resource {
	return Resource{AssignedBy: assignedBy, AssignedTo: assignedTo}
}

// UserResource describes a resource owned by a single user.
func UserResource(ownerID uint64) Resource {
	return Resource{OwnerID: ownerID}
}

// Authorize decides whether identity may perform action on resource. It
// performs no I/O. Denials wrap ErrNotAuthenticated or ErrForbidden.
func Authorize(identity *Identity, action Action, resource Resource) error {
	if identity == nil || identity.ID == 0 {
		return ErrNotAuthenticated
	}
	if identity.IsAdmin() {
		return nil
	}

	switch action {
	case ActionUpdateTaskStatus:
		if identity.ID == resource.AssignedTo {
			return nil
		}
		return fmt.Errorf("%w: only the assigned user can update task status", ErrForbidden)
	case ActionUpdateTask, ActionDeleteTask:
		if identity.ID == resource.AssignedBy {
			return nil
		}
		return fmt.Errorf("%w: only the task creator can modify this task", ErrForbidden)
	case ActionReadTask:
		if identity.ID == resource.AssignedBy || identity.ID == resource.AssignedTo {
			return nil
		}
		return fmt.Errorf("%w: task belongs to other users", ErrForbidden)
	case ActionReadUserResource:
		if identity.ID == resource.OwnerID {
			return nil
		}
		return fmt.Errorf("%w: unauthorized access to resource", ErrForbidden)
	case ActionAdminOnly:
		return fmt.Errorf("%w: admin access required", ErrForbidden)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrForbidden, action)
	}
}
