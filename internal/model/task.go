package model

import "time"

// TaskStatus is one of the four fixed workflow states. The data model
// places no restriction on transitions; permission to transition is
// decided by the authz package.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
	StatusCancelled  TaskStatus = "CANCELLED"
)

// KnownStatuses lists the four statuses in board lane order.
var KnownStatuses = []TaskStatus{
	StatusTodo,
	StatusInProgress,
	StatusDone,
	StatusCancelled,
}

// IsKnown reports whether s is one of the four recognized statuses.
func (s TaskStatus) IsKnown() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// TaskPriority is the task urgency level.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// PriorityRank returns the sort ordinal for a priority: HIGH sorts
// before MEDIUM before LOW. Unknown priorities sort last.
func PriorityRank(p TaskPriority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// Task is the server-owned work item as cached on the client.
type Task struct {
	// ID is assigned by the server and never changes.
	ID int64 `json:"id"`

	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`

	// Creator identity, immutable after creation.
	CreatedByID       int64  `json:"createdById"`
	CreatedByUsername string `json:"createdByUsername"`

	// Assignee identity; nil when unassigned.
	AssignedToID       *int64  `json:"assignedToId"`
	AssignedToUsername *string `json:"assignedToUsername"`

	DueDate *time.Time `json:"dueDate"`

	// Server-set timestamps.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Priority     TaskPriority `json:"priority,omitempty"`
	AssignedToID *int64       `json:"assignedToId,omitempty"`
	DueDate      *time.Time   `json:"dueDate,omitempty"`
}

// UpdateTaskRequest is a partial update; nil fields are left unchanged
// by the server.
type UpdateTaskRequest struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
}

// AssignTaskRequest reassigns a task to another user.
type AssignTaskRequest struct {
	UserID int64 `json:"userId"`
}

// UpdateTaskStatusRequest moves a task to a new status.
type UpdateTaskStatusRequest struct {
	Status TaskStatus `json:"status"`
}

// TaskFilters narrows a full-list fetch server-side. Nil fields match
// everything.
type TaskFilters struct {
	Status       *TaskStatus
	AssignedToID *int64
	CreatedByID  *int64
}
