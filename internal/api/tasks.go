package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

// TaskClient talks to the task endpoints.
type TaskClient struct {
	c *Client
}

// NewTaskClient wraps the shared client.
func NewTaskClient(c *Client) *TaskClient {
	return &TaskClient{c: c}
}

// List fetches all tasks visible to the current user, optionally
// filtered server-side.
func (t *TaskClient) List(ctx context.Context, filters model.TaskFilters) ([]model.Task, error) {
	params := url.Values{}
	if filters.Status != nil {
		params.Set("status", string(*filters.Status))
	}
	if filters.AssignedToID != nil {
		params.Set("assignedToId", strconv.FormatInt(*filters.AssignedToID, 10))
	}
	if filters.CreatedByID != nil {
		params.Set("createdById", strconv.FormatInt(*filters.CreatedByID, 10))
	}

	path := "/tasks"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out []model.Task
	if err := t.c.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single task by id.
func (t *TaskClient) Get(ctx context.Context, id int64) (model.Task, error) {
	var out model.Task
	if err := t.c.Get(ctx, fmt.Sprintf("/tasks/%d", id), &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// Create submits a new task draft and returns the server's record.
func (t *TaskClient) Create(ctx context.Context, req model.CreateTaskRequest) (model.Task, error) {
	var out model.Task
	if err := t.c.Post(ctx, "/tasks", req, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// Update applies a partial update and returns the confirmed record.
func (t *TaskClient) Update(ctx context.Context, id int64, req model.UpdateTaskRequest) (model.Task, error) {
	var out model.Task
	if err := t.c.Put(ctx, fmt.Sprintf("/tasks/%d", id), req, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// Delete removes a task.
func (t *TaskClient) Delete(ctx context.Context, id int64) error {
	return t.c.Delete(ctx, fmt.Sprintf("/tasks/%d", id))
}

// Assign reassigns a task to another user.
func (t *TaskClient) Assign(ctx context.Context, id int64, userID int64) (model.Task, error) {
	var out model.Task
	req := model.AssignTaskRequest{UserID: userID}
	if err := t.c.Put(ctx, fmt.Sprintf("/tasks/%d/assign", id), req, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// SetStatus transitions a task to a new status.
func (t *TaskClient) SetStatus(ctx context.Context, id int64, status model.TaskStatus) (model.Task, error) {
	var out model.Task
	req := model.UpdateTaskStatusRequest{Status: status}
	if err := t.c.Patch(ctx, fmt.Sprintf("/tasks/%d/status", id), req, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// Search performs a server-side text search over tasks. Callers
// enforce the minimum query length before invoking.
func (t *TaskClient) Search(ctx context.Context, query string) ([]model.Task, error) {
	params := url.Values{}
	params.Set("query", query)

	var out []model.Task
	if err := t.c.Get(ctx, "/tasks/search?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}
