// Package cache holds the client's in-memory projection of
// server-owned task and notification state. Every mutating operation
// is two-phase: the service round-trip first, then local
// reconciliation against the confirmed result. The cache never admits
// a record that has not round-tripped through the service in this
// session.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/satveer15/workflow-mgmt-tool/internal/authz"
	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

// ErrNotFound indicates the id is not present in the local cache.
var ErrNotFound = errors.New("task not found")

// ErrPermissionDenied indicates the local predicate refused the
// operation; no request was made.
var ErrPermissionDenied = errors.New("permission denied")

// TaskService is the external collaborator that owns durable task
// records. Implemented by api.TaskClient.
type TaskService interface {
	List(ctx context.Context, filters model.TaskFilters) ([]model.Task, error)
	Get(ctx context.Context, id int64) (model.Task, error)
	Create(ctx context.Context, req model.CreateTaskRequest) (model.Task, error)
	Update(ctx context.Context, id int64, req model.UpdateTaskRequest) (model.Task, error)
	Delete(ctx context.Context, id int64) error
	Assign(ctx context.Context, id int64, userID int64) (model.Task, error)
	SetStatus(ctx context.Context, id int64, status model.TaskStatus) (model.Task, error)
}

// TaskCache is the authoritative-on-the-client task collection. The
// ordered sequence is newest-first: full loads take the server's
// order, confirmed creates insert at the head. Writers are serialized
// by the mutex; readers get copies.
//
// Two concurrent loads are deliberately not coalesced: whichever
// resolves last wins, even if it was issued first. Tests depend on
// that staleness hazard staying observable.
type TaskCache struct {
	mu       sync.Mutex
	svc      TaskService
	authz    *authz.Checker
	tasks    []model.Task
	selected *model.Task
	filters  model.TaskFilters
}

// NewTaskCache creates an empty task cache.
func NewTaskCache(svc TaskService, checker *authz.Checker) *TaskCache {
	return &TaskCache{svc: svc, authz: checker}
}

// Tasks returns a copy of the cached collection in cache order.
func (c *TaskCache) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Len returns the number of cached tasks.
func (c *TaskCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

// Lookup returns a copy of the cached task with the given id.
func (c *TaskCache) Lookup(id int64) (model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Selected returns a copy of the currently selected task, or nil.
func (c *TaskCache) Selected() *model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	t := *c.selected
	return &t
}

// Select points the selection at a cached task by id; a miss clears
// the selection.
func (c *TaskCache) Select(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tasks {
		if t.ID == id {
			sel := t
			c.selected = &sel
			return
		}
	}
	c.selected = nil
}

// Filters returns the filters used by the most recent Load.
func (c *TaskCache) Filters() model.TaskFilters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Load replaces the entire cache with the server's filtered result.
// No merge: last full load wins by completion time, not issue time.
func (c *TaskCache) Load(ctx context.Context, filters model.TaskFilters) ([]model.Task, error) {
	fetched, err := c.svc.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = filters
	c.tasks = make([]model.Task, len(fetched))
	copy(c.tasks, fetched)

	out := make([]model.Task, len(fetched))
	copy(out, fetched)
	return out, nil
}

// Reload repeats the last Load with the same filters.
func (c *TaskCache) Reload(ctx context.Context) ([]model.Task, error) {
	return c.Load(ctx, c.Filters())
}

// Get fetches a single task from the service and makes it the current
// selection. The cached entry with the same id is refreshed too.
func (c *TaskCache) Get(ctx context.Context, id int64) (model.Task, error) {
	task, err := c.svc.Get(ctx, id)
	if err != nil {
		return model.Task{}, fmt.Errorf("fetching task %d: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaceLocked(task)
	sel := task
	c.selected = &sel
	return task, nil
}

// Create submits the draft and, only on confirmation, inserts the
// server's record at the head of the cache. Nothing is inserted
// before the service confirms.
func (c *TaskCache) Create(ctx context.Context, req model.CreateTaskRequest) (model.Task, error) {
	created, err := c.svc.Create(ctx, req)
	if err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append([]model.Task{created}, c.tasks...)
	return created, nil
}

// Update applies a partial update; on confirmation the cached entry
// with the same id is replaced, and the selection refreshed if it
// points at this id.
func (c *TaskCache) Update(ctx context.Context, id int64, req model.UpdateTaskRequest) (model.Task, error) {
	updated, err := c.svc.Update(ctx, id, req)
	if err != nil {
		return model.Task{}, fmt.Errorf("updating task %d: %w", id, err)
	}

	c.apply(updated)
	return updated, nil
}

// Delete removes the task server-side; on confirmation the entry is
// dropped and a matching selection cleared.
func (c *TaskCache) Delete(ctx context.Context, id int64) error {
	if err := c.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.tasks[:0]
	for _, t := range c.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	if c.selected != nil && c.selected.ID == id {
		c.selected = nil
	}
	return nil
}

// Assign reassigns the task; confirm-then-replace, same as Update.
func (c *TaskCache) Assign(ctx context.Context, id int64, userID int64) (model.Task, error) {
	updated, err := c.svc.Assign(ctx, id, userID)
	if err != nil {
		return model.Task{}, fmt.Errorf("assigning task %d: %w", id, err)
	}

	c.apply(updated)
	return updated, nil
}

// TransitionStatus moves a task to a new status. The authorization
// predicate runs first: a refusal is local, costs no network call,
// and reports ErrPermissionDenied. On service rejection the cache is
// left unchanged; optimistic placement and rollback belong to the
// board controller, not this layer.
func (c *TaskCache) TransitionStatus(ctx context.Context, id int64, status model.TaskStatus) (model.Task, error) {
	task, ok := c.Lookup(id)
	if !ok {
		return model.Task{}, fmt.Errorf("transitioning task %d: %w", id, ErrNotFound)
	}
	if !c.authz.CanUpdateStatus(&task) {
		return model.Task{}, fmt.Errorf("transitioning task %d: %w", id, ErrPermissionDenied)
	}

	updated, err := c.svc.SetStatus(ctx, id, status)
	if err != nil {
		return model.Task{}, fmt.Errorf("transitioning task %d: %w", id, err)
	}

	c.apply(updated)
	return updated, nil
}

// Clear empties the cache; used on logout.
func (c *TaskCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = nil
	c.selected = nil
	c.filters = model.TaskFilters{}
}

// apply reconciles a confirmed server record into the cache:
// replace-by-id, idempotent, never a duplicate insert.
func (c *TaskCache) apply(task model.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaceLocked(task)
}

func (c *TaskCache) replaceLocked(task model.Task) {
	for i, t := range c.tasks {
		if t.ID == task.ID {
			c.tasks[i] = task
			break
		}
	}
	if c.selected != nil && c.selected.ID == task.ID {
		sel := task
		c.selected = &sel
	}
}
