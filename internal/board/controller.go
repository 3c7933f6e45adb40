// Package board drives the kanban drag gesture: it maps a continuous
// pick-up/move/drop interaction onto a single authorized status
// transition, with optimistic lane placement and rollback.
package board

import (
	"context"
	"errors"
	"sync"

	"github.com/satveer15/workflow-mgmt-tool/internal/authz"
	"github.com/satveer15/workflow-mgmt-tool/internal/cache"
	"github.com/satveer15/workflow-mgmt-tool/internal/model"
	"github.com/satveer15/workflow-mgmt-tool/internal/view"
)

// GestureState tracks the drag state machine: IDLE -> DRAGGING ->
// resolved back to IDLE on drop or cancel.
type GestureState int

const (
	Idle GestureState = iota
	Dragging
)

// Outcome reports how a drop resolved.
type Outcome int

const (
	// OutcomeCancelled covers an invalid target or a same-lane drop;
	// nothing was attempted.
	OutcomeCancelled Outcome = iota

	// OutcomeDenied means the local predicate refused the transition;
	// no request was made and the card snaps back.
	OutcomeDenied

	// OutcomeApplied means the service confirmed the transition.
	OutcomeApplied

	// OutcomeRejected means the service rejected the transition; the
	// cache is unchanged and the card snaps back.
	OutcomeRejected
)

// Controller owns the drag gesture and the transient optimistic lane
// override. The override is the only place optimism lives: the task
// cache itself is never mutated before confirmation, so clearing the
// override is a complete rollback.
type Controller struct {
	mu       sync.Mutex
	cache    *cache.TaskCache
	authz    *authz.Checker
	state    GestureState
	active   *model.Task
	override map[int64]model.TaskStatus
}

// NewController creates a board controller over the task cache.
func NewController(c *cache.TaskCache, checker *authz.Checker) *Controller {
	return &Controller{
		cache:    c,
		authz:    checker,
		override: make(map[int64]model.TaskStatus),
	}
}

// State returns the current gesture state.
func (b *Controller) State() GestureState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Active returns a copy of the task being dragged, or nil.
func (b *Controller) Active() *model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		return nil
	}
	t := *b.active
	return &t
}

// BeginDrag captures the dragged task by id. If the id is not in the
// cache the gesture stays IDLE and false is returned.
func (b *Controller) BeginDrag(id int64) bool {
	task, ok := b.cache.Lookup(id)
	if !ok {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Dragging
	b.active = &task
	return true
}

// Cancel abandons the gesture without any mutation.
func (b *Controller) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Idle
	b.active = nil
}

// Drop resolves the gesture over the given lane.
//
// No active drag or same-lane target is a cancelled no-op. A predicate
// refusal aborts before any request. Otherwise the card is placed in
// the target lane optimistically while the cache transition runs; on
// confirmation the cache's own replace reconciles, on rejection the
// override is cleared so the projection recomputes from the unchanged
// cache and the card returns to its original lane. Either way the
// board holds no state diverging from the cache once the request has
// resolved, and a full reload is triggered to flush staleness from
// concurrent editors.
func (b *Controller) Drop(ctx context.Context, lane model.TaskStatus) (Outcome, error) {
	b.mu.Lock()
	if b.state != Dragging || b.active == nil {
		b.mu.Unlock()
		return OutcomeCancelled, nil
	}
	task := *b.active
	b.state = Idle
	b.active = nil
	b.mu.Unlock()

	if !lane.IsKnown() || task.Status == lane {
		return OutcomeCancelled, nil
	}

	if !b.authz.CanUpdateStatus(&task) {
		return OutcomeDenied, cache.ErrPermissionDenied
	}

	// Optimistic placement, visible to Lanes() while the request is
	// in flight.
	b.mu.Lock()
	b.override[task.ID] = lane
	b.mu.Unlock()

	_, err := b.cache.TransitionStatus(ctx, task.ID, lane)

	b.mu.Lock()
	delete(b.override, task.ID)
	b.mu.Unlock()

	// Correct staleness accumulated from concurrent edits regardless
	// of how the transition resolved.
	_, reloadErr := b.cache.Reload(ctx)

	if err != nil {
		if errors.Is(err, cache.ErrPermissionDenied) {
			return OutcomeDenied, err
		}
		return OutcomeRejected, err
	}
	return OutcomeApplied, reloadErr
}

// Lanes projects the cached tasks into board lanes with any in-flight
// optimistic placement applied on top.
func (b *Controller) Lanes() view.Lanes {
	tasks := b.cache.Tasks()

	b.mu.Lock()
	if len(b.override) > 0 {
		for i, t := range tasks {
			if status, ok := b.override[t.ID]; ok {
				tasks[i].Status = status
			}
		}
	}
	b.mu.Unlock()

	return view.BoardLanes(tasks)
}
