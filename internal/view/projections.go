// Package view computes read-only projections over the task cache.
// Everything here is a pure function of its inputs; projections never
// mutate cached state and are recomputed whenever the cache or the
// session changes.
package view

import (
	"sort"

	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

// DashboardStats aggregates per-status counts over the full cache.
type DashboardStats struct {
	Total      int
	Todo       int
	InProgress int
	Done       int
	Cancelled  int
}

// ComputeDashboardStats counts tasks per status. A task with an
// unrecognized status still counts toward Total.
func ComputeDashboardStats(tasks []model.Task) DashboardStats {
	stats := DashboardStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case model.StatusTodo:
			stats.Todo++
		case model.StatusInProgress:
			stats.InProgress++
		case model.StatusDone:
			stats.Done++
		case model.StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats
}

// MyTasks returns the tasks assigned to the given user, in cache order.
func MyTasks(tasks []model.Task, userID int64) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.AssignedToID != nil && *t.AssignedToID == userID {
			out = append(out, t)
		}
	}
	return out
}

// RecentTasks returns the first n tasks in cache order. Cache order is
// newest-first by construction, so these are the most recent.
func RecentTasks(tasks []model.Task, n int) []model.Task {
	if n > len(tasks) {
		n = len(tasks)
	}
	out := make([]model.Task, n)
	copy(out, tasks[:n])
	return out
}

// ListFilter narrows the list view. Zero values match everything.
type ListFilter struct {
	Status       model.TaskStatus
	Priority     model.TaskPriority
	AssignedToID *int64

	// MineOnly keeps only tasks assigned to UserID.
	MineOnly bool
	UserID   int64
}

// FilterTasks applies the list filters in order, preserving cache
// order among the survivors.
func FilterTasks(tasks []model.Task, f ListFilter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.AssignedToID != nil {
			if t.AssignedToID == nil || *t.AssignedToID != *f.AssignedToID {
				continue
			}
		}
		if f.MineOnly {
			if t.AssignedToID == nil || *t.AssignedToID != f.UserID {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// SortMode selects the list-view ordering.
type SortMode string

const (
	SortByCreatedAt SortMode = "createdAt" // descending; the default
	SortByDueDate   SortMode = "dueDate"   // ascending, nulls last
	SortByPriority  SortMode = "priority"  // HIGH before MEDIUM before LOW
	SortByStatus    SortMode = "status"    // lexical
)

// SortModes lists the cycle order for the list view.
var SortModes = []SortMode{
	SortByCreatedAt,
	SortByDueDate,
	SortByPriority,
	SortByStatus,
}

// SortTasks returns a sorted copy. The sort is stable, so ties
// (including tasks without a due date) keep their relative order.
func SortTasks(tasks []model.Task, mode SortMode) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)

	switch mode {
	case SortByDueDate:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(*b)
		})
	case SortByPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return model.PriorityRank(out[i].Priority) < model.PriorityRank(out[j].Priority)
		})
	case SortByStatus:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Status < out[j].Status
		})
	default: // SortByCreatedAt
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

// Lanes is the board partition: one slice per known status, in
// model.KnownStatuses order. A task with an unrecognized status
// appears in no lane.
type Lanes map[model.TaskStatus][]model.Task

// BoardLanes partitions the tasks into the four status lanes.
func BoardLanes(tasks []model.Task) Lanes {
	lanes := Lanes{
		model.StatusTodo:       nil,
		model.StatusInProgress: nil,
		model.StatusDone:       nil,
		model.StatusCancelled:  nil,
	}
	for _, t := range tasks {
		if !t.Status.IsKnown() {
			continue
		}
		lanes[t.Status] = append(lanes[t.Status], t)
	}
	return lanes
}
