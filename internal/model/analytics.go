package model

// ProductivityMetrics summarizes the current user's task throughput.
type ProductivityMetrics struct {
	TotalTasks      int64   `json:"totalTasks"`
	CompletedTasks  int64   `json:"completedTasks"`
	InProgressTasks int64   `json:"inProgressTasks"`
	TodoTasks       int64   `json:"todoTasks"`
	CompletionRate  float64 `json:"completionRate"`
}

// TaskStatistics breaks the full task population down by status and
// priority. Privileged; requires analytics access.
type TaskStatistics struct {
	TasksByStatus   map[string]int64 `json:"tasksByStatus"`
	TasksByPriority map[string]int64 `json:"tasksByPriority"`
}

// TeamAnalytics reports per-user totals. Privileged.
type TeamAnalytics struct {
	TasksPerUser          map[string]int64   `json:"tasksPerUser"`
	CompletionRatePerUser map[string]float64 `json:"completionRatePerUser"`
}
