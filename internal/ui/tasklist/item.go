package tasklist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/satveer15/workflow-mgmt-tool/internal/model"
	"github.com/satveer15/workflow-mgmt-tool/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// ItemDelegate implements list.ItemDelegate for rendering task rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	task := ti.Task

	statusBadge := theme.StatusStyle(task.Status).Render(string(task.Status))
	priBadge := theme.PriorityStyle(task.Priority).Render(string(task.Priority))

	assignee := ""
	if task.AssignedToUsername != nil {
		assignee = theme.DimmedStyle.Render(" @" + *task.AssignedToUsername)
	}

	due := ""
	if task.DueDate != nil {
		due = theme.DueDateStyle.Render(" due " + task.DueDate.Format("Jan 02"))
		if task.DueDate.Before(time.Now()) && task.Status != model.StatusDone &&
			task.Status != model.StatusCancelled {
			due += theme.OverdueStyle.Render(" OVERDUE")
		}
	}

	line := fmt.Sprintf("%s %s %s%s%s", statusBadge, priBadge, task.Title, assignee, due)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
