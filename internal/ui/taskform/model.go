// Package taskform is the create/edit/assign form. Mutations follow
// the cache's confirm-then-reconcile discipline: the form submits, the
// cache talks to the service, and the list refreshes from the
// confirmed result.
package taskform

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/satveer15/workflow-mgmt-tool/internal/cache"
	"github.com/satveer15/workflow-mgmt-tool/internal/model"
	"github.com/satveer15/workflow-mgmt-tool/internal/theme"
)

// Mode selects what the form does on submit.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
	ModeAssign
)

// SavedMsg reports a resolved submit.
type SavedMsg struct {
	Mode Mode
	Err  error
}

// CancelledMsg reports the form was dismissed without submitting.
type CancelledMsg struct{}

const dueDateLayout = "2006-01-02"

// formBindings holds field values on the heap so huh's Value()
// pointers survive Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	priority    string
	assignee    string
	dueDate     string
}

// Model is the task form view.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	mode   Mode
	taskID int64
	tasks  *cache.TaskCache
	width  int
	height int
}

// NewCreate builds an empty creation form. The users populate the
// assignee picker; pass nil to hide it.
func NewCreate(tasks *cache.TaskCache, users []model.User, width, height int) Model {
	m := Model{
		fb:     &formBindings{priority: string(model.PriorityMedium)},
		mode:   ModeCreate,
		tasks:  tasks,
		width:  width,
		height: height,
	}
	m.form = m.buildForm(users)
	return m
}

// NewEdit builds a form prefilled from the task being edited.
func NewEdit(tasks *cache.TaskCache, task model.Task, width, height int) Model {
	fb := &formBindings{
		title:    task.Title,
		priority: string(task.Priority),
	}
	if task.Description != nil {
		fb.description = *task.Description
	}
	if task.DueDate != nil {
		fb.dueDate = task.DueDate.Format(dueDateLayout)
	}

	m := Model{
		fb:     fb,
		mode:   ModeEdit,
		taskID: task.ID,
		tasks:  tasks,
		width:  width,
		height: height,
	}
	m.form = m.buildForm(nil)
	return m
}

// NewAssign builds a single-field reassignment form.
func NewAssign(tasks *cache.TaskCache, task model.Task, users []model.User, width, height int) Model {
	fb := &formBindings{}
	if task.AssignedToID != nil {
		fb.assignee = strconv.FormatInt(*task.AssignedToID, 10)
	}

	m := Model{
		fb:     fb,
		mode:   ModeAssign,
		taskID: task.ID,
		tasks:  tasks,
		width:  width,
		height: height,
	}
	m.form = m.buildForm(users)
	return m
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// SetSize updates the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update drives the embedded form; esc cancels, completion submits.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		return m, func() tea.Msg { return CancelledMsg{} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, tea.Batch(cmd, m.submitCmd())
	}

	return m, cmd
}

// View renders the form centered.
func (m Model) View() string {
	title := "New Task"
	switch m.mode {
	case ModeEdit:
		title = "Edit Task"
	case ModeAssign:
		title = "Assign Task"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.HeaderStyle.Render(title),
		"",
		m.form.View(),
		"",
		theme.HelpStyle.Render("esc: cancel"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) submitCmd() tea.Cmd {
	fb := *m.fb
	mode := m.mode
	taskID := m.taskID
	tasks := m.tasks

	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch mode {
		case ModeCreate:
			err = submitCreate(ctx, tasks, fb)
		case ModeEdit:
			err = submitEdit(ctx, tasks, taskID, fb)
		case ModeAssign:
			err = submitAssign(ctx, tasks, taskID, fb)
		}
		return SavedMsg{Mode: mode, Err: err}
	}
}

func submitCreate(ctx context.Context, tasks *cache.TaskCache, fb formBindings) error {
	req := model.CreateTaskRequest{
		Title:       strings.TrimSpace(fb.title),
		Description: strings.TrimSpace(fb.description),
		Priority:    model.TaskPriority(fb.priority),
	}
	if id, ok := parseAssignee(fb.assignee); ok {
		req.AssignedToID = &id
	}
	due, err := parseDueDate(fb.dueDate)
	if err != nil {
		return err
	}
	req.DueDate = due

	_, err = tasks.Create(ctx, req)
	return err
}

func submitEdit(ctx context.Context, tasks *cache.TaskCache, taskID int64, fb formBindings) error {
	title := strings.TrimSpace(fb.title)
	description := strings.TrimSpace(fb.description)
	priority := model.TaskPriority(fb.priority)

	req := model.UpdateTaskRequest{
		Title:       &title,
		Description: &description,
		Priority:    &priority,
	}
	due, err := parseDueDate(fb.dueDate)
	if err != nil {
		return err
	}
	req.DueDate = due

	_, err = tasks.Update(ctx, taskID, req)
	return err
}

func submitAssign(ctx context.Context, tasks *cache.TaskCache, taskID int64, fb formBindings) error {
	id, ok := parseAssignee(fb.assignee)
	if !ok {
		return fmt.Errorf("no assignee selected")
	}
	_, err := tasks.Assign(ctx, taskID, id)
	return err
}

func parseAssignee(value string) (int64, bool) {
	if value == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func parseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dueDateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("due date must be YYYY-MM-DD")
	}
	return &t, nil
}

func (m *Model) buildForm(users []model.User) *huh.Form {
	var fields []huh.Field

	if m.mode != ModeAssign {
		fields = append(fields,
			huh.NewInput().
				Title("Title").
				Value(&m.fb.title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Value(&m.fb.description).
				Lines(3),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("High", string(model.PriorityHigh)),
					huh.NewOption("Medium", string(model.PriorityMedium)),
					huh.NewOption("Low", string(model.PriorityLow)),
				).
				Value(&m.fb.priority),
			huh.NewInput().
				Title("Due date (YYYY-MM-DD, optional)").
				Value(&m.fb.dueDate).
				Validate(func(s string) error {
					_, err := parseDueDate(s)
					return err
				}),
		)
	}

	if m.mode != ModeEdit && len(users) > 0 {
		opts := make([]huh.Option[string], 0, len(users)+1)
		if m.mode == ModeCreate {
			opts = append(opts, huh.NewOption("Unassigned", ""))
		}
		for _, u := range users {
			opts = append(opts, huh.NewOption(u.Username, strconv.FormatInt(u.ID, 10)))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Assignee").
			Options(opts...).
			Value(&m.fb.assignee))
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(56).
		WithShowHelp(false)
}
