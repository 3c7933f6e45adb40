package board

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	boardctl "github.com/satveer15/workflow-mgmt-tool/internal/board"
	"github.com/satveer15/workflow-mgmt-tool/internal/keys"
	"github.com/satveer15/workflow-mgmt-tool/internal/model"
	"github.com/satveer15/workflow-mgmt-tool/internal/theme"
	"github.com/satveer15/workflow-mgmt-tool/internal/view"
)

// DropResolvedMsg reports how a drop gesture resolved so the root
// model can refresh and surface failures.
type DropResolvedMsg struct {
	Outcome boardctl.Outcome
	Err     error
}

var laneTitles = map[model.TaskStatus]string{
	model.StatusTodo:       "To Do",
	model.StatusInProgress: "In Progress",
	model.StatusDone:       "Done",
	model.StatusCancelled:  "Cancelled",
}

// Model is the kanban board view. The cursor walks lanes and cards;
// grab picks the card under the cursor up, moving the cursor to
// another lane and dropping there drives the controller's gesture.
type Model struct {
	ctrl       *boardctl.Controller
	keys       *keys.KeyMap
	lanes      view.Lanes
	cursorLane int
	cursorRow  int
	width      int
	height     int
}

// New creates a board view over the transition controller.
func New(ctrl *boardctl.Controller, k *keys.KeyMap, width, height int) Model {
	return Model{
		ctrl:   ctrl,
		keys:   k,
		lanes:  ctrl.Lanes(),
		width:  width,
		height: height,
	}
}

// Refresh recomputes the lane projection from the cache.
func (m *Model) Refresh() {
	m.lanes = m.ctrl.Lanes()
	m.clampCursor()
}

// SetSize updates the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles board navigation and the grab/drop gesture.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Left):
		if m.cursorLane > 0 {
			m.cursorLane--
			m.clampCursor()
		}
	case key.Matches(keyMsg, m.keys.Right):
		if m.cursorLane < len(model.KnownStatuses)-1 {
			m.cursorLane++
			m.clampCursor()
		}
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursorRow > 0 {
			m.cursorRow--
		}
	case key.Matches(keyMsg, m.keys.Down):
		m.cursorRow++
		m.clampCursor()
	case key.Matches(keyMsg, m.keys.Back):
		if m.ctrl.State() == boardctl.Dragging {
			m.ctrl.Cancel()
		}
	case key.Matches(keyMsg, m.keys.Grab):
		return m.handleGrab()
	}

	return m, nil
}

// handleGrab either picks up the card under the cursor or drops the
// held card onto the cursor's lane.
func (m Model) handleGrab() (Model, tea.Cmd) {
	if m.ctrl.State() == boardctl.Dragging {
		lane := model.KnownStatuses[m.cursorLane]
		ctrl := m.ctrl
		return m, func() tea.Msg {
			outcome, err := ctrl.Drop(context.Background(), lane)
			return DropResolvedMsg{Outcome: outcome, Err: err}
		}
	}

	if task, ok := m.cardUnderCursor(); ok {
		m.ctrl.BeginDrag(task.ID)
	}
	return m, nil
}

func (m *Model) cardUnderCursor() (model.Task, bool) {
	lane := m.lanes[model.KnownStatuses[m.cursorLane]]
	if m.cursorRow >= len(lane) {
		return model.Task{}, false
	}
	return lane[m.cursorRow], true
}

func (m *Model) clampCursor() {
	lane := m.lanes[model.KnownStatuses[m.cursorLane]]
	if len(lane) == 0 {
		m.cursorRow = 0
		return
	}
	if m.cursorRow >= len(lane) {
		m.cursorRow = len(lane) - 1
	}
}

// View renders the four lanes side by side.
func (m Model) View() string {
	laneWidth := m.width/len(model.KnownStatuses) - 2
	if laneWidth < 16 {
		laneWidth = 16
	}
	laneHeight := m.height - 2

	active := m.ctrl.Active()

	columns := make([]string, 0, len(model.KnownStatuses))
	for laneIdx, status := range model.KnownStatuses {
		cards := m.lanes[status]

		header := theme.StatusStyle(status).Render(
			fmt.Sprintf("%s (%d)", laneTitles[status], len(cards)),
		)

		rows := []string{header}
		for rowIdx, task := range cards {
			rows = append(rows, m.renderCard(task, laneIdx, rowIdx, active, laneWidth))
		}
		if len(cards) == 0 {
			rows = append(rows, theme.DimmedStyle.Render("no tasks"))
		}

		style := theme.LaneStyle
		if laneIdx == m.cursorLane {
			style = theme.ActiveLaneStyle
		}
		columns = append(columns, style.
			Width(laneWidth).
			Height(laneHeight).
			Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func (m Model) renderCard(task model.Task, laneIdx, rowIdx int, active *model.Task, width int) string {
	pri := " "
	if task.Priority != "" {
		pri = theme.PriorityStyle(task.Priority).Render(string(task.Priority[0]))
	}
	title := ansi.Truncate(task.Title, width-4, "…")
	line := fmt.Sprintf("%s %s", pri, title)

	switch {
	case active != nil && active.ID == task.ID:
		return theme.GrabbedCardStyle.Render(line)
	case laneIdx == m.cursorLane && rowIdx == m.cursorRow:
		return theme.SelectedCardStyle.Render(line)
	default:
		return theme.CardStyle.Render(line)
	}
}
