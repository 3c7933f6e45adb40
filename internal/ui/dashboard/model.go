package dashboard

import (
	"fmt"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/satveer15/workflow-mgmt-tool/internal/model"
	"github.com/satveer15/workflow-mgmt-tool/internal/theme"
	"github.com/satveer15/workflow-mgmt-tool/internal/view"
)

// recentLimit caps the recent and my-task panels, matching the
// dashboard's five-row cards.
const recentLimit = 5

// Model is the dashboard view: per-status counts, the user's own
// tasks, the most recent tasks, and (for privileged roles) the
// productivity metrics fetched from the analytics service.
type Model struct {
	stats      view.DashboardStats
	myTasks    []model.Task
	recent     []model.Task
	metrics    *model.ProductivityMetrics
	statistics *model.TaskStatistics
	team       *model.TeamAnalytics
	username   string
	width      int
	height     int
}

// New creates an empty dashboard model.
func New(width, height int) Model {
	return Model{width: width, height: height}
}

// SetTasks recomputes the projections from the cached tasks.
func (m *Model) SetTasks(tasks []model.Task, userID int64) {
	m.stats = view.ComputeDashboardStats(tasks)
	m.myTasks = view.RecentTasks(view.MyTasks(tasks, userID), recentLimit)
	m.recent = view.RecentTasks(tasks, recentLimit)
}

// SetUser records the username shown in the greeting.
func (m *Model) SetUser(username string) {
	m.username = username
}

// SetMetrics installs analytics data; nil hides the panel.
func (m *Model) SetMetrics(metrics *model.ProductivityMetrics) {
	m.metrics = metrics
}

// SetStatistics installs the population-wide breakdowns; nil hides the
// panel.
func (m *Model) SetStatistics(statistics *model.TaskStatistics) {
	m.statistics = statistics
}

// SetTeamAnalytics installs per-user totals; nil hides the panel.
func (m *Model) SetTeamAnalytics(team *model.TeamAnalytics) {
	m.team = team
}

// SetSize updates the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update is a no-op; the dashboard is read-only.
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the stat row and the two task panels.
func (m Model) View() string {
	statRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.statBox("Total", m.stats.Total, theme.ColorWhite),
		m.statBox("To Do", m.stats.Todo, theme.ColorBlue),
		m.statBox("In Progress", m.stats.InProgress, theme.ColorYellow),
		m.statBox("Done", m.stats.Done, theme.ColorGreen),
		m.statBox("Cancelled", m.stats.Cancelled, theme.ColorRed),
	)

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		m.taskPanel("My Tasks", m.myTasks),
		m.taskPanel("Recent Tasks", m.recent),
	)

	parts := []string{
		theme.HeaderStyle.Render("Welcome back, " + m.username),
		statRow,
		panels,
	}
	if m.metrics != nil {
		parts = append(parts, m.metricsPanel())
	}
	if m.statistics != nil || m.team != nil {
		var admin []string
		if m.statistics != nil {
			admin = append(admin, m.statisticsPanel())
		}
		if m.team != nil {
			admin = append(admin, m.teamPanel())
		}
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, admin...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) statBox(label string, value int, color lipgloss.AdaptiveColor) string {
	return theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Bold(true).Foreground(color).Render(fmt.Sprintf("%d", value)),
		theme.DimmedStyle.Render(label),
	))
}

func (m Model) taskPanel(title string, tasks []model.Task) string {
	width := m.width/2 - 4
	if width < 24 {
		width = 24
	}

	rows := []string{lipgloss.NewStyle().Bold(true).Render(title)}
	if len(tasks) == 0 {
		rows = append(rows, theme.DimmedStyle.Render("nothing here"))
	}
	for _, t := range tasks {
		status := theme.StatusStyle(t.Status).Render(string(t.Status))
		title := ansi.Truncate(t.Title, width-16, "…")
		rows = append(rows, fmt.Sprintf("%s %s", status, title))
	}

	return theme.PanelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m Model) metricsPanel() string {
	met := m.metrics
	line := fmt.Sprintf(
		"productivity: %d total · %d done · %d in progress · %.0f%% completion",
		met.TotalTasks, met.CompletedTasks, met.InProgressTasks, met.CompletionRate,
	)
	return theme.PanelStyle.Render(line)
}

// statisticsPanel renders the population-wide status and priority
// breakdowns shown to analytics-capable roles.
func (m Model) statisticsPanel() string {
	rows := []string{lipgloss.NewStyle().Bold(true).Render("All Tasks")}
	rows = append(rows, breakdownRows("by status", m.statistics.TasksByStatus)...)
	rows = append(rows, breakdownRows("by priority", m.statistics.TasksByPriority)...)
	return theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// teamPanel renders per-user totals and completion rates.
func (m Model) teamPanel() string {
	rows := []string{lipgloss.NewStyle().Bold(true).Render("Team")}
	for _, name := range sortedKeys(m.team.TasksPerUser) {
		row := fmt.Sprintf("%s: %d tasks", name, m.team.TasksPerUser[name])
		if rate, ok := m.team.CompletionRatePerUser[name]; ok {
			row += theme.DimmedStyle.Render(fmt.Sprintf(" (%.0f%% done)", rate))
		}
		rows = append(rows, row)
	}
	if len(rows) == 1 {
		rows = append(rows, theme.DimmedStyle.Render("no data"))
	}
	return theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func breakdownRows(label string, counts map[string]int64) []string {
	rows := []string{theme.DimmedStyle.Render(label)}
	for _, key := range sortedKeys(counts) {
		rows = append(rows, fmt.Sprintf("  %s: %d", key, counts[key]))
	}
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
