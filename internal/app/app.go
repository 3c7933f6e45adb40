package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/satveer15/workflow-mgmt-tool/internal/api"
	"github.com/satveer15/workflow-mgmt-tool/internal/authz"
	boardctl "github.com/satveer15/workflow-mgmt-tool/internal/board"
	"github.com/satveer15/workflow-mgmt-tool/internal/cache"
	"github.com/satveer15/workflow-mgmt-tool/internal/keys"
	"github.com/satveer15/workflow-mgmt-tool/internal/model"
	"github.com/satveer15/workflow-mgmt-tool/internal/session"
	appsync "github.com/satveer15/workflow-mgmt-tool/internal/sync"
	"github.com/satveer15/workflow-mgmt-tool/internal/ui"
	boardview "github.com/satveer15/workflow-mgmt-tool/internal/ui/board"
	"github.com/satveer15/workflow-mgmt-tool/internal/ui/dashboard"
	"github.com/satveer15/workflow-mgmt-tool/internal/ui/login"
	"github.com/satveer15/workflow-mgmt-tool/internal/ui/notifications"
	"github.com/satveer15/workflow-mgmt-tool/internal/ui/taskform"
	"github.com/satveer15/workflow-mgmt-tool/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewDashboard
	ViewTasks
	ViewBoard
	ViewNotifications
	ViewTaskForm
)

// Deps bundles the wired components the root model drives.
type Deps struct {
	Session       *session.Manager
	Checker       *authz.Checker
	Tasks         *cache.TaskCache
	Notifications *cache.NotificationCache
	Board         *boardctl.Controller
	Poller        *appsync.Poller
	TaskAPI       *api.TaskClient
	Users         *api.UserClient
	Analytics     *api.AnalyticsClient

	// TaskRefreshInterval is the list auto-refresh cadence.
	TaskRefreshInterval time.Duration

	// SearchDebounce is the quiet window for the list search; zero
	// falls back to the search package default.
	SearchDebounce time.Duration
}

// Messages produced by background commands.
type (
	sessionRestoredMsg struct {
		restored bool
		err      error
	}
	authResultMsg struct{ err error }
	loggedOutMsg  struct{}

	tasksLoadedMsg  struct{ err error }
	notifsLoadedMsg struct{ err error }
	analyticsMsg    struct {
		metrics model.ProductivityMetrics
		stats   model.TaskStatistics
		team    model.TeamAnalytics
		err     error
	}
	tokenRefreshedMsg  struct{ err error }
	taskRefreshTickMsg time.Time

	openFormMsg struct {
		mode  taskform.Mode
		task  model.Task
		users []model.User
	}
	taskDeletedMsg struct{ err error }
)

// Model is the root Bubble Tea model: view routing, session lifecycle,
// and fan-out of cache refreshes to the views.
type Model struct {
	deps        Deps
	keys        *keys.KeyMap
	layout      ui.Layout
	currentView ViewState

	loginView login.Model
	dashView  dashboard.Model
	listView  tasklist.Model
	boardView boardview.Model
	notifView notifications.Model
	formView  taskform.Model

	unreadCount int
	statusMsg   string
	refreshing  bool
	ready       bool
}

// New creates the root application model.
func New(deps Deps) Model {
	k := keys.DefaultKeyMap()
	if deps.TaskRefreshInterval <= 0 {
		deps.TaskRefreshInterval = 30 * time.Second
	}

	return Model{
		deps:        deps,
		keys:        k,
		currentView: ViewLogin,
		loginView:   login.New(80, 24),
		dashView:    dashboard.New(80, 24),
		listView:    tasklist.New(deps.TaskAPI, k, deps.SearchDebounce, 80, 24),
		boardView:   boardview.New(deps.Board, k, 80, 24),
		notifView:   notifications.New(deps.Notifications, k, 80, 24),
	}
}

// Init restores a persisted session if one validates.
func (m Model) Init() tea.Cmd {
	deps := m.deps
	return tea.Batch(
		m.loginView.Init(),
		func() tea.Msg {
			restored, err := deps.Session.Restore(context.Background())
			return sessionRestoredMsg{restored: restored, err: err}
		},
	)
}

// Update routes messages to the session lifecycle and the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		content := m.layout.ContentHeight()
		m.loginView.SetSize(msg.Width, msg.Height)
		m.dashView.SetSize(msg.Width, content)
		m.listView.SetSize(msg.Width, content)
		m.boardView.SetSize(msg.Width, content)
		m.notifView.SetSize(msg.Width, content)
		m.formView.SetSize(msg.Width, content)
		m.ready = true
		return m, nil

	case sessionRestoredMsg:
		if msg.restored {
			return m.enterAuthenticated()
		}
		return m, nil

	case login.SubmitLoginMsg:
		deps := m.deps
		return m, func() tea.Msg {
			err := deps.Session.Login(context.Background(), msg.Username, msg.Password)
			return authResultMsg{err: err}
		}

	case login.SubmitRegisterMsg:
		deps := m.deps
		return m, func() tea.Msg {
			err := deps.Session.Register(context.Background(), msg.Request)
			return authResultMsg{err: err}
		}

	case authResultMsg:
		if msg.err != nil {
			cmd := m.loginView.SetError(msg.err.Error())
			return m, cmd
		}
		return m.enterAuthenticated()

	case loggedOutMsg:
		return m, nil

	case tasksLoadedMsg:
		if isAuthExpired(msg.err) && !m.refreshing {
			m.refreshing = true
			return m, m.refreshTokenCmd()
		}
		if msg.err != nil {
			m.statusMsg = msg.err.Error() + " (press r to retry)"
		} else {
			m.statusMsg = ""
		}
		m.fanOutTasks()
		return m, nil

	case notifsLoadedMsg:
		if isAuthExpired(msg.err) && !m.refreshing {
			m.refreshing = true
			return m, m.refreshTokenCmd()
		}
		if msg.err == nil {
			m.notifView.Refresh()
			m.unreadCount = m.deps.Notifications.UnreadCount()
		}
		return m, nil

	case tokenRefreshedMsg:
		m.refreshing = false
		if msg.err != nil {
			// The refresh already dropped the session; tear down the
			// session-scoped state and go back to the login screen.
			m.deps.Poller.Stop()
			m.deps.Tasks.Clear()
			m.deps.Notifications.Clear()
			m.unreadCount = 0
			m.statusMsg = "session expired, sign in again"
			m.currentView = ViewLogin
			m.fanOutTasks()
			m.notifView.Refresh()
			return m, m.loginView.Init()
		}
		return m, tea.Batch(m.loadTasksCmd(), m.loadNotificationsCmd())

	case analyticsMsg:
		if msg.err == nil {
			met, stats, team := msg.metrics, msg.stats, msg.team
			m.dashView.SetMetrics(&met)
			m.dashView.SetStatistics(&stats)
			m.dashView.SetTeamAnalytics(&team)
		}
		return m, nil

	case appsync.UnreadCountMsg:
		if msg.Err == nil {
			m.unreadCount = msg.Count
		}
		return m, m.deps.Poller.WaitForNextResult()

	case taskRefreshTickMsg:
		if !m.deps.Session.IsAuthenticated() {
			return m, nil
		}
		return m, tea.Batch(m.loadTasksCmd(), m.taskRefreshTick())

	case tasklist.TaskSelectedMsg:
		m.deps.Tasks.Select(msg.TaskID)
		return m, nil

	case tasklist.SearchResultMsg:
		var cmd tea.Cmd
		m.listView, cmd = m.listView.Update(msg)
		return m, cmd

	case boardview.DropResolvedMsg:
		if msg.Err != nil {
			m.statusMsg = msg.Err.Error()
		} else {
			m.statusMsg = ""
		}
		// The drop already reloaded the cache; recompute projections.
		m.fanOutTasks()
		return m, nil

	case notifications.MarkedMsg:
		m.notifView.Refresh()
		m.unreadCount = m.deps.Notifications.UnreadCount()
		return m, nil

	case openFormMsg:
		width, height := m.layout.Width, m.layout.ContentHeight()
		switch msg.mode {
		case taskform.ModeCreate:
			m.formView = taskform.NewCreate(m.deps.Tasks, msg.users, width, height)
		case taskform.ModeAssign:
			m.formView = taskform.NewAssign(m.deps.Tasks, msg.task, msg.users, width, height)
		}
		m.currentView = ViewTaskForm
		return m, m.formView.Init()

	case taskform.SavedMsg:
		if msg.Err != nil {
			m.statusMsg = msg.Err.Error()
		} else {
			m.statusMsg = ""
		}
		m.currentView = ViewTasks
		// The cache already reconciled the confirmed record; push it
		// out and refetch to pick up server-side fields.
		m.fanOutTasks()
		return m, m.loadTasksCmd()

	case taskform.CancelledMsg:
		m.currentView = ViewTasks
		return m, nil

	case taskDeletedMsg:
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
		} else {
			m.statusMsg = ""
		}
		m.fanOutTasks()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.routeToActive(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.currentView == ViewLogin {
		var cmd tea.Cmd
		m.loginView, cmd = m.loginView.Update(msg)
		return m, cmd
	}

	// Text entry in the list's search box or the task form swallows
	// global keys.
	if m.currentView == ViewTasks && m.listView.InSearchMode() {
		return m.routeToActive(msg)
	}
	if m.currentView == ViewTaskForm {
		return m.routeToActive(msg)
	}

	k := m.keys
	switch {
	case keyMatches(msg, k.Quit):
		m.listView.Close()
		m.deps.Poller.Stop()
		return m, tea.Quit

	case keyMatches(msg, k.Logout):
		return m.logout()

	case keyMatches(msg, k.ViewDashboard):
		m.currentView = ViewDashboard
		return m, nil
	case keyMatches(msg, k.ViewTasks):
		m.currentView = ViewTasks
		return m, nil
	case keyMatches(msg, k.ViewBoard):
		m.currentView = ViewBoard
		m.boardView.Refresh()
		return m, nil
	case keyMatches(msg, k.ViewNotifications):
		m.currentView = ViewNotifications
		return m, m.loadNotificationsCmd()

	case keyMatches(msg, k.Refresh):
		m.deps.Poller.Refresh()
		return m, tea.Batch(m.loadTasksCmd(), m.loadNotificationsCmd())

	case keyMatches(msg, k.NewTask):
		if m.currentView == ViewTasks {
			return m, m.openCreateFormCmd()
		}

	case keyMatches(msg, k.EditTask):
		if m.currentView == ViewTasks {
			if task, ok := m.selectedTask(); ok {
				m.formView = taskform.NewEdit(m.deps.Tasks, task, m.layout.Width, m.layout.ContentHeight())
				m.currentView = ViewTaskForm
				return m, m.formView.Init()
			}
		}

	case keyMatches(msg, k.AssignTask):
		if m.currentView == ViewTasks {
			if !m.deps.Checker.CanAssignTasks() {
				m.statusMsg = "only managers and admins can assign tasks"
				return m, nil
			}
			if task, ok := m.selectedTask(); ok {
				return m, m.openAssignFormCmd(task)
			}
		}

	case keyMatches(msg, k.DeleteTask):
		if m.currentView == ViewTasks {
			if task, ok := m.selectedTask(); ok {
				deps := m.deps
				id := task.ID
				return m, func() tea.Msg {
					return taskDeletedMsg{err: deps.Tasks.Delete(context.Background(), id)}
				}
			}
		}
	}

	return m.routeToActive(msg)
}

// selectedTask resolves the list cursor to a cached task.
func (m Model) selectedTask() (model.Task, bool) {
	id, ok := m.listView.SelectedTaskID()
	if !ok {
		return model.Task{}, false
	}
	return m.deps.Tasks.Lookup(id)
}

// openCreateFormCmd fetches the assignee picker options first; the
// picker is hidden for roles that cannot assign.
func (m Model) openCreateFormCmd() tea.Cmd {
	deps := m.deps
	canAssign := deps.Checker.CanAssignTasks()
	return func() tea.Msg {
		var users []model.User
		if canAssign {
			users, _ = deps.Users.ListAssignable(context.Background())
		}
		return openFormMsg{mode: taskform.ModeCreate, users: users}
	}
}

func (m Model) openAssignFormCmd(task model.Task) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		users, err := deps.Users.ListAssignable(context.Background())
		if err != nil {
			return taskform.SavedMsg{Mode: taskform.ModeAssign, Err: fmt.Errorf("loading assignable users: %w", err)}
		}
		if len(users) == 0 {
			return taskform.SavedMsg{Mode: taskform.ModeAssign, Err: errors.New("no assignable users")}
		}
		return openFormMsg{mode: taskform.ModeAssign, task: task, users: users}
	}
}

func (m Model) routeToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewDashboard:
		m.dashView, cmd = m.dashView.Update(msg)
	case ViewTasks:
		m.listView, cmd = m.listView.Update(msg)
	case ViewBoard:
		m.boardView, cmd = m.boardView.Update(msg)
	case ViewNotifications:
		m.notifView, cmd = m.notifView.Update(msg)
	case ViewTaskForm:
		m.formView, cmd = m.formView.Update(msg)
	}
	return m, cmd
}

// enterAuthenticated switches to the dashboard and starts the
// session-scoped background work: initial loads, the unread poll, and
// the task auto-refresh tick.
func (m Model) enterAuthenticated() (tea.Model, tea.Cmd) {
	user := m.deps.Session.Current()
	if user == nil {
		return m, nil
	}

	m.currentView = ViewDashboard
	m.dashView.SetUser(user.Username)
	m.listView.SetUser(user.ID)

	cmds := []tea.Cmd{
		m.loadTasksCmd(),
		m.loadNotificationsCmd(),
		m.deps.Poller.Start(),
		m.taskRefreshTick(),
		m.listView.WaitForSearch(),
	}
	if m.deps.Checker.CanViewAnalytics() {
		cmds = append(cmds, m.loadAnalyticsCmd())
	}
	return m, tea.Batch(cmds...)
}

// logout tears down session-scoped state: the poller stops, both
// caches clear, and the UI returns to the login screen.
func (m Model) logout() (tea.Model, tea.Cmd) {
	m.deps.Poller.Stop()
	m.deps.Tasks.Clear()
	m.deps.Notifications.Clear()
	m.unreadCount = 0
	m.currentView = ViewLogin
	m.fanOutTasks()
	m.notifView.Refresh()

	deps := m.deps
	return m, tea.Batch(
		m.loginView.Init(),
		func() tea.Msg {
			_ = deps.Session.Logout(context.Background())
			return loggedOutMsg{}
		},
	)
}

func (m Model) loadTasksCmd() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		_, err := deps.Tasks.Reload(context.Background())
		return tasksLoadedMsg{err: err}
	}
}

func (m Model) loadNotificationsCmd() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		_, err := deps.Notifications.FetchAll(context.Background())
		return notifsLoadedMsg{err: err}
	}
}

// loadAnalyticsCmd fetches the three analytics endpoints in one
// round-trip command; any failure drops the whole batch so the
// dashboard never shows partial analytics.
func (m Model) loadAnalyticsCmd() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx := context.Background()
		met, err := deps.Analytics.Productivity(ctx)
		if err != nil {
			return analyticsMsg{err: err}
		}
		stats, err := deps.Analytics.TaskStatistics(ctx)
		if err != nil {
			return analyticsMsg{err: err}
		}
		team, err := deps.Analytics.TeamAnalytics(ctx)
		return analyticsMsg{metrics: met, stats: stats, team: team, err: err}
	}
}

// refreshTokenCmd exchanges the stored token for a fresh one after a
// request came back unauthorized. The session manager logs out on
// failure, so the caller only has to reset the UI.
func (m Model) refreshTokenCmd() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		return tokenRefreshedMsg{err: deps.Session.RefreshToken(context.Background())}
	}
}

func (m Model) taskRefreshTick() tea.Cmd {
	return tea.Tick(m.deps.TaskRefreshInterval, func(t time.Time) tea.Msg {
		return taskRefreshTickMsg(t)
	})
}

// fanOutTasks pushes the current cache contents into every projection
// view.
func (m *Model) fanOutTasks() {
	tasks := m.deps.Tasks.Tasks()
	userID := int64(0)
	if user := m.deps.Session.Current(); user != nil {
		userID = user.ID
	}
	m.dashView.SetTasks(tasks, userID)
	m.listView.SetTasks(tasks)
	m.boardView.Refresh()
}

// View renders the active view inside the shared frame.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	if m.currentView == ViewLogin {
		return m.loginView.View()
	}

	username := ""
	if user := m.deps.Session.Current(); user != nil {
		username = user.Username
	}

	header := m.layout.RenderHeader("Workflow", username, m.unreadCount)

	var content string
	switch m.currentView {
	case ViewDashboard:
		content = m.dashView.View()
	case ViewTasks:
		content = m.listView.View()
	case ViewBoard:
		content = m.boardView.View()
	case ViewNotifications:
		content = m.notifView.View()
	case ViewTaskForm:
		content = m.formView.View()
	}

	hints := "1 dashboard · 2 tasks · 3 board · 4 notifications · r refresh · Q logout · q quit"
	if m.statusMsg != "" {
		hints = m.statusMsg
	}
	statusBar := m.layout.RenderStatusBar(hints)

	return m.layout.Frame(header, content, statusBar)
}
