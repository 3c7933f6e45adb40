package tasklist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/satveer15/workflow-mgmt-tool/internal/keys"
	"github.com/satveer15/workflow-mgmt-tool/internal/model"
	"github.com/satveer15/workflow-mgmt-tool/internal/search"
	"github.com/satveer15/workflow-mgmt-tool/internal/theme"
	"github.com/satveer15/workflow-mgmt-tool/internal/view"
)

// TaskSelectedMsg is sent when the user opens a task from the list.
type TaskSelectedMsg struct {
	TaskID int64
}

// SearchResultMsg is an internal message carrying a resolved debounced
// search back into the Bubble Tea loop.
type SearchResultMsg struct {
	Result search.Result
}

// searchClearedMsg signals that a short query voided the results.
type searchClearedMsg struct{}

// Model is the task list view: filter, sort, and debounced search over
// the cached tasks.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	tasks       []model.Task
	filter      view.ListFilter
	sortIndex   int
	userID      int64
	searchMode  bool
	searchInput textinput.Model
	debouncer   *search.Debouncer
	searchCh    chan tea.Msg
	showingHits bool
	width       int
	height      int
}

// New creates a task list model. The debouncer is owned by this view
// and torn down with it; a non-positive debounce falls back to the
// package default.
func New(searcher search.TaskSearcher, k *keys.KeyMap, debounce time.Duration, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search tasks (2+ chars)..."
	si.Prompt = "/ "
	si.Width = width - 4

	searchCh := make(chan tea.Msg, 8)
	m := Model{
		list:        l,
		keys:        k,
		searchInput: si,
		searchCh:    searchCh,
		width:       width,
		height:      height,
	}
	m.debouncer = search.NewDebouncer(searcher, debounce,
		func(r search.Result) {
			searchCh <- SearchResultMsg{Result: r}
		},
		func() {
			searchCh <- searchClearedMsg{}
		},
	)
	return m
}

// SetUser records whose tasks the "mine only" filter keeps.
func (m *Model) SetUser(userID int64) {
	m.userID = userID
	m.filter.UserID = userID
}

// SetTasks refreshes the view from the cache. Search hits stay on
// screen until the query is cleared.
func (m *Model) SetTasks(tasks []model.Task) {
	m.tasks = tasks
	if !m.showingHits {
		m.refresh()
	}
}

// SetSize updates the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

// Close releases the debounce timer.
func (m *Model) Close() {
	m.debouncer.Stop()
}

// InSearchMode reports whether the search input owns the keyboard.
func (m *Model) InSearchMode() bool {
	return m.searchMode
}

// SelectedTaskID returns the id under the cursor, or false when the
// list is empty.
func (m *Model) SelectedTaskID() (int64, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return 0, false
	}
	return item.Task.ID, true
}

// WaitForSearch subscribes to debounced search results; the returned
// command blocks until the next one arrives.
func (m *Model) WaitForSearch() tea.Cmd {
	ch := m.searchCh
	return func() tea.Msg {
		return <-ch
	}
}

// Update handles key input and search resolution.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SearchResultMsg:
		if msg.Result.Err == nil {
			m.showingHits = true
			m.setItems(msg.Result.Tasks)
			m.list.Title = fmt.Sprintf("Search: %q", msg.Result.Query)
		}
		return m, m.WaitForSearch()

	case searchClearedMsg:
		m.showingHits = false
		m.list.Title = "Tasks"
		m.refresh()
		return m, m.WaitForSearch()

	case tea.KeyMsg:
		if m.searchMode {
			return m.updateSearchInput(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Search):
			m.searchMode = true
			m.searchInput.Focus()
			return m, textinput.Blink

		case key.Matches(msg, m.keys.CycleSort):
			m.sortIndex = (m.sortIndex + 1) % len(view.SortModes)
			m.refresh()
			return m, nil

		case key.Matches(msg, m.keys.ToggleMine):
			m.filter.MineOnly = !m.filter.MineOnly
			m.refresh()
			return m, nil

		case key.Matches(msg, m.keys.Select):
			if id, ok := m.SelectedTaskID(); ok {
				return m, func() tea.Msg { return TaskSelectedMsg{TaskID: id} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearchInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.debouncer.Input("")
		return m, nil
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.debouncer.Input(m.searchInput.Value())
	return m, cmd
}

// View renders the list with the search bar on top when active.
func (m Model) View() string {
	if m.searchMode {
		return m.searchInput.View() + "\n" + m.list.View()
	}
	return m.list.View()
}

// SortMode returns the active sort mode.
func (m *Model) SortMode() view.SortMode {
	return view.SortModes[m.sortIndex]
}

// refresh recomputes the visible items from the cached tasks through
// the pure projections.
func (m *Model) refresh() {
	filtered := view.FilterTasks(m.tasks, m.filter)
	sorted := view.SortTasks(filtered, m.SortMode())
	m.setItems(sorted)
}

func (m *Model) setItems(tasks []model.Task) {
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = TaskItem{Task: t}
	}
	m.list.SetItems(items)
}
