package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down  key.Binding
	Up    key.Binding
	Left  key.Binding
	Right key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// View switching
	ViewDashboard     key.Binding
	ViewTasks         key.Binding
	ViewBoard         key.Binding
	ViewNotifications key.Binding

	// Task actions
	NewTask    key.Binding
	EditTask   key.Binding
	DeleteTask key.Binding
	AssignTask key.Binding
	Grab       key.Binding

	// Notification actions
	MarkRead    key.Binding
	MarkAllRead key.Binding

	// Filters and sort
	ToggleMine key.Binding
	CycleSort  key.Binding

	// Session
	Logout key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "right"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		ViewDashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		ViewTasks: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "task list"),
		),
		ViewBoard: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "board"),
		),
		ViewNotifications: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "notifications"),
		),
		NewTask: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		EditTask: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit task"),
		),
		DeleteTask: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete task"),
		),
		AssignTask: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "assign task"),
		),
		Grab: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "grab/drop card"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark read"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "mark all read"),
		),
		ToggleMine: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "my tasks only"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle sort"),
		),
		Logout: key.NewBinding(
			key.WithKeys("Q"),
			key.WithHelp("Q", "log out"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Select, k.Back, k.Quit},
		{k.ViewDashboard, k.ViewTasks, k.ViewBoard, k.ViewNotifications},
		{k.NewTask, k.EditTask, k.DeleteTask, k.AssignTask, k.Grab},
		{k.Search, k.Refresh, k.ToggleMine, k.CycleSort},
		{k.MarkRead, k.MarkAllRead, k.Logout, k.Help},
	}
}
