package notifications

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/satveer15/workflow-mgmt-tool/internal/cache"
	"github.com/satveer15/workflow-mgmt-tool/internal/keys"
	"github.com/satveer15/workflow-mgmt-tool/internal/model"
	"github.com/satveer15/workflow-mgmt-tool/internal/theme"
)

// MarkedMsg reports a resolved mark-read request. The local mutation
// already happened optimistically; Err is surfaced but not rolled
// back.
type MarkedMsg struct {
	Err error
}

// Model is the notification panel.
type Model struct {
	cache  *cache.NotificationCache
	keys   *keys.KeyMap
	items  []model.Notification
	cursor int
	width  int
	height int
}

// New creates the notification panel over the notification cache.
func New(c *cache.NotificationCache, k *keys.KeyMap, width, height int) Model {
	return Model{cache: c, keys: k, width: width, height: height}
}

// Refresh re-reads the cached list.
func (m *Model) Refresh() {
	m.items = m.cache.Notifications()
	if m.cursor >= len(m.items) && m.cursor > 0 {
		m.cursor = len(m.items) - 1
	}
}

// SetSize updates the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles navigation and the mark-read actions.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.MarkRead):
		if m.cursor < len(m.items) {
			id := m.items[m.cursor].ID
			c := m.cache
			return m, func() tea.Msg {
				return MarkedMsg{Err: c.MarkRead(context.Background(), id)}
			}
		}
	case key.Matches(keyMsg, m.keys.MarkAllRead):
		c := m.cache
		return m, func() tea.Msg {
			return MarkedMsg{Err: c.MarkAllRead(context.Background())}
		}
	}

	return m, nil
}

// View renders the notification list, unread entries highlighted.
func (m Model) View() string {
	if len(m.items) == 0 {
		return theme.DimmedStyle.Render("No notifications")
	}

	rows := make([]string, 0, len(m.items))
	for i, n := range m.items {
		marker := "●"
		line := fmt.Sprintf("%s %s %s",
			marker,
			n.CreatedAt.Format("Jan 02 15:04"),
			n.Message,
		)
		switch {
		case i == m.cursor:
			line = theme.SelectedItemStyle.Render(line)
		case n.IsRead:
			line = theme.DimmedStyle.Render("  " + line[len(marker):])
		default:
			line = theme.ListItemStyle.Render(line)
		}
		rows = append(rows, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
