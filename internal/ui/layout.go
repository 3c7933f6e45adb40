package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/satveer15/workflow-mgmt-tool/internal/theme"
)

// Layout manages the terminal frame dimensions shared by all views.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentHeight returns the height available for the main content
// area, accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the top bar: application title on the left,
// the signed-in username and unread badge on the right.
func (l Layout) RenderHeader(title, username string, unread int) string {
	left := theme.HeaderStyle.Render(title)

	right := ""
	if username != "" {
		right = theme.HeaderStyle.Render("@" + username)
	}
	if unread > 0 {
		right = theme.UnreadBadgeStyle.Render(fmt.Sprintf("%d unread", unread)) + right
	}

	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderStatusBar renders the bottom bar with keyboard hints or a
// transient error message.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// Frame composes a full terminal view from header, content, and
// status bar.
func (l Layout) Frame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
