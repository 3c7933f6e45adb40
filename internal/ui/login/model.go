package login

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/satveer15/workflow-mgmt-tool/internal/model"
	"github.com/satveer15/workflow-mgmt-tool/internal/theme"
)

// SubmitLoginMsg is dispatched when the user submits the login form.
type SubmitLoginMsg struct {
	Username string
	Password string
}

// SubmitRegisterMsg is dispatched when the user submits the
// registration form.
type SubmitRegisterMsg struct {
	Request model.RegisterRequest
}

// formBindings holds form field values on the heap so that huh's
// Value() pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	username string
	email    string
	password string
}

// Model is the Bubble Tea model for the login/register screen.
type Model struct {
	form         *huh.Form
	fb           *formBindings
	registerMode bool
	errMessage   string
	width        int
	height       int
}

// New creates the login screen model.
func New(width, height int) Model {
	m := Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the active form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// SetSize updates the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetError shows a failure message under the form and resets it for
// another attempt.
func (m *Model) SetError(message string) tea.Cmd {
	m.errMessage = message
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update drives the embedded huh form and emits a submit message when
// it completes. Ctrl+T flips between login and register.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+t" {
		m.registerMode = !m.registerMode
		m.errMessage = ""
		m.fb.password = ""
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		fb := *m.fb
		submit := m.submitMsg(fb)
		m.fb.password = ""
		m.form = m.buildForm()
		return m, tea.Batch(cmd, func() tea.Msg { return submit }, m.form.Init())
	}

	return m, cmd
}

func (m Model) submitMsg(fb formBindings) tea.Msg {
	if m.registerMode {
		return SubmitRegisterMsg{
			Request: model.RegisterRequest{
				Username: strings.TrimSpace(fb.username),
				Email:    strings.TrimSpace(fb.email),
				Password: fb.password,
			},
		}
	}
	return SubmitLoginMsg{
		Username: strings.TrimSpace(fb.username),
		Password: fb.password,
	}
}

// View renders the form centered with any pending error message.
func (m Model) View() string {
	title := "Sign in to Workflow"
	hint := "ctrl+t: create an account"
	if m.registerMode {
		title = "Create a Workflow account"
		hint = "ctrl+t: back to sign in"
	}

	parts := []string{
		theme.HeaderStyle.Render(title),
		"",
		m.form.View(),
		"",
		theme.HelpStyle.Render(hint),
	}
	if m.errMessage != "" {
		parts = append(parts, "", theme.ErrorStyle.Render(m.errMessage))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Username").
			Value(&m.fb.username).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errRequired("username")
				}
				return nil
			}),
	}

	if m.registerMode {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(&m.fb.email).
			Validate(func(s string) error {
				if !strings.Contains(s, "@") {
					return errInvalidEmail
				}
				return nil
			}))
	}

	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&m.fb.password).
		Validate(func(s string) error {
			if s == "" {
				return errRequired("password")
			}
			return nil
		}))

	return huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(48).
		WithShowHelp(false)
}
