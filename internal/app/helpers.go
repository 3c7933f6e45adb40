package app

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/satveer15/workflow-mgmt-tool/internal/api"
)

// keyMatches is a small alias to keep the Update switch readable.
func keyMatches(msg tea.KeyMsg, binding key.Binding) bool {
	return key.Matches(msg, binding)
}

// isAuthExpired reports whether err is, or wraps, a 401 from the
// server, meaning the bearer token is no longer accepted.
func isAuthExpired(err error) bool {
	var apiErr *api.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
