package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/satveer15/workflow-mgmt-tool/internal/api"
	"github.com/satveer15/workflow-mgmt-tool/internal/app"
	"github.com/satveer15/workflow-mgmt-tool/internal/authz"
	"github.com/satveer15/workflow-mgmt-tool/internal/board"
	"github.com/satveer15/workflow-mgmt-tool/internal/cache"
	"github.com/satveer15/workflow-mgmt-tool/internal/config"
	"github.com/satveer15/workflow-mgmt-tool/internal/credential"
	"github.com/satveer15/workflow-mgmt-tool/internal/session"
	appsync "github.com/satveer15/workflow-mgmt-tool/internal/sync"
	"github.com/satveer15/workflow-mgmt-tool/internal/theme"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Path to config file")
	serverURL := flag.String("server", "", "Override the API base URL")
	flag.Parse()

	cfg, err := config.EnsureFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.Server.BaseURL = *serverURL
	}
	theme.Apply(cfg.Display.Theme)

	// The client reads the token through the session manager, which in
	// turn talks through the client; the late assignment breaks the
	// cycle.
	var sessions *session.Manager
	client := api.NewClient(
		cfg.Server.BaseURL,
		time.Duration(cfg.Server.TimeoutSec)*time.Second,
		func() string {
			if sessions == nil {
				return ""
			}
			return sessions.Token()
		},
	)
	sessions = session.NewManager(api.NewAuthClient(client), credential.Store{})

	checker := authz.NewChecker(sessions)
	tasks := cache.NewTaskCache(api.NewTaskClient(client), checker)
	notifications := cache.NewNotificationCache(api.NewNotificationClient(client))
	controller := board.NewController(tasks, checker)
	poller := appsync.New(
		notifications,
		time.Duration(cfg.Poll.UnreadIntervalSec)*time.Second,
	)

	root := app.New(app.Deps{
		Session:             sessions,
		Checker:             checker,
		Tasks:               tasks,
		Notifications:       notifications,
		Board:               controller,
		Poller:              poller,
		TaskAPI:             api.NewTaskClient(client),
		Users:               api.NewUserClient(client),
		Analytics:           api.NewAnalyticsClient(client),
		TaskRefreshInterval: time.Duration(cfg.Poll.TaskRefreshIntervalSec) * time.Second,
		SearchDebounce:      time.Duration(cfg.Search.DebounceMs) * time.Millisecond,
	})

	program := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
