package api

import (
	"context"

	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

// AnalyticsClient talks to the analytics endpoints. Statistics and
// team analytics are privileged server-side; callers gate them with
// the authz predicates for a consistent UX.
type AnalyticsClient struct {
	c *Client
}

// NewAnalyticsClient wraps the shared client.
func NewAnalyticsClient(c *Client) *AnalyticsClient {
	return &AnalyticsClient{c: c}
}

// Productivity fetches the current user's throughput metrics.
func (a *AnalyticsClient) Productivity(ctx context.Context) (model.ProductivityMetrics, error) {
	var out model.ProductivityMetrics
	if err := a.c.Get(ctx, "/analytics/productivity", &out); err != nil {
		return model.ProductivityMetrics{}, err
	}
	return out, nil
}

// TaskStatistics fetches population-wide breakdowns by status and
// priority.
func (a *AnalyticsClient) TaskStatistics(ctx context.Context) (model.TaskStatistics, error) {
	var out model.TaskStatistics
	if err := a.c.Get(ctx, "/analytics/tasks", &out); err != nil {
		return model.TaskStatistics{}, err
	}
	return out, nil
}

// TeamAnalytics fetches per-user totals.
func (a *AnalyticsClient) TeamAnalytics(ctx context.Context) (model.TeamAnalytics, error) {
	var out model.TeamAnalytics
	if err := a.c.Get(ctx, "/analytics/team", &out); err != nil {
		return model.TeamAnalytics{}, err
	}
	return out, nil
}
