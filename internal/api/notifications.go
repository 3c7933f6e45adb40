package api

import (
	"context"
	"fmt"

	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

// NotificationClient talks to the notification endpoints.
type NotificationClient struct {
	c *Client
}

// NewNotificationClient wraps the shared client.
func NewNotificationClient(c *Client) *NotificationClient {
	return &NotificationClient{c: c}
}

// List fetches all notifications for the current user.
func (n *NotificationClient) List(ctx context.Context) ([]model.Notification, error) {
	var out []model.Notification
	if err := n.c.Get(ctx, "/notifications", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadCount fetches only the unread counter; cheaper than List and
// used by the background poll.
func (n *NotificationClient) UnreadCount(ctx context.Context) (int, error) {
	var out int
	if err := n.c.Get(ctx, "/notifications/count", &out); err != nil {
		return 0, err
	}
	return out, nil
}

// MarkRead marks one notification read and returns the updated record.
func (n *NotificationClient) MarkRead(ctx context.Context, id int64) (model.Notification, error) {
	var out model.Notification
	if err := n.c.Put(ctx, fmt.Sprintf("/notifications/%d/read", id), nil, &out); err != nil {
		return model.Notification{}, err
	}
	return out, nil
}

// MarkAllRead marks every notification read.
func (n *NotificationClient) MarkAllRead(ctx context.Context) error {
	return n.c.Put(ctx, "/notifications/read-all", nil, nil)
}
