package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

// NotificationService is the external collaborator for notifications.
// Implemented by api.NotificationClient.
type NotificationService interface {
	List(ctx context.Context) ([]model.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id int64) (model.Notification, error)
	MarkAllRead(ctx context.Context) error
}

// NotificationCache mirrors the server's notification list plus an
// unread counter refreshed by a lightweight poll. Unlike the task
// cache, mark-read mutations are optimistic and deliberately not
// rolled back on request failure; the divergence heals on the next
// full fetch.
type NotificationCache struct {
	mu            sync.Mutex
	svc           NotificationService
	notifications []model.Notification
	unread        int
}

// NewNotificationCache creates an empty notification cache.
func NewNotificationCache(svc NotificationService) *NotificationCache {
	return &NotificationCache{svc: svc}
}

// Notifications returns a copy of the cached list.
func (c *NotificationCache) Notifications() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

// UnreadCount returns the cached unread counter.
func (c *NotificationCache) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// FetchAll replaces the cached list with the server's; same
// last-writer-wins semantics as the task load.
func (c *NotificationCache) FetchAll(ctx context.Context) ([]model.Notification, error) {
	fetched, err := c.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = make([]model.Notification, len(fetched))
	copy(c.notifications, fetched)

	out := make([]model.Notification, len(fetched))
	copy(out, fetched)
	return out, nil
}

// RefreshUnreadCount polls just the counter.
func (c *NotificationCache) RefreshUnreadCount(ctx context.Context) (int, error) {
	count, err := c.svc.UnreadCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching unread count: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.unread = count
	return count, nil
}

// MarkRead sets the notification read locally (counter floored at
// zero) and issues the confirming request. The local mutation stands
// even if the request fails.
func (c *NotificationCache) MarkRead(ctx context.Context, id int64) error {
	c.mu.Lock()
	for i, n := range c.notifications {
		if n.ID != id {
			continue
		}
		if !n.IsRead {
			c.notifications[i].IsRead = true
			if c.unread > 0 {
				c.unread--
			}
		}
		break
	}
	c.mu.Unlock()

	if _, err := c.svc.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("marking notification %d read: %w", id, err)
	}
	return nil
}

// MarkAllRead sets every cached entry read and zeroes the counter,
// then issues the confirming request; same no-rollback discipline.
func (c *NotificationCache) MarkAllRead(ctx context.Context) error {
	c.mu.Lock()
	for i := range c.notifications {
		c.notifications[i].IsRead = true
	}
	c.unread = 0
	c.mu.Unlock()

	if err := c.svc.MarkAllRead(ctx); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}

// Clear drops all cached notifications and zeroes the counter; called
// on logout.
func (c *NotificationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = nil
	c.unread = 0
}
