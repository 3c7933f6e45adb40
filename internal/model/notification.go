package model

import "time"

// NotificationType categorizes a notification for display.
type NotificationType string

const (
	NotificationTaskAssigned  NotificationType = "TASK_ASSIGNED"
	NotificationTaskUpdated   NotificationType = "TASK_UPDATED"
	NotificationTaskCompleted NotificationType = "TASK_COMPLETED"
	NotificationTaskCancelled NotificationType = "TASK_CANCELLED"
	NotificationSystem        NotificationType = "SYSTEM"
)

// Notification is an alert surfaced to the user about task activity.
// IsRead only ever moves from false to true.
type Notification struct {
	ID        int64            `json:"id"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}
