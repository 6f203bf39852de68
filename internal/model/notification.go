package model

import "time"

// NotificationType classifies what produced a notification
type NotificationType string

const (
	NotifyFriendRequest NotificationType = "friend_request"
	NotifyFriendAccept  NotificationType = "friend_accept"
	NotifySessionInvite NotificationType = "session_invite"
	NotifySessionUpdate NotificationType = "session_update"
	NotifyMessage       NotificationType = "message"
)

// IsValid returns true for a known notification type
func (t NotificationType) IsValid() bool {
	switch t {
	case NotifyFriendRequest, NotifyFriendAccept, NotifySessionInvite, NotifySessionUpdate, NotifyMessage:
		return true
	default:
		return false
	}
}

// Notification is a per-account notification document.
type Notification struct {
	ID        string            `json:"id"`
	AccountID string            `json:"account_id"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body,omitempty"`
	Data      map[string]string `json:"data,omitempty"` // Deep-link payload (session id, discussion id, ...)
	Read      bool              `json:"read"`
	CreatedOn time.Time         `json:"created_on"`
}

// Notification constraints
const (
	MaxNotificationTitleLength = 120
	MaxNotificationBodyLength  = 500
	DefaultNotificationPage    = 50
)
