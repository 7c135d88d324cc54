package dto

import "github.com/yigit/mobility/internal/app/models"

// NotificationListResponse is the inbox of the current user
type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int                    `json:"unreadCount"`
}

// UnreadCountResponse carries the unread badge count
type UnreadCountResponse struct {
	Count int `json:"count" example:"3"`
}

// MarkAllReadResponse reports how many notifications changed
type MarkAllReadResponse struct {
	Updated int64 `json:"updated" example:"3"`
}
