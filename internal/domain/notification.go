package domain

import "time"

type NotificationType string

const (
	NotifyFriendRequest  NotificationType = "friend_request"
	NotifyFriendAccepted NotificationType = "friend_accepted"
	NotifyTicketReply    NotificationType = "ticket_reply"
)

// Notification 通知记录；IsRead 由外部投递端维护
type Notification struct {
	ID        string           `gorm:"primaryKey;size:36" json:"id"`
	UserID    string           `gorm:"size:36;not null;index" json:"userId"`
	Title     string           `gorm:"size:128;not null" json:"title"`
	Message   string           `gorm:"size:512;not null" json:"message"`
	Type      NotificationType `gorm:"size:32;not null;index" json:"type"`
	Data      map[string]any   `gorm:"serializer:json;type:text" json:"data"`
	IsRead    bool             `gorm:"not null;default:false" json:"isRead"`
	CreatedAt time.Time        `gorm:"index" json:"createdAt"`
}

func (Notification) TableName() string { return "notifications" }
