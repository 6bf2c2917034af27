package models

import (
	"time"
)

// NotificationType represents the category of a notification
type NotificationType string

const (
	NotificationTypeDoorState NotificationType = "door_state"
	NotificationTypeSecurity  NotificationType = "security"
	NotificationTypeSystem    NotificationType = "system"
)

// Notification represents in-app notifications delivered to users.
// 应用内通知列表是权威记录，推送投递失败不影响这里的数据。
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(20)" json:"type"`
	Title     string           `gorm:"type:varchar(100)" json:"title"`
	Message   string           `gorm:"type:varchar(255)" json:"message"`
	Read      bool             `gorm:"default:false" json:"read"`
	CreatedAt time.Time        `json:"created_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
