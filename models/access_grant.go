package models

import (
	"time"
)

// AccessGrant represents per-user door access authorization.
// 授权记录的存在与否即是用户能否控制该门的唯一依据。
type AccessGrant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_door" json:"user_id"`
	DoorID    uint      `gorm:"not null;uniqueIndex:idx_user_door" json:"door_id"`
	GrantedAt time.Time `json:"granted_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Door *Door `gorm:"foreignKey:DoorID" json:"door,omitempty"`
}
