package models

import (
	"time"
)

// DoorAction represents the canonical control action on a door
type DoorAction string

const (
	DoorActionLock   DoorAction = "lock"
	DoorActionUnlock DoorAction = "unlock"
)

// AccessMethod represents the method used for access
type AccessMethod string

const (
	AccessMethodApp         AccessMethod = "app"
	AccessMethodCode        AccessMethod = "code"
	AccessMethodFace        AccessMethod = "face"
	AccessMethodFingerprint AccessMethod = "fingerprint"
)

// AccessLog represents door access logs.
// 仅追加，控制管道从不修改或删除历史记录。
type AccessLog struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;index" json:"user_id"`
	DoorID    uint         `gorm:"not null;index" json:"door_id"`
	Action    DoorAction   `gorm:"type:varchar(20);not null" json:"action"`
	Success   bool         `json:"success"`
	Method    AccessMethod `gorm:"type:varchar(20)" json:"method"`
	IPAddress string       `gorm:"type:varchar(45)" json:"ip_address"`
	Timestamp time.Time    `gorm:"index" json:"timestamp"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Door *Door `gorm:"foreignKey:DoorID" json:"door,omitempty"`
}
