package models

import (
	"time"
)

// WifiStrength represents the WiFi signal quality reported by a door device
type WifiStrength string

const (
	WifiStrengthExcellent WifiStrength = "excellent"
	WifiStrengthGood      WifiStrength = "good"
	WifiStrengthFair      WifiStrength = "fair"
	WifiStrengthWeak      WifiStrength = "weak"
	WifiStrengthNoSignal  WifiStrength = "no_signal"
)

// Door represents smart door devices
type Door struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:varchar(50);not null" json:"name"`
	Location     string       `gorm:"type:varchar(100)" json:"location"`
	Locked       bool         `gorm:"default:true" json:"locked"`
	BatteryLevel int          `gorm:"default:100" json:"battery_level"` // 0-100，0表示设备离线
	WifiStrength WifiStrength `gorm:"type:varchar(20);default:'good'" json:"wifi_strength"`
	CameraActive bool         `gorm:"default:false" json:"camera_active"`
	LastUpdate   time.Time    `json:"last_update"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relations
	AccessGrants []AccessGrant `gorm:"foreignKey:DoorID" json:"access_grants,omitempty"`
	AccessLogs   []AccessLog   `gorm:"foreignKey:DoorID" json:"access_logs,omitempty"`
}

// IsOffline 判断设备是否离线（电量为0视为离线，必须拒绝控制操作）
func (d *Door) IsOffline() bool {
	return d.BatteryLevel == 0
}

// DoorStatus 门锁状态摘要，用于控制响应
type DoorStatus struct {
	Locked     bool      `json:"locked"`
	LastUpdate time.Time `json:"last_update"`
}
