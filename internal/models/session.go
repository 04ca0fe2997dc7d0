package models

import "time"

// DeviceSession records which app session is active on a device. A new login
// on the same device deactivates the previous row.
type DeviceSession struct {
	ID               uint   `gorm:"primarykey"`
	SessionID        string `gorm:"uniqueIndex;not null"`
	DeviceID         string `gorm:"index;not null"`
	MerchantParentID uint   `gorm:"index;not null"`
	IsActive         bool   `gorm:"default:true"`
	IPAddress        string `gorm:"type:varchar(64)"`
	UserAgent        string `gorm:"type:text"`
	LastActivityAt   time.Time
	EndedAt          *time.Time
	CreatedAt        time.Time
}
