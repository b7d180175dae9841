package model

import "time"

type CategoryStatus string

const (
	CategoryStatusActive   CategoryStatus = "active"
	CategoryStatusInactive CategoryStatus = "inactive"
)

// 削除は status=inactive にするだけ
type Category struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(100);not null;index" json:"name"`
	Description string         `gorm:"type:varchar(500)" json:"description,omitempty"`
	Image       string         `gorm:"type:varchar(255)" json:"image,omitempty"`
	Status      CategoryStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
