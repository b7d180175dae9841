package model

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string     `gorm:"type:varchar(50);not null" json:"firstName"`
	LastName     string     `gorm:"type:varchar(50);not null" json:"lastName"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Phone        string     `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Address      string     `gorm:"type:varchar(200)" json:"address,omitempty"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ProfileImage string     `gorm:"type:varchar(255)" json:"profileImage,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (u User) IsActive() bool {
	return u.Status == UserStatusActive
}
