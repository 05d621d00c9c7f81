package models

import "time"

type User struct {
	ID           uint         `gorm:"primaryKey"`
	Username     string       `gorm:"size:150;uniqueIndex;not null"`
	PasswordHash string       `gorm:"size:255;not null"`
	IsActive     bool         `gorm:"not null"`
	Profile      *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserProfile carries per-user capability flags.
type UserProfile struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex;not null"`
	MobileApp bool `gorm:"not null"` // allowed to log in from the mobile app
	CreatedAt time.Time
	UpdatedAt time.Time
}
