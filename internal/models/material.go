package models

import "time"

// Material: a tracked inventory item
type Material struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Unit      string `gorm:"size:20;not null"` // kg, pcs, m3 ...
	CreatedAt time.Time
	UpdatedAt time.Time
}
