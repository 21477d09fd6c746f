package models

import "time"

// Model replaces gorm.Model: hard deletes only, JSON-friendly field names.
type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
