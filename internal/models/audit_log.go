package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	UserID uint  `json:"userId"`
	User   *User `json:"user,omitempty"`

	Entity   string `gorm:"size:50;not null;index:idx_audit_entity" json:"entity"` // "daily_log", "circulation", "equipment", ...
	EntityID uint   `gorm:"index:idx_audit_entity" json:"entityId"`
	Action   string `gorm:"size:50;not null" json:"action"` // "create", "status_change", ...
	Details  string `gorm:"type:text" json:"details"`
}
