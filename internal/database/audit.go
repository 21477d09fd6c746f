package database

import (
	"log/slog"

	"maint-logbook/internal/models"

	"gorm.io/gorm"
)

// CreateAuditLog writes one audit record. Pass the open transaction when the
// change is transactional so the record commits or rolls back with it.
// Failures are logged, never returned.
func CreateAuditLog(db *gorm.DB, userID uint, entity string, entityID uint, action, details string) {
	if db == nil {
		return
	}
	record := models.AuditLog{
		UserID:   userID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	if err := db.Create(&record).Error; err != nil {
		slog.Warn("audit.write.failed", "entity", entity, "entity_id", entityID, "action", action, "err", err)
	}
}
