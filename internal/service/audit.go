package service

import (
	"context"
	"fmt"

	"maint-logbook/internal/models"

	"gorm.io/gorm"
)

const auditPageSize = 200

type AuditService struct{ db *gorm.DB }

func NewAuditService(db *gorm.DB) *AuditService { return &AuditService{db: db} }

// List returns the latest audit records, optionally for one entity type.
func (s *AuditService) List(ctx context.Context, entity string) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Preload("User").Order("created_at desc, id desc").Limit(auditPageSize)
	if entity != "" {
		q = q.Where("entity = ?", entity)
	}
	logs := []models.AuditLog{}
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	return logs, nil
}
