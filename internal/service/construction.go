package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"maint-logbook/internal/database"
	"maint-logbook/internal/models"

	"gorm.io/gorm"
)

var ErrProjectNotFound = &Error{Kind: ErrNotFound, Message: "construction project not found"}

type ConstructionService struct{ db *gorm.DB }

func NewConstructionService(db *gorm.DB) *ConstructionService { return &ConstructionService{db: db} }

type ProjectFilter struct {
	FiscalYear      int
	Title           string
	TargetEquipment string
	Status          models.ConstructionStatus
}

type ProjectInput struct {
	Title           string                    `json:"title"`
	FiscalYear      int                       `json:"fiscalYear"`
	TargetEquipment string                    `json:"targetEquipment"`
	Status          models.ConstructionStatus `json:"status"`
	Description     string                    `json:"description"`
	StartDate       string                    `json:"startDate"`
	EndDate         string                    `json:"endDate"`
	EquipmentIDs    []uint                    `json:"equipmentIds"`
}

// ProjectPatch updates only the fields that are set. A non-nil EquipmentIDs
// replaces the equipment links.
type ProjectPatch struct {
	Title           *string                    `json:"title"`
	FiscalYear      *int                       `json:"fiscalYear"`
	TargetEquipment *string                    `json:"targetEquipment"`
	Status          *models.ConstructionStatus `json:"status"`
	Description     *string                    `json:"description"`
	StartDate       *string                    `json:"startDate"`
	EndDate         *string                    `json:"endDate"`
	EquipmentIDs    []uint                     `json:"equipmentIds"`
}

func (s *ConstructionService) List(ctx context.Context, f ProjectFilter) ([]models.ConstructionProject, error) {
	q := s.db.WithContext(ctx).Preload("Equipment")
	if f.FiscalYear != 0 {
		q = q.Where("fiscal_year = ?", f.FiscalYear)
	}
	if t := strings.TrimSpace(f.Title); t != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(t)+"%")
	}
	if t := strings.TrimSpace(f.TargetEquipment); t != "" {
		q = q.Where("LOWER(target_equipment) LIKE ?", "%"+strings.ToLower(t)+"%")
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	projects := []models.ConstructionProject{}
	if err := q.Order("fiscal_year desc, start_date desc, id desc").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("query construction projects: %w", err)
	}
	return projects, nil
}

func (s *ConstructionService) Get(ctx context.Context, id uint) (*models.ConstructionProject, error) {
	var p models.ConstructionProject
	err := s.db.WithContext(ctx).
		Preload("Equipment").
		Preload("Reports", func(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }).
		Preload("Reports.CreatedBy").
		Preload("CreatedBy").
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query construction project %d: %w", id, err)
	}
	return &p, nil
}

func (s *ConstructionService) Create(ctx context.Context, actor Actor, in ProjectInput) (*models.ConstructionProject, error) {
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalidInput("project title is required")
	}
	if in.FiscalYear <= 0 {
		return nil, invalidInput("fiscal year is required")
	}
	status := in.Status
	if status == "" {
		status = models.ConstructionOngoing
	}
	if !status.Valid() {
		return nil, invalidInput(fmt.Sprintf("invalid project status %q", in.Status))
	}
	start, err := ParseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	if end != nil && end.Before(start) {
		return nil, invalidInput("end date is before start date")
	}

	p := models.ConstructionProject{
		Title:           title,
		FiscalYear:      in.FiscalYear,
		TargetEquipment: strings.TrimSpace(in.TargetEquipment),
		Status:          status,
		Description:     strings.TrimSpace(in.Description),
		StartDate:       start,
		EndDate:         end,
		CreatedByID:     user.ID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		equipment, err := loadEquipment(tx, in.EquipmentIDs)
		if err != nil {
			return err
		}
		if err := tx.Omit("Equipment").Create(&p).Error; err != nil {
			return fmt.Errorf("insert construction project: %w", err)
		}
		if len(equipment) > 0 {
			if err := tx.Model(&p).Association("Equipment").Append(equipment); err != nil {
				return fmt.Errorf("link equipment: %w", err)
			}
		}
		database.CreateAuditLog(tx, user.ID, "construction_project", p.ID, "create", "project "+p.Title)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, p.ID)
}

func (s *ConstructionService) Update(ctx context.Context, actor Actor, id uint, in ProjectPatch) (*models.ConstructionProject, error) {
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.ConstructionProject
		err := tx.First(&p, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		if err != nil {
			return fmt.Errorf("query construction project %d: %w", id, err)
		}

		changes := map[string]any{}
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return invalidInput("project title is required")
			}
			changes["title"] = title
		}
		if in.FiscalYear != nil {
			if *in.FiscalYear <= 0 {
				return invalidInput("fiscal year is required")
			}
			changes["fiscal_year"] = *in.FiscalYear
		}
		if in.TargetEquipment != nil {
			changes["target_equipment"] = strings.TrimSpace(*in.TargetEquipment)
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return invalidInput(fmt.Sprintf("invalid project status %q", *in.Status))
			}
			changes["status"] = *in.Status
		}
		if in.Description != nil {
			changes["description"] = strings.TrimSpace(*in.Description)
		}
		if in.StartDate != nil {
			start, err := ParseDate(*in.StartDate)
			if err != nil {
				return err
			}
			changes["start_date"] = start
		}
		if in.EndDate != nil {
			end, err := parseOptionalDate(*in.EndDate)
			if err != nil {
				return err
			}
			changes["end_date"] = end
		}
		if len(changes) > 0 {
			if err := tx.Model(&p).Updates(changes).Error; err != nil {
				return fmt.Errorf("update construction project %d: %w", id, err)
			}
		}
		if in.EquipmentIDs != nil {
			equipment, err := loadEquipment(tx, in.EquipmentIDs)
			if err != nil {
				return err
			}
			assoc := tx.Model(&p).Association("Equipment")
			if len(equipment) == 0 {
				err = assoc.Clear()
			} else {
				err = assoc.Replace(equipment)
			}
			if err != nil {
				return fmt.Errorf("replace equipment links: %w", err)
			}
		}
		database.CreateAuditLog(tx, user.ID, "construction_project", id, "update",
			fmt.Sprintf("%d fields changed", len(changes)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete refuses projects that daily log entries or reports still point at.
func (s *ConstructionService) Delete(ctx context.Context, actor Actor, id uint) error {
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.ConstructionProject
		err := tx.First(&p, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		if err != nil {
			return fmt.Errorf("query construction project %d: %w", id, err)
		}

		var entries, reports int64
		if err := tx.Model(&models.DailyLogEntry{}).Where("construction_project_id = ?", id).Count(&entries).Error; err != nil {
			return fmt.Errorf("check daily log entries: %w", err)
		}
		if err := tx.Model(&models.ConstructionReport{}).Where("construction_project_id = ?", id).Count(&reports).Error; err != nil {
			return fmt.Errorf("check reports: %w", err)
		}
		if entries > 0 || reports > 0 {
			return invalidState("project is referenced by daily logs or reports")
		}

		if err := tx.Model(&p).Association("Equipment").Clear(); err != nil {
			return fmt.Errorf("unlink equipment: %w", err)
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("delete construction project %d: %w", id, err)
		}
		database.CreateAuditLog(tx, user.ID, "construction_project", id, "delete", "project "+p.Title)
		return nil
	})
}

func loadEquipment(tx *gorm.DB, ids []uint) ([]models.Equipment, error) {
	if len(ids) == 0 {
		return []models.Equipment{}, nil
	}
	var equipment []models.Equipment
	if err := tx.Where("id IN ?", ids).Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("load equipment: %w", err)
	}
	want, _, err := countIDs(tx, &models.Equipment{}, ids)
	if err != nil {
		return nil, fmt.Errorf("check equipment: %w", err)
	}
	if len(equipment) != want {
		return nil, invalidInput("equipment not found")
	}
	return equipment, nil
}
