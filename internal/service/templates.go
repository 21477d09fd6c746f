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

var ErrTemplateNotFound = &Error{Kind: ErrNotFound, Message: "inspection template not found"}

type TemplateService struct{ db *gorm.DB }

func NewTemplateService(db *gorm.DB) *TemplateService { return &TemplateService{db: db} }

type FieldInput struct {
	Name     string                 `json:"name"`
	Type     models.MeasurementType `json:"type"`
	Unit     string                 `json:"unit"`
	MinValue *float64               `json:"minValue"`
	MaxValue *float64               `json:"maxValue"`
	Interval *int                   `json:"interval"`
}

type ItemInput struct {
	ItemName          string       `json:"itemName"`
	Description       string       `json:"description"`
	Required          bool         `json:"required"`
	MeasurementFields []FieldInput `json:"measurementFields"`
}

type TemplateInput struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Items       []ItemInput `json:"items"`
}

func withTemplateDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Items.MeasurementFields", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("CreatedBy")
}

func (s *TemplateService) List(ctx context.Context) ([]models.InspectionTemplate, error) {
	templates := []models.InspectionTemplate{}
	if err := withTemplateDetails(s.db.WithContext(ctx)).
		Order("created_at desc, id desc").
		Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("query inspection templates: %w", err)
	}
	return templates, nil
}

func (s *TemplateService) Get(ctx context.Context, id uint) (*models.InspectionTemplate, error) {
	var t models.InspectionTemplate
	err := withTemplateDetails(s.db.WithContext(ctx)).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query inspection template %d: %w", id, err)
	}
	return &t, nil
}

func buildItems(in []ItemInput) ([]models.InspectionTemplateItem, error) {
	items := make([]models.InspectionTemplateItem, 0, len(in))
	for i, it := range in {
		name := strings.TrimSpace(it.ItemName)
		if name == "" {
			return nil, invalidInput(fmt.Sprintf("item %d: name is required", i+1))
		}
		item := models.InspectionTemplateItem{
			ItemName:    name,
			Description: strings.TrimSpace(it.Description),
			Required:    it.Required,
			Position:    i + 1,
		}
		for _, f := range it.MeasurementFields {
			fname := strings.TrimSpace(f.Name)
			if fname == "" {
				return nil, invalidInput(fmt.Sprintf("item %d: measurement field name is required", i+1))
			}
			if !f.Type.Valid() {
				return nil, invalidInput(fmt.Sprintf("item %d: invalid measurement type %q", i+1, f.Type))
			}
			if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
				return nil, invalidInput(fmt.Sprintf("item %d: %s min value exceeds max value", i+1, fname))
			}
			item.MeasurementFields = append(item.MeasurementFields, models.MeasurementField{
				Name:     fname,
				Type:     f.Type,
				Unit:     strings.TrimSpace(f.Unit),
				MinValue: f.MinValue,
				MaxValue: f.MaxValue,
				Interval: f.Interval,
			})
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *TemplateService) Create(ctx context.Context, actor Actor, in TemplateInput) (*models.InspectionTemplate, error) {
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidInput("template name is required")
	}
	items, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}

	t := models.InspectionTemplate{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedByID: user.ID,
		Items:       items,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&t).Error; err != nil {
			return fmt.Errorf("insert inspection template: %w", err)
		}
		database.CreateAuditLog(tx, user.ID, "inspection_template", t.ID, "create",
			fmt.Sprintf("template %q with %d items", t.Name, len(items)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, t.ID)
}

// Update renames the template and replaces all of its items.
func (s *TemplateService) Update(ctx context.Context, actor Actor, id uint, in TemplateInput) (*models.InspectionTemplate, error) {
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidInput("template name is required")
	}
	items, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.InspectionTemplate
		err := tx.First(&t, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		if err != nil {
			return fmt.Errorf("query inspection template %d: %w", id, err)
		}
		if err := deleteTemplateItems(tx, id); err != nil {
			return err
		}
		if err := tx.Model(&t).Updates(map[string]any{
			"name":        name,
			"description": strings.TrimSpace(in.Description),
		}).Error; err != nil {
			return fmt.Errorf("update inspection template %d: %w", id, err)
		}
		if len(items) > 0 {
			for i := range items {
				items[i].TemplateID = id
			}
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("insert template items: %w", err)
			}
		}
		database.CreateAuditLog(tx, user.ID, "inspection_template", id, "update",
			fmt.Sprintf("template %q with %d items", name, len(items)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the template. Reports made from it keep their results and
// lose the template link.
func (s *TemplateService) Delete(ctx context.Context, actor Actor, id uint) error {
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.InspectionTemplate
		err := tx.First(&t, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		if err != nil {
			return fmt.Errorf("query inspection template %d: %w", id, err)
		}
		if err := tx.Model(&models.ConstructionReport{}).
			Where("template_id = ?", id).
			Update("template_id", nil).Error; err != nil {
			return fmt.Errorf("unlink reports: %w", err)
		}
		if err := deleteTemplateItems(tx, id); err != nil {
			return err
		}
		if err := tx.Delete(&t).Error; err != nil {
			return fmt.Errorf("delete inspection template %d: %w", id, err)
		}
		database.CreateAuditLog(tx, user.ID, "inspection_template", id, "delete", "template "+t.Name)
		return nil
	})
}

// deleteTemplateItems drops items and their measurement fields. Fields
// already used by recorded measurements block the deletion.
func deleteTemplateItems(tx *gorm.DB, templateID uint) error {
	itemIDs := tx.Model(&models.InspectionTemplateItem{}).Select("id").Where("template_id = ?", templateID)
	fieldIDs := tx.Model(&models.MeasurementField{}).Select("id").Where("item_id IN (?)", itemIDs)

	var used int64
	if err := tx.Model(&models.Measurement{}).Where("measurement_field_id IN (?)", fieldIDs).Count(&used).Error; err != nil {
		return fmt.Errorf("check recorded measurements: %w", err)
	}
	if used > 0 {
		return invalidState("template fields already have recorded measurements")
	}
	if err := tx.Where("item_id IN (?)", itemIDs).Delete(&models.MeasurementField{}).Error; err != nil {
		return fmt.Errorf("delete measurement fields: %w", err)
	}
	if err := tx.Where("template_id = ?", templateID).Delete(&models.InspectionTemplateItem{}).Error; err != nil {
		return fmt.Errorf("delete template items: %w", err)
	}
	return nil
}
