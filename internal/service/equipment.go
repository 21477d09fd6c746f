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

var ErrEquipmentNotFound = &Error{Kind: ErrNotFound, Message: "equipment not found"}

type EquipmentService struct{ db *gorm.DB }

func NewEquipmentService(db *gorm.DB) *EquipmentService { return &EquipmentService{db: db} }

type EquipmentInput struct {
	Name             string                 `json:"name"`
	Type             string                 `json:"type"`
	Status           models.EquipmentStatus `json:"status"`
	InstallationDate string                 `json:"installationDate"`
	Manufacturer     string                 `json:"manufacturer"`
	ModelNumber      string                 `json:"modelNumber"`
}

type PartInput struct {
	PartName         string   `json:"partName"`
	PartNumber       string   `json:"partNumber"`
	Manufacturer     string   `json:"manufacturer"`
	Supplier         string   `json:"supplier"`
	LastOrderedDate  string   `json:"lastOrderedDate"`
	LastOrderedPrice *float64 `json:"lastOrderedPrice"`
	Notes            string   `json:"notes"`
}

type InspectionInput struct {
	InspectionDate string `json:"inspectionDate"`
	Findings       string `json:"findings"`
	Issues         string `json:"issues"`
}

func (s *EquipmentService) List(ctx context.Context) ([]models.Equipment, error) {
	items := []models.Equipment{}
	if err := s.db.WithContext(ctx).
		Preload("Parts").
		Order("name asc, id asc").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("query equipment: %w", err)
	}
	return items, nil
}

func (s *EquipmentService) Get(ctx context.Context, id uint) (*models.Equipment, error) {
	var eq models.Equipment
	err := s.db.WithContext(ctx).
		Preload("Parts", func(db *gorm.DB) *gorm.DB { return db.Order("part_name asc") }).
		Preload("Inspections", func(db *gorm.DB) *gorm.DB { return db.Order("inspection_date desc, id desc") }).
		Preload("Inspections.Inspector").
		Preload("ConstructionProjects", func(db *gorm.DB) *gorm.DB { return db.Order("start_date desc") }).
		First(&eq, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEquipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query equipment %d: %w", id, err)
	}
	return &eq, nil
}

func (in EquipmentInput) apply(eq *models.Equipment) error {
	name := strings.TrimSpace(in.Name)
	typ := strings.TrimSpace(in.Type)
	if name == "" || typ == "" {
		return invalidInput("equipment name and type are required")
	}
	status := in.Status
	if status == "" {
		status = models.EquipmentOperational
	}
	if !status.Valid() {
		return invalidInput(fmt.Sprintf("invalid equipment status %q", in.Status))
	}
	installed, err := parseOptionalDate(in.InstallationDate)
	if err != nil {
		return err
	}
	eq.Name = name
	eq.Type = typ
	eq.Status = status
	eq.InstallationDate = installed
	eq.Manufacturer = strings.TrimSpace(in.Manufacturer)
	eq.ModelNumber = strings.TrimSpace(in.ModelNumber)
	return nil
}

func (s *EquipmentService) Create(ctx context.Context, actor Actor, in EquipmentInput) (*models.Equipment, error) {
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}
	var eq models.Equipment
	if err := in.apply(&eq); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&eq).Error; err != nil {
		return nil, fmt.Errorf("insert equipment: %w", err)
	}
	database.CreateAuditLog(s.db.WithContext(ctx), user.ID, "equipment", eq.ID, "create", "equipment "+eq.Name)
	return &eq, nil
}

func (s *EquipmentService) Update(ctx context.Context, actor Actor, id uint, in EquipmentInput) (*models.Equipment, error) {
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}
	var eq models.Equipment
	err = s.db.WithContext(ctx).First(&eq, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEquipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query equipment %d: %w", id, err)
	}
	before := eq.Status
	if err := in.apply(&eq); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(&eq).Error; err != nil {
		return nil, fmt.Errorf("update equipment %d: %w", id, err)
	}

	details := "equipment " + eq.Name
	if before != eq.Status {
		details = fmt.Sprintf("status %s -> %s", before, eq.Status)
	}
	database.CreateAuditLog(s.db.WithContext(ctx), user.ID, "equipment", eq.ID, "update", details)
	return &eq, nil
}

// Delete removes equipment with its parts and ad-hoc inspections. Equipment
// referenced by a construction report result cannot be deleted.
func (s *EquipmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq models.Equipment
		err := tx.First(&eq, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEquipmentNotFound
		}
		if err != nil {
			return fmt.Errorf("query equipment %d: %w", id, err)
		}

		var used int64
		if err := tx.Model(&models.InspectionResult{}).Where("equipment_id = ?", id).Count(&used).Error; err != nil {
			return fmt.Errorf("check inspection results: %w", err)
		}
		if used > 0 {
			return invalidState("equipment is referenced by inspection results")
		}

		if err := tx.Model(&eq).Association("ConstructionProjects").Clear(); err != nil {
			return fmt.Errorf("unlink construction projects: %w", err)
		}
		if err := tx.Where("equipment_id = ?", id).Delete(&models.EquipmentPart{}).Error; err != nil {
			return fmt.Errorf("delete parts: %w", err)
		}
		if err := tx.Where("equipment_id = ?", id).Delete(&models.EquipmentInspection{}).Error; err != nil {
			return fmt.Errorf("delete inspections: %w", err)
		}
		if err := tx.Delete(&eq).Error; err != nil {
			return fmt.Errorf("delete equipment %d: %w", id, err)
		}
		database.CreateAuditLog(tx, user.ID, "equipment", id, "delete", "equipment "+eq.Name)
		return nil
	})
}

func (s *EquipmentService) AddPart(ctx context.Context, actor Actor, equipmentID uint, in PartInput) (*models.EquipmentPart, error) {
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.PartName)
	if name == "" {
		return nil, invalidInput("part name is required")
	}
	ordered, err := parseOptionalDate(in.LastOrderedDate)
	if err != nil {
		return nil, err
	}
	if in.LastOrderedPrice != nil && *in.LastOrderedPrice < 0 {
		return nil, invalidInput("price cannot be negative")
	}
	ok, err := exists(s.db.WithContext(ctx), &models.Equipment{}, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("check equipment: %w", err)
	}
	if !ok {
		return nil, ErrEquipmentNotFound
	}

	part := models.EquipmentPart{
		EquipmentID:      equipmentID,
		PartName:         name,
		PartNumber:       strings.TrimSpace(in.PartNumber),
		Manufacturer:     strings.TrimSpace(in.Manufacturer),
		Supplier:         strings.TrimSpace(in.Supplier),
		LastOrderedDate:  ordered,
		LastOrderedPrice: in.LastOrderedPrice,
		Notes:            strings.TrimSpace(in.Notes),
	}
	if err := s.db.WithContext(ctx).Create(&part).Error; err != nil {
		return nil, fmt.Errorf("insert part: %w", err)
	}
	database.CreateAuditLog(s.db.WithContext(ctx), user.ID, "equipment", equipmentID, "add_part", "part "+part.PartName)
	return &part, nil
}

// AddInspection records an inspection by the caller. A blank date means today.
func (s *EquipmentService) AddInspection(ctx context.Context, actor Actor, equipmentID uint, in InspectionInput) (*models.EquipmentInspection, error) {
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}
	when, err := parseOptionalDate(in.InspectionDate)
	if err != nil {
		return nil, err
	}
	ok, err := exists(s.db.WithContext(ctx), &models.Equipment{}, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("check equipment: %w", err)
	}
	if !ok {
		return nil, ErrEquipmentNotFound
	}

	insp := models.EquipmentInspection{
		EquipmentID: equipmentID,
		Findings:    strings.TrimSpace(in.Findings),
		Issues:      strings.TrimSpace(in.Issues),
		InspectorID: user.ID,
	}
	if when != nil {
		insp.InspectionDate = *when
	} else {
		insp.InspectionDate = today()
	}
	if err := s.db.WithContext(ctx).Create(&insp).Error; err != nil {
		return nil, fmt.Errorf("insert inspection: %w", err)
	}
	database.CreateAuditLog(s.db.WithContext(ctx), user.ID, "equipment", equipmentID, "inspect",
		"inspection "+insp.InspectionDate.Format(DateLayout))
	return &insp, nil
}
