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

var ErrReportNotFound = &Error{Kind: ErrNotFound, Message: "construction report not found"}

type ReportService struct{ db *gorm.DB }

func NewReportService(db *gorm.DB) *ReportService { return &ReportService{db: db} }

type MeasurementInput struct {
	FieldID    uint    `json:"fieldId"`
	Value      float64 `json:"value"`
	MeasuredAt string  `json:"measuredAt"`
}

type ResultInput struct {
	EquipmentID  uint               `json:"equipmentId"`
	Result       string             `json:"result"`
	Issues       string             `json:"issues"`
	Measurements []MeasurementInput `json:"measurements"`
}

type ReportInput struct {
	ConstructionProjectID uint          `json:"constructionProjectId"`
	Content               string        `json:"content"`
	Topics                string        `json:"topics"`
	TemplateID            *uint         `json:"templateId"`
	InspectionResults     []ResultInput `json:"inspectionResults"`
}

// CreateReport stores a report with its inspection results and measurements
// in one transaction.
func (s *ReportService) CreateReport(ctx context.Context, actor Actor, in ReportInput) (*models.ConstructionReport, error) {
	user, err := resolveActor(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}

	report := models.ConstructionReport{
		ConstructionProjectID: in.ConstructionProjectID,
		Content:               strings.TrimSpace(in.Content),
		Topics:                strings.TrimSpace(in.Topics),
		TemplateID:            in.TemplateID,
		CreatedByID:           user.ID,
	}
	var equipmentIDs, fieldIDs []uint
	for i, r := range in.InspectionResults {
		result := strings.TrimSpace(r.Result)
		if r.EquipmentID == 0 || result == "" {
			return nil, invalidInput(fmt.Sprintf("inspection result %d: equipment and result are required", i+1))
		}
		equipmentIDs = append(equipmentIDs, r.EquipmentID)

		row := models.InspectionResult{
			EquipmentID: r.EquipmentID,
			Result:      result,
			Issues:      strings.TrimSpace(r.Issues),
		}
		for _, m := range r.Measurements {
			if m.FieldID == 0 {
				return nil, invalidInput(fmt.Sprintf("inspection result %d: measurement field is required", i+1))
			}
			at := today()
			if strings.TrimSpace(m.MeasuredAt) != "" {
				if at, err = parseTimestamp(m.MeasuredAt); err != nil {
					return nil, err
				}
			}
			fieldIDs = append(fieldIDs, m.FieldID)
			row.Measurements = append(row.Measurements, models.Measurement{
				MeasurementFieldID: m.FieldID,
				Value:              m.Value,
				MeasuredAt:         at,
			})
		}
		report.InspectionResults = append(report.InspectionResults, row)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.ConstructionProject{}, in.ConstructionProjectID)
		if err != nil {
			return fmt.Errorf("check construction project: %w", err)
		}
		if !ok {
			return ErrProjectNotFound
		}
		if in.TemplateID != nil {
			ok, err := exists(tx, &models.InspectionTemplate{}, *in.TemplateID)
			if err != nil {
				return fmt.Errorf("check template: %w", err)
			}
			if !ok {
				return invalidInput("inspection template not found")
			}
		}
		if want, got, err := countIDs(tx, &models.Equipment{}, equipmentIDs); err != nil {
			return fmt.Errorf("check equipment: %w", err)
		} else if int64(want) != got {
			return invalidInput("equipment not found")
		}
		if want, got, err := countIDs(tx, &models.MeasurementField{}, fieldIDs); err != nil {
			return fmt.Errorf("check measurement fields: %w", err)
		} else if int64(want) != got {
			return invalidInput("measurement field not found")
		}

		if err := tx.Create(&report).Error; err != nil {
			return fmt.Errorf("insert construction report: %w", err)
		}
		database.CreateAuditLog(tx, user.ID, "construction_report", report.ID, "create",
			fmt.Sprintf("project %d, %d results", report.ConstructionProjectID, len(report.InspectionResults)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetReport(ctx, report.ID)
}

func (s *ReportService) GetReport(ctx context.Context, id uint) (*models.ConstructionReport, error) {
	var report models.ConstructionReport
	err := s.db.WithContext(ctx).
		Preload("ConstructionProject").
		Preload("Template").
		Preload("CreatedBy").
		Preload("InspectionResults", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("InspectionResults.Equipment").
		Preload("InspectionResults.Measurements", func(db *gorm.DB) *gorm.DB { return db.Order("measured_at asc, id asc") }).
		Preload("InspectionResults.Measurements.MeasurementField").
		First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query construction report %d: %w", id, err)
	}
	return &report, nil
}
