package models

import "time"

// ConstructionReport: отчёт по проекту с результатами осмотра оборудования.
type ConstructionReport struct {
	Model
	ConstructionProjectID uint                 `gorm:"index;not null" json:"constructionProjectId"`
	ConstructionProject   *ConstructionProject `json:"constructionProject,omitempty"`

	Content string `gorm:"type:text" json:"content"`
	Topics  string `gorm:"type:text" json:"topics"`

	TemplateID *uint               `json:"templateId"`
	Template   *InspectionTemplate `json:"template,omitempty"`

	CreatedByID uint  `json:"createdById"`
	CreatedBy   *User `json:"createdBy,omitempty"`

	InspectionResults []InspectionResult `gorm:"foreignKey:ReportID" json:"inspectionResults"`
}

type InspectionResult struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ReportID    uint       `gorm:"index;not null" json:"reportId"`
	EquipmentID uint       `gorm:"index;not null" json:"equipmentId"`
	Equipment   *Equipment `json:"equipment,omitempty"`
	Result      string     `gorm:"size:50;not null" json:"result"`
	Issues      string     `gorm:"type:text" json:"issues"`

	Measurements []Measurement `json:"measurements"`
}

type Measurement struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	InspectionResultID uint              `gorm:"index;not null" json:"inspectionResultId"`
	MeasurementFieldID uint              `gorm:"not null" json:"measurementFieldId"`
	MeasurementField   *MeasurementField `json:"measurementField,omitempty"`
	Value              float64           `json:"value"`
	MeasuredAt         time.Time         `json:"measuredAt"`
}
