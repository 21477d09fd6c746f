package models

import "time"

type EquipmentStatus string

const (
	EquipmentOperational     EquipmentStatus = "OPERATIONAL"
	EquipmentUnderInspection EquipmentStatus = "UNDER_INSPECTION"
	EquipmentStandby         EquipmentStatus = "STANDBY"
	EquipmentMaintenance     EquipmentStatus = "MAINTENANCE"
)

func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentOperational, EquipmentUnderInspection, EquipmentStandby, EquipmentMaintenance:
		return true
	}
	return false
}

type Equipment struct {
	Model
	Name             string          `gorm:"size:255;not null" json:"name"`
	Type             string          `gorm:"size:100;not null" json:"type"`
	Status           EquipmentStatus `gorm:"type:varchar(20);not null" json:"status"`
	InstallationDate *time.Time      `json:"installationDate"`
	Manufacturer     string          `gorm:"size:255" json:"manufacturer"`
	ModelNumber      string          `gorm:"size:100" json:"modelNumber"`

	Parts                []EquipmentPart       `json:"parts,omitempty"`
	Inspections          []EquipmentInspection `json:"inspections,omitempty"`
	ConstructionProjects []ConstructionProject `gorm:"many2many:construction_project_equipment" json:"constructionProjects,omitempty"`
}

type EquipmentPart struct {
	Model
	EquipmentID      uint       `gorm:"index;not null" json:"equipmentId"`
	PartName         string     `gorm:"size:255;not null" json:"partName"`
	PartNumber       string     `gorm:"size:100" json:"partNumber"`
	Manufacturer     string     `gorm:"size:255" json:"manufacturer"`
	Supplier         string     `gorm:"size:255" json:"supplier"`
	LastOrderedDate  *time.Time `json:"lastOrderedDate"`
	LastOrderedPrice *float64   `json:"lastOrderedPrice"`
	Notes            string     `gorm:"type:text" json:"notes"`
}

// EquipmentInspection is an ad-hoc inspection record outside a construction report.
type EquipmentInspection struct {
	Model
	EquipmentID    uint      `gorm:"index;not null" json:"equipmentId"`
	InspectionDate time.Time `gorm:"not null" json:"inspectionDate"`
	Findings       string    `gorm:"type:text" json:"findings"`
	Issues         string    `gorm:"type:text" json:"issues"`

	InspectorID uint  `json:"inspectorId"`
	Inspector   *User `json:"inspector,omitempty"`
}
