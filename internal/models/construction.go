package models

import "time"

type ConstructionStatus string

const (
	ConstructionOngoing   ConstructionStatus = "ONGOING"
	ConstructionCompleted ConstructionStatus = "COMPLETED"
	ConstructionDelayed   ConstructionStatus = "DELAYED"
)

func (s ConstructionStatus) Valid() bool {
	switch s {
	case ConstructionOngoing, ConstructionCompleted, ConstructionDelayed:
		return true
	}
	return false
}

type ConstructionProject struct {
	Model
	Title           string             `gorm:"size:255;not null" json:"title"`
	FiscalYear      int                `gorm:"not null;index" json:"fiscalYear"`
	TargetEquipment string             `gorm:"size:255" json:"targetEquipment"`
	Status          ConstructionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Description     string             `gorm:"type:text" json:"description"`

	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`

	CreatedByID uint  `json:"createdById"`
	CreatedBy   *User `json:"createdBy,omitempty"`

	Equipment []Equipment          `gorm:"many2many:construction_project_equipment" json:"equipment,omitempty"`
	Reports   []ConstructionReport `json:"reports,omitempty"`
}
