package models

import "time"

type DailyLogStatus string

const (
	DailyLogDraft    DailyLogStatus = "DRAFT"
	DailyLogInReview DailyLogStatus = "IN_REVIEW"
	DailyLogApproved DailyLogStatus = "APPROVED"
)

type WorkStatus string

const (
	WorkInProgress WorkStatus = "IN_PROGRESS"
	WorkCompleted  WorkStatus = "COMPLETED"
)

// DailyLog is one day's work record. Status only moves forward:
// DRAFT -> IN_REVIEW -> APPROVED, and only DRAFT logs accept entry edits.
type DailyLog struct {
	Model
	Date         time.Time      `gorm:"type:date;not null;index" json:"date"`
	NextWorkDate *time.Time     `gorm:"type:date" json:"nextWorkDate"`
	IsHoliday    bool           `gorm:"not null" json:"isHoliday"`
	Status       DailyLogStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	CreatedByID uint  `gorm:"index" json:"createdById"`
	CreatedBy   *User `json:"createdBy,omitempty"`

	Entries      []DailyLogEntry `json:"entries"`
	Circulations []Circulation   `json:"circulations"`
}

type DailyLogEntry struct {
	ID                    uint                 `gorm:"primaryKey" json:"id"`
	DailyLogID            uint                 `gorm:"index;not null" json:"dailyLogId"`
	ConstructionProjectID uint                 `gorm:"index;not null" json:"constructionProjectId"`
	ConstructionProject   *ConstructionProject `json:"constructionProject,omitempty"`
	WorkStatus            WorkStatus           `gorm:"type:varchar(20);not null" json:"workStatus"`
	WorkDescription       string               `gorm:"type:text" json:"workDescription"`
	NextWorkPlan          string               `gorm:"type:text" json:"nextWorkPlan"`
	Position              int                  `gorm:"not null" json:"position"`
}
