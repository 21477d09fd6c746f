package models

import "time"

type CirculationStatus string

const (
	CirculationPending  CirculationStatus = "PENDING"
	CirculationApproved CirculationStatus = "APPROVED"
	CirculationRejected CirculationStatus = "REJECTED"
)

// CirculationRoute is a named, reusable list of approvers.
type CirculationRoute struct {
	Model
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	CreatedByID uint  `json:"createdById"`
	CreatedBy   *User `json:"createdBy,omitempty"`

	Members []CirculationRouteMember `gorm:"foreignKey:RouteID" json:"members"`
}

type CirculationRouteMember struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	RouteID  uint  `gorm:"not null;uniqueIndex:uidx_route_position" json:"routeId"`
	UserID   uint  `gorm:"not null" json:"userId"`
	User     *User `json:"user,omitempty"`
	Position int   `gorm:"not null;uniqueIndex:uidx_route_position" json:"order"`
}

// Circulation is one approver's decision on one daily log. The approver is
// copied from the route at start time and never re-read from it.
type Circulation struct {
	Model
	DailyLogID uint              `gorm:"index;not null" json:"dailyLogId"`
	ApproverID uint              `gorm:"index;not null" json:"approverId"`
	Approver   *User             `json:"approver,omitempty"`
	Status     CirculationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Comment    string            `gorm:"type:text" json:"comment"`
	DecidedAt  *time.Time        `json:"decidedAt"`

	CreatedByID uint  `json:"createdById"`
	CreatedBy   *User `json:"createdBy,omitempty"`
}
