package models

type MeasurementType string

const (
	MeasurementNumber      MeasurementType = "NUMBER"
	MeasurementTemperature MeasurementType = "TEMPERATURE"
	MeasurementPressure    MeasurementType = "PRESSURE"
	MeasurementCurrent     MeasurementType = "CURRENT"
	MeasurementVoltage     MeasurementType = "VOLTAGE"
	MeasurementFlowRate    MeasurementType = "FLOW_RATE"
)

func (t MeasurementType) Valid() bool {
	switch t {
	case MeasurementNumber, MeasurementTemperature, MeasurementPressure,
		MeasurementCurrent, MeasurementVoltage, MeasurementFlowRate:
		return true
	}
	return false
}

// Каталог шаблонов осмотра: template -> ordered items -> measurement fields.
type InspectionTemplate struct {
	Model
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	CreatedByID uint  `json:"createdById"`
	CreatedBy   *User `json:"createdBy,omitempty"`

	Items []InspectionTemplateItem `gorm:"foreignKey:TemplateID" json:"items"`
}

type InspectionTemplateItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TemplateID  uint   `gorm:"index;not null" json:"templateId"`
	ItemName    string `gorm:"size:255;not null" json:"itemName"`
	Description string `gorm:"type:text" json:"description"`
	Required    bool   `json:"required"`
	Position    int    `gorm:"not null" json:"order"` // 1-based

	MeasurementFields []MeasurementField `gorm:"foreignKey:ItemID" json:"measurementFields"`
}

type MeasurementField struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	ItemID   uint            `gorm:"index;not null" json:"itemId"`
	Name     string          `gorm:"size:255;not null" json:"name"`
	Type     MeasurementType `gorm:"type:varchar(20);not null" json:"type"`
	Unit     string          `gorm:"size:50" json:"unit"`
	MinValue *float64        `json:"minValue"`
	MaxValue *float64        `json:"maxValue"`
	Interval *int            `json:"interval"` // minutes between readings
}
