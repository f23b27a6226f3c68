package entities

import (
	"time"

	"gorm.io/datatypes"
)

// TableName specifies the table name for Template.
func (Template) TableName() string {
	return "report_templates"
}

// Template represents a persisted report template. Fields and structure are
// stored as JSON documents.
type Template struct {
	ID             uint           `gorm:"primaryKey"`
	PublicID       string         `gorm:"uniqueIndex;size:64"`
	Name           string         `gorm:"size:256;index:idx_template_name"`
	Description    string         `gorm:"type:text"`
	OrganizationID string         `gorm:"size:128;index:idx_template_organization"`
	Category       string         `gorm:"size:32"`
	Fields         datatypes.JSON `gorm:"type:jsonb"`
	Structure      datatypes.JSON `gorm:"type:jsonb"`
	IsActive       bool           `gorm:"not null;default:true"`
	Version        int            `gorm:"not null;default:1"`
	CreatedAt      time.Time
	UpdatedAt      time.Time `gorm:"autoUpdateTime:false"`
}
