package entities

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TableName specifies the table name for Report.
func (Report) TableName() string {
	return "reports"
}

// Report represents the persisted justification report.
type Report struct {
	ID              uint                `gorm:"primaryKey"`
	PublicID        string              `gorm:"uniqueIndex;size:64"`
	ReferenceNumber string              `gorm:"size:64;index:idx_report_reference"`
	Title           string              `gorm:"size:512"`
	Content         string              `gorm:"type:text"`
	AuthorID        string              `gorm:"size:128;index:idx_report_author"`
	OrganizationID  string              `gorm:"size:128;index:idx_report_organization"`
	Status          string              `gorm:"size:32;index:idx_report_status"`
	ReviewStatus    string              `gorm:"size:32"`
	Category        string              `gorm:"size:32;index:idx_report_category"`
	Priority        string              `gorm:"size:16"`
	Department      string              `gorm:"size:256"`
	EstimatedBudget decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	Tags            datatypes.JSON      `gorm:"type:jsonb"`
	RelatedReports  datatypes.JSON      `gorm:"type:jsonb"`
	Attachments     datatypes.JSON      `gorm:"type:jsonb"`
	Version         int                 `gorm:"not null;default:1"`
	CreatedAt       time.Time           `gorm:"index:idx_report_created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime:false"`
}
