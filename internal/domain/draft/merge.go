// Package draft holds the report being composed in a conversation and merges
// field extractions into it without overriding user edits.
package draft

import (
	"github.com/shopspring/decimal"

	"jan-server/services/report-api/internal/domain/intent"
	"jan-server/services/report-api/internal/domain/report"
)

// Field names a draft field.
type Field string

const (
	FieldReferenceNumber Field = "referenceNumber"
	FieldTitle           Field = Field(intent.FieldTitle)
	FieldCategory        Field = Field(intent.FieldCategory)
	FieldPriority        Field = "priority"
	FieldDepartment      Field = Field(intent.FieldDepartment)
	FieldEstimatedBudget Field = Field(intent.FieldEstimatedBudget)
	FieldTags            Field = Field(intent.FieldTags)
	FieldContent         Field = "content"
)

// IsValid reports whether f is a known draft field.
func (f Field) IsValid() bool {
	switch f {
	case FieldReferenceNumber, FieldTitle, FieldCategory, FieldPriority,
		FieldDepartment, FieldEstimatedBudget, FieldTags, FieldContent:
		return true
	}
	return false
}

// FieldSet is a set of field names.
type FieldSet map[Field]struct{}

// NewFieldSet builds a set from names.
func NewFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether f is in the set. A nil set is empty.
func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// Draft is the form data of a report that has not been saved yet.
type Draft struct {
	ReferenceNumber string           `json:"referenceNumber"`
	Title           string           `json:"title"`
	Category        report.Category  `json:"category"`
	Priority        report.Priority  `json:"priority"`
	Department      string           `json:"department"`
	EstimatedBudget *decimal.Decimal `json:"estimatedBudget,omitempty"`
	Tags            []string         `json:"tags"`
	Content         string           `json:"content"`
}

// New returns an empty draft with the form defaults.
func New() Draft {
	return Draft{
		Category: report.CategoryOther,
		Priority: report.PriorityMedium,
		Tags:     []string{},
	}
}

// Clone returns a deep copy.
func (d Draft) Clone() Draft {
	out := d
	out.Tags = append([]string{}, d.Tags...)
	if d.EstimatedBudget != nil {
		v := *d.EstimatedBudget
		out.EstimatedBudget = &v
	}
	return out
}

// Merge applies extracted fields to current. Fields in touched keep the
// user's value; every other field with an extracted value is overwritten.
// Fields are decided independently.
func Merge(current Draft, fields intent.Fields, touched FieldSet) Draft {
	out := current.Clone()

	if fields.Title != nil && !touched.Has(FieldTitle) {
		out.Title = *fields.Title
	}
	if fields.Category != nil && !touched.Has(FieldCategory) {
		out.Category = *fields.Category
	}
	if fields.Department != nil && !touched.Has(FieldDepartment) {
		out.Department = *fields.Department
	}
	if fields.EstimatedBudget != nil && !touched.Has(FieldEstimatedBudget) {
		v := *fields.EstimatedBudget
		out.EstimatedBudget = &v
	}
	if fields.Tags != nil && !touched.Has(FieldTags) {
		out.Tags = append([]string{}, fields.Tags...)
	}
	return out
}
