package intent

import (
	"github.com/shopspring/decimal"

	"jan-server/services/report-api/internal/domain/report"
)

// FieldName identifies a report field an extraction can suggest.
type FieldName string

const (
	FieldTitle           FieldName = "title"
	FieldCategory        FieldName = "category"
	FieldDepartment      FieldName = "department"
	FieldEstimatedBudget FieldName = "estimatedBudget"
	FieldTags            FieldName = "tags"
)

// Fields is the closed set of report fields an extraction can carry. A nil
// pointer or nil slice means the extraction has no value for that field.
type Fields struct {
	Title           *string          `json:"title,omitempty"`
	Category        *report.Category `json:"category,omitempty"`
	Department      *string          `json:"department,omitempty"`
	EstimatedBudget *decimal.Decimal `json:"estimatedBudget,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
}

// SuggestedField is one field value offered to the user with its confidence.
type SuggestedField struct {
	FieldID    FieldName `json:"fieldId"`
	Value      any       `json:"value"`
	Confidence float64   `json:"confidence"`
}

// Present lists the fields that carry a value, in declaration order.
func (f Fields) Present() []FieldName {
	var out []FieldName
	if f.Title != nil {
		out = append(out, FieldTitle)
	}
	if f.Category != nil {
		out = append(out, FieldCategory)
	}
	if f.Department != nil {
		out = append(out, FieldDepartment)
	}
	if f.EstimatedBudget != nil {
		out = append(out, FieldEstimatedBudget)
	}
	if f.Tags != nil {
		out = append(out, FieldTags)
	}
	return out
}

// IsEmpty reports whether no field carries a value.
func (f Fields) IsEmpty() bool {
	return len(f.Present()) == 0
}

// Suggestions expands the present fields into suggestions of equal confidence.
func (f Fields) Suggestions(confidence float64) []SuggestedField {
	present := f.Present()
	out := make([]SuggestedField, 0, len(present))
	for _, name := range present {
		var value any
		switch name {
		case FieldTitle:
			value = *f.Title
		case FieldCategory:
			value = *f.Category
		case FieldDepartment:
			value = *f.Department
		case FieldEstimatedBudget:
			value = *f.EstimatedBudget
		case FieldTags:
			value = append([]string(nil), f.Tags...)
		}
		out = append(out, SuggestedField{FieldID: name, Value: value, Confidence: confidence})
	}
	return out
}

// Clone returns a deep copy.
func (f Fields) Clone() Fields {
	out := Fields{}
	if f.Title != nil {
		v := *f.Title
		out.Title = &v
	}
	if f.Category != nil {
		v := *f.Category
		out.Category = &v
	}
	if f.Department != nil {
		v := *f.Department
		out.Department = &v
	}
	if f.EstimatedBudget != nil {
		v := *f.EstimatedBudget
		out.EstimatedBudget = &v
	}
	if f.Tags != nil {
		out.Tags = append([]string{}, f.Tags...)
	}
	return out
}
