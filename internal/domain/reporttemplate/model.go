// Package reporttemplate manages the reusable report templates of an
// organization: the fields a report collects and the sections they are laid
// out in.
package reporttemplate

import (
	"encoding/json"
	"time"

	"jan-server/services/report-api/internal/domain/report"
)

// FieldType selects the input used for a template field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeCurrency FieldType = "currency"
	FieldTypeDate     FieldType = "date"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
)

// IsValid reports whether t is a known field type.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeNumber, FieldTypeCurrency,
		FieldTypeDate, FieldTypeSelect, FieldTypeCheckbox:
		return true
	}
	return false
}

// Template describes how reports of one kind are written.
type Template struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	OrganizationID string          `json:"organizationId"`
	Category       report.Category `json:"category"`
	Fields         []Field         `json:"fields"`
	Structure      Structure       `json:"structure"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Version        int             `json:"version"`
}

// Field is one input of a template.
type Field struct {
	ID          string    `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Type        FieldType `json:"type" validate:"template_field_type"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
	// DefaultValue is kept verbatim; its shape depends on Type.
	DefaultValue json.RawMessage  `json:"defaultValue,omitempty"`
	Options      []string         `json:"options,omitempty"`
	Validation   *FieldValidation `json:"validation,omitempty"`
}

// FieldValidation bounds the values a field accepts.
type FieldValidation struct {
	MinLength *int     `json:"minLength,omitempty" validate:"omitempty,min=0"`
	MaxLength *int     `json:"maxLength,omitempty" validate:"omitempty,min=1"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// Structure lays the fields out in sections with a header and footer.
type Structure struct {
	Sections []Section    `json:"sections"`
	Header   HeaderConfig `json:"headerConfig"`
	Footer   FooterConfig `json:"footerConfig"`
}

// Section groups fields under a title. Order positions it in the document.
type Section struct {
	ID          string   `json:"id" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description,omitempty"`
	Order       int      `json:"order" validate:"min=1"`
	Required    bool     `json:"required"`
	FieldIDs    []string `json:"fieldIds"`
}

// HeaderConfig controls the document header.
type HeaderConfig struct {
	ShowOrganizationLogo bool   `json:"showOrganizationLogo"`
	ShowDate             bool   `json:"showDate"`
	ShowReferenceNumber  bool   `json:"showReferenceNumber"`
	CustomText           string `json:"customText,omitempty"`
}

// FooterConfig controls the document footer.
type FooterConfig struct {
	ShowPageNumbers bool   `json:"showPageNumbers"`
	ShowSignature   bool   `json:"showSignature"`
	CustomText      string `json:"customText,omitempty"`
}

// Clone returns a deep copy of t.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	out := *t
	out.Fields = cloneFields(t.Fields)
	out.Structure.Sections = make([]Section, len(t.Structure.Sections))
	for i, section := range t.Structure.Sections {
		section.FieldIDs = append([]string{}, section.FieldIDs...)
		out.Structure.Sections[i] = section
	}
	return &out
}

func cloneFields(fields []Field) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		f.DefaultValue = append(json.RawMessage(nil), f.DefaultValue...)
		f.Options = append([]string(nil), f.Options...)
		if f.Validation != nil {
			v := *f.Validation
			f.Validation = &v
		}
		out[i] = f
	}
	return out
}

// touch records a successful mutation.
func (t *Template) touch(now time.Time) {
	t.Version++
	if now.Before(t.UpdatedAt) {
		now = t.UpdatedAt
	}
	t.UpdatedAt = now
}
