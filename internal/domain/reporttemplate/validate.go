package reporttemplate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"jan-server/services/report-api/internal/domain/report"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("template_field_type", func(fl validator.FieldLevel) bool {
		return FieldType(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("report_category", func(fl validator.FieldLevel) bool {
		return report.Category(fl.Field().String()).IsValid()
	})
	return v
}

type validationView struct {
	Name     string          `json:"name" validate:"required"`
	Category report.Category `json:"category" validate:"report_category"`
	Fields   []Field         `json:"fields" validate:"dive"`
	Sections []Section       `json:"sections" validate:"dive"`
}

// Validate checks t and returns a *report.ValidationError naming every
// violated field, or nil. Field paths are reported as e.g. "fields[1].type".
func Validate(t *Template) error {
	view := validationView{
		Name:     strings.TrimSpace(t.Name),
		Category: t.Category,
		Fields:   t.Fields,
		Sections: t.Structure.Sections,
	}

	verr := &report.ValidationError{}
	invalid := func(field, reason string) {
		if verr.Invalid == nil {
			verr.Invalid = make(map[string]string)
		}
		verr.Invalid[field] = reason
	}

	if err := validate.Struct(view); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range fieldErrs {
			path := strings.TrimPrefix(fe.Namespace(), "validationView.")
			if fe.Tag() == "required" {
				verr.Missing = append(verr.Missing, path)
				continue
			}
			invalid(path, fmt.Sprintf("failed %q check with value %v", fe.Tag(), fe.Value()))
		}
	}

	fieldIDs := make(map[string]struct{}, len(t.Fields))
	for i, f := range t.Fields {
		if _, dup := fieldIDs[f.ID]; dup && f.ID != "" {
			invalid(fmt.Sprintf("fields[%d].id", i), fmt.Sprintf("duplicate field id %q", f.ID))
		}
		fieldIDs[f.ID] = struct{}{}
		if f.Type == FieldTypeSelect && len(f.Options) == 0 {
			invalid(fmt.Sprintf("fields[%d].options", i), "select fields need options")
		}
		if v := f.Validation; v != nil && v.MinLength != nil && v.MaxLength != nil && *v.MinLength > *v.MaxLength {
			invalid(fmt.Sprintf("fields[%d].validation", i), "minLength exceeds maxLength")
		}
	}

	sectionIDs := make(map[string]struct{}, len(t.Structure.Sections))
	for i, s := range t.Structure.Sections {
		if _, dup := sectionIDs[s.ID]; dup && s.ID != "" {
			invalid(fmt.Sprintf("sections[%d].id", i), fmt.Sprintf("duplicate section id %q", s.ID))
		}
		sectionIDs[s.ID] = struct{}{}
		for _, id := range s.FieldIDs {
			if _, ok := fieldIDs[id]; !ok {
				invalid(fmt.Sprintf("sections[%d].fieldIds", i), fmt.Sprintf("unknown field id %q", id))
			}
		}
	}

	if len(verr.Missing) == 0 && len(verr.Invalid) == 0 {
		return nil
	}
	return verr
}
