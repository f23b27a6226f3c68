package report

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
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
	_ = v.RegisterValidation("report_category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("report_priority", func(fl validator.FieldLevel) bool {
		return Priority(fl.Field().String()).IsValid()
	})
	return v
}

// validationView is the part of a report whose validity is checked before
// any write.
type validationView struct {
	ReferenceNumber string   `json:"referenceNumber" validate:"required"`
	Title           string   `json:"title" validate:"required"`
	Department      string   `json:"department" validate:"required"`
	Content         string   `json:"content" validate:"required"`
	Category        Category `json:"category" validate:"report_category"`
	Priority        Priority `json:"priority" validate:"report_priority"`
}

// Validate checks r and returns a *ValidationError naming every violated
// field, or nil.
func Validate(r *Report) error {
	view := validationView{
		ReferenceNumber: strings.TrimSpace(r.ReferenceNumber),
		Title:           strings.TrimSpace(r.Title),
		Department:      strings.TrimSpace(r.Metadata.Department),
		Content:         strings.TrimSpace(r.Content),
		Category:        r.Metadata.Category,
		Priority:        r.Metadata.Priority,
	}

	verr := &ValidationError{}
	if err := validate.Struct(view); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				verr.Missing = append(verr.Missing, fe.Field())
				continue
			}
			verr.addInvalid(fe.Field(), fmt.Sprintf("unknown value %q", fe.Value()))
		}
	}

	if b := r.Metadata.EstimatedBudget; b != nil && b.IsNegative() {
		verr.addInvalid("estimatedBudget", "must not be negative")
	}

	if verr.empty() {
		return nil
	}
	return verr
}

func (e *ValidationError) addInvalid(field, reason string) {
	if e.Invalid == nil {
		e.Invalid = make(map[string]string)
	}
	e.Invalid[field] = reason
}

// normalizeTags trims tags, drops blanks and duplicates, keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
