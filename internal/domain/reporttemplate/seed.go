package reporttemplate

import (
	"context"
	"encoding/json"
	"time"

	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/utils/idgen"
)

// DemoTemplates returns the reference templates shown to new installations.
func DemoTemplates() []*Template {
	day := func(s string) time.Time {
		t, _ := time.Parse(time.DateOnly, s)
		return t.UTC()
	}
	minLength, maxLength := 10, 500

	return []*Template{
		{
			Name:           "Procurement Template",
			Description:    "Standard template for procurement justification reports",
			OrganizationID: report.DemoOrganizationID,
			Category:       report.CategoryProcurement,
			Fields: []Field{
				{
					ID:          "field-1",
					Name:        "Item Description",
					Type:        FieldTypeTextarea,
					Required:    true,
					Placeholder: "Describe the items to be procured...",
					Validation:  &FieldValidation{MinLength: &minLength, MaxLength: &maxLength},
				},
				{
					ID:           "field-2",
					Name:         "Quantity",
					Type:         FieldTypeNumber,
					Required:     true,
					DefaultValue: json.RawMessage(`1`),
				},
				{ID: "field-3", Name: "Unit Price", Type: FieldTypeCurrency, Required: true},
			},
			Structure: Structure{
				Sections: []Section{
					{
						ID:          "section-1",
						Title:       "Object Identification",
						Description: "Clearly identify what is being procured",
						Order:       1,
						Required:    true,
						FieldIDs:    []string{"field-1"},
					},
					{
						ID:          "section-2",
						Title:       "Technical Justification",
						Description: "Provide technical reasons for the procurement",
						Order:       2,
						Required:    true,
						FieldIDs:    []string{"field-2", "field-3"},
					},
				},
				Header: HeaderConfig{
					ShowOrganizationLogo: true,
					ShowDate:             true,
					ShowReferenceNumber:  true,
					CustomText:           "PROCUREMENT JUSTIFICATION REPORT",
				},
				Footer: FooterConfig{
					ShowPageNumbers: true,
					ShowSignature:   true,
					CustomText:      "This document is confidential and for internal use only.",
				},
			},
			IsActive:  true,
			CreatedAt: day("2024-01-01"),
			UpdatedAt: day("2024-01-15"),
			Version:   1,
		},
	}
}

// Seed stores DemoTemplates when repo is empty and returns how many were written.
func Seed(ctx context.Context, repo Repository) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	templates := DemoTemplates()
	for _, t := range templates {
		t.ID = idgen.NewTemplateID()
		if err := repo.Create(ctx, t); err != nil {
			return 0, err
		}
	}
	return len(templates), nil
}
