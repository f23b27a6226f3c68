package draft_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"jan-server/services/report-api/internal/domain/draft"
	"jan-server/services/report-api/internal/domain/intent"
	"jan-server/services/report-api/internal/domain/report"
)

func strPtr(s string) *string { return &s }

func TestMergeKeepsTouchedFields(t *testing.T) {
	current := draft.New()
	current.Title = "A"
	current.Department = "X"

	merged := draft.Merge(current, intent.Fields{
		Title:      strPtr("B"),
		Department: strPtr("Y"),
	}, draft.NewFieldSet(draft.FieldTitle))

	assert.Equal(t, "A", merged.Title)
	assert.Equal(t, "Y", merged.Department)
}

func TestMergeOverwritesEveryUntouchedFieldIndependently(t *testing.T) {
	category := report.CategoryServices
	budget := decimal.NewFromInt(25000)
	fields := intent.Fields{
		Title:           strPtr("Cleaning"),
		Category:        &category,
		Department:      strPtr("Facility Management"),
		EstimatedBudget: &budget,
		Tags:            []string{"cleaning"},
	}

	current := draft.New()
	current.Title = "Mine"
	current.Tags = []string{"mine"}
	current.ReferenceNumber = "REF-1"

	tests := []struct {
		name    string
		touched draft.FieldSet
		check   func(t *testing.T, d draft.Draft)
	}{
		{
			name:    "nothing touched",
			touched: nil,
			check: func(t *testing.T, d draft.Draft) {
				assert.Equal(t, "Cleaning", d.Title)
				assert.Equal(t, report.CategoryServices, d.Category)
				assert.Equal(t, "Facility Management", d.Department)
				assert.True(t, budget.Equal(*d.EstimatedBudget))
				assert.Equal(t, []string{"cleaning"}, d.Tags)
			},
		},
		{
			name:    "tags and category touched",
			touched: draft.NewFieldSet(draft.FieldTags, draft.FieldCategory),
			check: func(t *testing.T, d draft.Draft) {
				assert.Equal(t, "Cleaning", d.Title)
				assert.Equal(t, report.CategoryOther, d.Category)
				assert.Equal(t, []string{"mine"}, d.Tags)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := draft.Merge(current, fields, tt.touched)
			tt.check(t, merged)
			assert.Equal(t, "REF-1", merged.ReferenceNumber)
			assert.Equal(t, report.PriorityMedium, merged.Priority)
		})
	}
}

func TestMergeIgnoresAbsentFields(t *testing.T) {
	current := draft.New()
	current.Title = "Keep"
	budget := decimal.NewFromInt(10)
	current.EstimatedBudget = &budget

	merged := draft.Merge(current, intent.Fields{Department: strPtr("IT")}, nil)
	assert.Equal(t, "Keep", merged.Title)
	assert.Equal(t, "IT", merged.Department)
	assert.True(t, budget.Equal(*merged.EstimatedBudget))
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	current := draft.New()
	current.Tags = []string{"a"}
	fields := intent.Fields{Tags: []string{"b"}}

	merged := draft.Merge(current, fields, nil)
	merged.Tags[0] = "changed"

	assert.Equal(t, []string{"a"}, current.Tags)
	assert.Equal(t, []string{"b"}, fields.Tags)
}
