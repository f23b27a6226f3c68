package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"jan-server/services/report-api/internal/utils/idgen"
)

// Demo reports belong to this author and organization.
const (
	DemoAuthorID       = "user-1"
	DemoOrganizationID = "org-1"
)

// DemoReports returns the reference reports shown to new installations.
func DemoReports() []*Report {
	day := func(s string) time.Time {
		t, _ := time.Parse(time.DateOnly, s)
		return t.UTC()
	}
	budget := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}

	return []*Report{
		{
			ReferenceNumber: "INF-2024-001",
			Title:           "Computer Equipment Procurement",
			Content:         "Detailed justification for computer equipment purchase.",
			Status:          StatusPublished,
			ReviewStatus:    ReviewStatusApproved,
			Metadata: Metadata{
				Category:        CategoryProcurement,
				Priority:        PriorityMedium,
				Department:      "IT Department",
				EstimatedBudget: budget(15000),
				Tags:            []string{"technology", "procurement"},
			},
			CreatedAt: day("2024-07-01"),
			Version:   4,
		},
		{
			ReferenceNumber: "INF-2024-002",
			Title:           "Cleaning Services Contract",
			Content:         "Justification for hiring an external cleaning service.",
			Status:          StatusDraft,
			Metadata: Metadata{
				Category:        CategoryServices,
				Priority:        PriorityMedium,
				Department:      "Facility Management",
				EstimatedBudget: budget(25000),
				Tags:            []string{"services", "cleaning", "maintenance"},
			},
			CreatedAt: day("2024-06-28"),
			Version:   1,
		},
		{
			ReferenceNumber: "INF-2024-003",
			Title:           "Facility Improvement Works",
			Content:         "Justification for improvement works in municipal facilities.",
			Status:          StatusPublished,
			ReviewStatus:    ReviewStatusApproved,
			Metadata: Metadata{
				Category:        CategoryInfrastructure,
				Priority:        PriorityHigh,
				Department:      "Public Works",
				EstimatedBudget: budget(75000),
				Tags:            []string{"infrastructure", "construction", "improvement"},
			},
			CreatedAt: day("2024-06-25"),
			Version:   4,
		},
	}
}

// Seed stores DemoReports when repo is empty and returns how many were written.
func Seed(ctx context.Context, repo Repository) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	reports := DemoReports()
	for _, r := range reports {
		r.ID = idgen.NewReportID()
		r.UpdatedAt = r.CreatedAt
		r.Metadata.RelatedReports = []string{}
		r.Metadata.Attachments = []Attachment{}
		r.AuthorID = DemoAuthorID
		r.OrganizationID = DemoOrganizationID
		if err := repo.Create(ctx, r); err != nil {
			return 0, err
		}
	}
	return len(reports), nil
}
