package requests

import (
	"github.com/shopspring/decimal"

	"jan-server/services/report-api/internal/domain/report"
)

// CreateReportRequest is the body of POST /v1/reports. Required fields are
// checked by the domain so that every missing field is reported at once.
type CreateReportRequest struct {
	ReferenceNumber string              `json:"referenceNumber"`
	Title           string              `json:"title"`
	Content         string              `json:"content"`
	Category        report.Category     `json:"category"`
	Priority        report.Priority     `json:"priority"`
	Department      string              `json:"department"`
	EstimatedBudget *decimal.Decimal    `json:"estimatedBudget"`
	Tags            []string            `json:"tags"`
	RelatedReports  []string            `json:"relatedReports"`
	Attachments     []report.Attachment `json:"attachments"`
}

// Params converts the request into domain parameters.
func (r CreateReportRequest) Params() report.CreateParams {
	return report.CreateParams{
		ReferenceNumber: r.ReferenceNumber,
		Title:           r.Title,
		Content:         r.Content,
		Category:        r.Category,
		Priority:        r.Priority,
		Department:      r.Department,
		EstimatedBudget: r.EstimatedBudget,
		Tags:            r.Tags,
		RelatedReports:  r.RelatedReports,
		Attachments:     r.Attachments,
	}
}

// UpdateReportRequest is the body of PATCH /v1/reports/:id.
type UpdateReportRequest struct {
	ReferenceNumber *string              `json:"referenceNumber"`
	Title           *string              `json:"title"`
	Content         *string              `json:"content"`
	Category        *report.Category     `json:"category"`
	Priority        *report.Priority     `json:"priority"`
	Department      *string              `json:"department"`
	EstimatedBudget *decimal.Decimal     `json:"estimatedBudget"`
	Tags            *[]string            `json:"tags"`
	RelatedReports  *[]string            `json:"relatedReports"`
	Attachments     *[]report.Attachment `json:"attachments"`
	ExpectedVersion *int                 `json:"expectedVersion" binding:"omitempty,min=1"`
}

// Params converts the request into domain parameters.
func (r UpdateReportRequest) Params() report.UpdateParams {
	return report.UpdateParams{
		ReferenceNumber: r.ReferenceNumber,
		Title:           r.Title,
		Content:         r.Content,
		Category:        r.Category,
		Priority:        r.Priority,
		Department:      r.Department,
		EstimatedBudget: r.EstimatedBudget,
		Tags:            r.Tags,
		RelatedReports:  r.RelatedReports,
		Attachments:     r.Attachments,
		ExpectedVersion: r.ExpectedVersion,
	}
}

// UpdateStatusRequest is the body of POST /v1/reports/:id/status.
type UpdateStatusRequest struct {
	Status          report.Status `json:"status" binding:"required"`
	ExpectedVersion *int          `json:"expectedVersion" binding:"omitempty,min=1"`
}

// SubmitForReviewRequest is the optional body of POST /v1/reports/:id/submit.
type SubmitForReviewRequest struct {
	ExpectedVersion *int `json:"expectedVersion" binding:"omitempty,min=1"`
}

// ListReportsQuery holds the query string of GET /v1/reports. A non-empty
// Q switches to free-text search and ignores the other filters.
type ListReportsQuery struct {
	Q            string `form:"q"`
	Status       string `form:"status" binding:"omitempty,oneof=draft in_review approved rejected published archived"`
	Category     string `form:"category" binding:"omitempty,oneof=procurement technology services infrastructure other"`
	Priority     string `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Department   string `form:"department"`
	Author       string `form:"author"`
	Organization string `form:"organization"`
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset       int    `form:"offset" binding:"omitempty,min=0"`
}

// Filter converts the query into a domain filter.
func (q ListReportsQuery) Filter() *report.Filter {
	f := report.NewFilter()
	if q.Status != "" {
		f.WithStatus(report.Status(q.Status))
	}
	if q.Category != "" {
		f.WithCategory(report.Category(q.Category))
	}
	if q.Priority != "" {
		f.WithPriority(report.Priority(q.Priority))
	}
	if q.Department != "" {
		f.WithDepartment(q.Department)
	}
	if q.Author != "" {
		f.WithAuthor(q.Author)
	}
	if q.Organization != "" {
		f.WithOrganization(q.Organization)
	}
	limit := f.Limit
	if q.Limit > 0 {
		limit = q.Limit
	}
	return f.WithPagination(limit, q.Offset)
}
