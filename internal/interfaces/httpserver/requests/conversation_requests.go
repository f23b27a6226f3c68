package requests

import (
	"github.com/shopspring/decimal"

	"jan-server/services/report-api/internal/domain/draft"
	"jan-server/services/report-api/internal/domain/report"
)

// SubmitMessageRequest is the body of POST /v1/conversations/:id/messages.
// Blank text is rejected by the coordinator.
type SubmitMessageRequest struct {
	Text string `json:"text"`
}

// EditDraftRequest is the body of PATCH /v1/conversations/:id/draft. Only
// the fields present in the body are edited.
type EditDraftRequest struct {
	ReferenceNumber *string          `json:"referenceNumber"`
	Title           *string          `json:"title"`
	Category        *report.Category `json:"category"`
	Priority        *report.Priority `json:"priority"`
	Department      *string          `json:"department"`
	EstimatedBudget *decimal.Decimal `json:"estimatedBudget"`
	Tags            *[]string        `json:"tags"`
	Content         *string          `json:"content"`
}

// Edit converts the request into a draft edit.
func (r EditDraftRequest) Edit() draft.Edit {
	return draft.Edit{
		ReferenceNumber: r.ReferenceNumber,
		Title:           r.Title,
		Category:        r.Category,
		Priority:        r.Priority,
		Department:      r.Department,
		EstimatedBudget: r.EstimatedBudget,
		Tags:            r.Tags,
		Content:         r.Content,
	}
}
